package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/devserver"
	"github.com/Makepad-fr/tada/internal/model"
)

type recorder struct {
	got []string
}

func (r *recorder) Deliver(_ context.Context, text string) error {
	r.got = append(r.got, text)
	return nil
}

type env struct {
	t    *testing.T
	srv  *devserver.Server
	url  string
	clip *recorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TADA_TOKEN", "")

	n := 0
	srv, err := devserver.New(devserver.Options{NewID: func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &env{t: t, srv: srv, url: ts.URL + "/api", clip: &recorder{}}
}

type result struct {
	out, err string
	code     int
}

func (e *env) run(stdin string, args ...string) result {
	e.t.Helper()
	app := &App{clipboard: e.clip, mailer: &recorder{}}
	cmd := newRootCmd(app)
	cmd.SetArgs(append([]string{"--api-url", e.url, "--no-color"}, args...))
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetIn(strings.NewReader(stdin))
	err := app.execute(context.Background(), cmd)
	if err != nil {
		errb.WriteString(err.Error())
	}
	return result{out: out.String(), err: errb.String(), code: ExitCode(err)}
}

func (e *env) titles() []string {
	var out []string
	for _, t := range e.srv.Snapshot() {
		out = append(out, t.Title)
	}
	return out
}

func TestAddAndList(t *testing.T) {
	e := newEnv(t)

	r := e.run("", "add", "Buy", "milk")
	require.Zero(t, r.code, r.err)
	assert.Contains(t, r.out, `added "Buy milk"`)

	r = e.run("", "add", "Pay bills")
	require.Zero(t, r.code, r.err)
	assert.Equal(t, []string{"Pay bills", "Buy milk"}, e.titles())

	r = e.run("", "list")
	require.Zero(t, r.code, r.err)
	assert.Contains(t, r.out, " 1. ")
	assert.Contains(t, r.out, "Pay bills")
	assert.Contains(t, r.out, "Buy milk")
	assert.Contains(t, r.out, "Total 2")
}

func TestAdd_BlankTitleIsUsageError(t *testing.T) {
	e := newEnv(t)
	r := e.run("", "add", "   ")
	assert.Equal(t, 2, r.code)
	assert.Empty(t, e.titles())
}

func TestDone_TogglesAndReorders(t *testing.T) {
	e := newEnv(t)
	e.run("", "add", "first")
	e.run("", "add", "second")

	r := e.run("", "done", "1")
	require.Zero(t, r.code, r.err)
	assert.Contains(t, r.out, `completed "second"`)

	snap := e.srv.Snapshot()
	require.Len(t, snap, 2)
	for _, td := range snap {
		assert.Equal(t, td.Title == "second", td.Completed, td.Title)
	}

	// the service keeps its own order, so "second" is still index 1
	r = e.run("", "done", "1")
	require.Zero(t, r.code, r.err)
	assert.Contains(t, r.out, `marked active "second"`)
}

func TestDone_BadIndex(t *testing.T) {
	e := newEnv(t)
	e.run("", "add", "only")

	r := e.run("", "done", "5")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "index out of range: have 1, got 5")
	assert.Contains(t, r.err, "Hint:")

	r = e.run("", "done", "abc")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "not a number")
}

func TestEdit_RenamesItem(t *testing.T) {
	e := newEnv(t)
	e.run("", "add", "Buy milk")

	r := e.run("", "edit", "1", "Buy", "oat", "milk")
	require.Zero(t, r.code, r.err)
	assert.Equal(t, []string{"Buy oat milk"}, e.titles())

	r = e.run("", "edit", "1", " ")
	assert.Equal(t, 2, r.code)
	assert.Equal(t, []string{"Buy oat milk"}, e.titles())
}

func TestRm_RemovesItem(t *testing.T) {
	e := newEnv(t)
	e.run("", "add", "a")
	e.run("", "add", "b")

	r := e.run("", "rm", "2")
	require.Zero(t, r.code, r.err)
	assert.Contains(t, r.out, `removed "a"`)
	assert.Equal(t, []string{"b"}, e.titles())
}

func TestList_FilterAndGroup(t *testing.T) {
	e := newEnv(t)
	e.run("", "add", "open one")
	e.run("", "add", "closed one")
	e.run("", "done", "1")

	r := e.run("", "list", "--filter", "active")
	require.Zero(t, r.code, r.err)
	assert.Contains(t, r.out, "open one")
	assert.NotContains(t, r.out, "closed one")

	r = e.run("", "list", "--group")
	require.Zero(t, r.code, r.err)
	assert.Contains(t, r.out, "Active")
	assert.Contains(t, r.out, "Completed")

	r = e.run("", "list", "--filter", "bogus")
	assert.Equal(t, 2, r.code)
}

func TestShare(t *testing.T) {
	e := newEnv(t)

	r := e.run("", "share")
	assert.Equal(t, 2, r.code, "empty list has nothing to share")

	e.run("", "add", "Pay bills")
	e.run("", "add", "Buy milk")
	e.run("", "done", "2")

	r = e.run("", "share")
	require.Zero(t, r.code, r.err)
	assert.Equal(t, "1. Buy milk ⬜\n2. Pay bills ✅\n", r.out)

	r = e.run("", "share", "--copy")
	require.Zero(t, r.code, r.err)
	assert.Equal(t, []string{"1. Buy milk ⬜\n2. Pay bills ✅"}, e.clip.got)

	r = e.run("", "share", "--copy", "--mail")
	assert.Equal(t, 2, r.code)
}

func TestUnreachableService(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	app := &App{}
	cmd := newRootCmd(app)
	cmd.SetArgs([]string{"--api-url", url, "list"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := app.execute(context.Background(), cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNetwork)
	assert.Equal(t, 1, ExitCode(err))
}

func TestAuth_LoginStatusLogout(t *testing.T) {
	e := newEnv(t)

	r := e.run("", "auth", "status")
	require.Zero(t, r.code, r.err)
	assert.Contains(t, r.out, "not logged in")

	r = e.run("opaque-token\n", "auth", "login")
	require.Zero(t, r.code, r.err)
	assert.Contains(t, r.out, "logged in")

	r = e.run("", "auth", "status")
	assert.Contains(t, r.out, "source: file")

	r = e.run("", "auth", "whoami")
	require.Zero(t, r.code, r.err)
	assert.Contains(t, r.out, "Opaque token")

	r = e.run("", "auth", "logout")
	require.Zero(t, r.code, r.err)

	r = e.run("", "auth", "whoami")
	assert.Equal(t, 2, r.code)
}

func TestUnknownCommandIsUsage(t *testing.T) {
	e := newEnv(t)
	r := e.run("", "frobnicate")
	assert.Equal(t, 2, r.code)

	r = e.run("", "list", "--nope")
	assert.Equal(t, 2, r.code)
}

func TestArgumentErrorsAreUsage(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"done"}, "usage: todo done <index>"},
		{[]string{"rm", "1", "2"}, "usage: todo rm <index>"},
		{[]string{"edit", "1"}, "usage: todo edit <index> <title...>"},
		{[]string{"add"}, "usage: todo add <title...>"},
		{[]string{"list", "extra"}, `unknown command "extra"`},
		{[]string{"auth", "status", "x"}, `unknown command "x"`},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			r := e.run("", tt.args...)
			assert.Equal(t, 2, r.code)
			assert.Contains(t, r.err, tt.want)
		})
	}
}

func TestLogFileClosedAfterFailure(t *testing.T) {
	e := newEnv(t)
	logFile := filepath.Join(t.TempDir(), "tada.log")
	t.Setenv("TADA_LOG_FILE", logFile)

	app := &App{}
	cmd := newRootCmd(app)
	cmd.SetArgs([]string{"--api-url", e.url, "--log-level", "debug", "done", "7"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	var opened io.Closer
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		err := app.setup(c)
		opened = app.closer
		return err
	}

	err := app.execute(context.Background(), cmd)
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))

	f, ok := opened.(*os.File)
	require.True(t, ok, "log should go to the configured file")
	_, werr := f.WriteString("late write")
	assert.ErrorIs(t, werr, os.ErrClosed)
	assert.Nil(t, app.closer)

	b, rerr := os.ReadFile(logFile)
	require.NoError(t, rerr)
	assert.Contains(t, string(b), "configured")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", usagef("bad"), 2},
		{"validation", &model.OpError{Op: "add", Err: model.ErrValidation}, 2},
		{"network", &model.OpError{Op: "list", Err: model.ErrNetwork}, 1},
		{"not found", fmt.Errorf("remove: %w", model.ErrNotFound), 1},
		{"other", errors.New("boom"), 1},
		{"untyped cobra-style text", errors.New(`unknown command "x" for "todo"`), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
