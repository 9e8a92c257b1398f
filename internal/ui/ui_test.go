package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/filter"
	"github.com/Makepad-fr/tada/internal/model"
)

func plain(t *testing.T) {
	t.Helper()
	SetColorMode("never")
	require.NoError(t, SetTheme(DefaultTheme))
	t.Cleanup(func() { SetColorMode("auto"); _ = SetTheme(DefaultTheme) })
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
}

func TestTodoLine(t *testing.T) {
	plain(t)
	assert.Equal(t, " 1. ☐ Buy milk", TodoLine(1, model.Todo{Title: "Buy milk"}))
	assert.Equal(t, "12. ☑ Pay bills", TodoLine(12, model.Todo{Title: "Pay bills", Completed: true}))
}

func TestMonoTheme(t *testing.T) {
	plain(t)
	require.NoError(t, SetTheme("mono"))
	assert.Equal(t, " 2. [x] done", TodoLine(2, model.Todo{Title: "done", Completed: true}))
}

func TestSummary(t *testing.T) {
	plain(t)
	got := Summary(filter.Counts{Total: 4, Active: 3, Completed: 1})
	assert.True(t, strings.HasPrefix(got, "Todos   ✔ 1  • 3  Total 4"), got)
	assert.Contains(t, got, " 25%")
}

func TestPanel_PadsToWidestLine(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	Panel(&buf, []string{"ab", "✅ wide"})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "│ ab      │", lines[1])
	assert.Equal(t, "│ ✅ wide │", lines[2])
}

func TestOKAndFail(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "nope")
	assert.Equal(t, "✔ added\n✖ nope\n", buf.String())
}

func TestSetTheme_UnknownKeepsCurrent(t *testing.T) {
	plain(t)
	require.NoError(t, SetTheme("NEON"))

	err := SetTheme("sparkly")
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.ErrorContains(t, err, "classic|mono|neon")
	assert.Equal(t, "neon", Current().Name)
}

func TestMonoDoesNotStickAcrossThemes(t *testing.T) {
	plain(t)
	SetColorMode("always")

	require.NoError(t, SetTheme("mono"))
	assert.Equal(t, "x", C(fgRed, "x"))

	require.NoError(t, SetTheme("classic"))
	assert.Equal(t, fgRed+"x"+reset, C(fgRed, "x"))
}
