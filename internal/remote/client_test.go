package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/devserver"
	"github.com/Makepad-fr/tada/internal/model"
)

func newClient(t *testing.T, srv *httptest.Server, token string) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(Options{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second, Token: token})
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_ValidatesURL(t *testing.T) {
	for _, u := range []string{"", "   ", "ftp://example.com", "::bad"} {
		_, err := NewHTTPClient(Options{BaseURL: u})
		assert.ErrorIs(t, err, model.ErrValidation, u)
	}
}

func TestHTTPClient_AgainstDevServer(t *testing.T) {
	n := 0
	ds, err := devserver.New(devserver.Options{NewID: func() string { n++; return fmt.Sprintf("id-%d", n) }})
	require.NoError(t, err)
	srv := httptest.NewServer(ds.Handler())
	defer srv.Close()

	c := newClient(t, srv, "")
	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := c.Create(ctx, "Write report")
	require.NoError(t, err)
	assert.Equal(t, model.Todo{ID: "id-1", Title: "Write report"}, created)

	done, err := c.SetCompleted(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	renamed, err := c.SetTitle(ctx, created.ID, "Write full report")
	require.NoError(t, err)
	assert.Equal(t, model.Todo{ID: "id-1", Title: "Write full report", Completed: true}, renamed)

	_, err = c.Create(ctx, "  ")
	assert.ErrorIs(t, err, model.ErrValidation)

	require.NoError(t, c.Delete(ctx, created.ID))
	err = c.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = c.SetCompleted(ctx, "missing", true)
	assert.ErrorIs(t, err, model.ErrNotFound)
	var opErr *model.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "set-completed", opErr.Op)
	assert.Equal(t, "missing", opErr.ID)
}

func TestHTTPClient_SendsHeaders(t *testing.T) {
	var got http.Header
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		assert.Equal(t, "/api/todos/a%2Fb", r.URL.EscapedPath())
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		_, _ = w.Write([]byte(`{"title":"x","completed":true}`))
	}))
	defer srv.Close()

	c := newClient(t, srv, "secret")
	todo, err := c.SetCompleted(context.Background(), "a/b", true)
	require.NoError(t, err)

	assert.Equal(t, "a/b", todo.ID, "id falls back to the requested one")
	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, map[string]any{"completed": true}, body)
}

func TestHTTPClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, model.ErrValidation},
		{http.StatusUnprocessableEntity, model.ErrValidation},
		{http.StatusNotFound, model.ErrNotFound},
		{http.StatusInternalServerError, model.ErrNetwork},
		{http.StatusBadGateway, model.ErrNetwork},
		{http.StatusUnauthorized, model.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			_, err := newClient(t, srv, "").SetTitle(context.Background(), "1", "t")
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorContains(t, err, "nope")
		})
	}
}

func TestHTTPClient_TransportFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newClient(t, srv, "")
	srv.Close()

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, model.ErrNetwork)
}

func TestHTTPClient_RejectsBadPayloads(t *testing.T) {
	tests := map[string]string{
		"duplicate ids": `[{"id":"1","title":"a"},{"id":"1","title":"b"}]`,
		"missing id":    `[{"title":"a"}]`,
		"not json":      `<html>`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(payload))
			}))
			defer srv.Close()

			_, err := newClient(t, srv, "").List(context.Background())
			assert.ErrorIs(t, err, model.ErrNetwork)
		})
	}
}

func TestHTTPClient_AcceptsMongoIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"64f0","title":"legacy","completed":false}]`))
	}))
	defer srv.Close()

	list, err := newClient(t, srv, "").List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Todo{{ID: "64f0", Title: "legacy"}}, list)
}
