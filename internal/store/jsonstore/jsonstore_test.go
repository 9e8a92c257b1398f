package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	items, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todos.json")
	in := []model.Todo{{ID: "1", Title: "Buy milk"}, {ID: "2", Title: "Pay bills", Completed: true}}

	require.NoError(t, Save(path, in))
	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "json unmarshal")
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	got, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), got)

	file := filepath.Join(dir, "mine.json")
	got, err = Resolve(file)
	require.NoError(t, err)
	assert.Equal(t, file, got)
}
