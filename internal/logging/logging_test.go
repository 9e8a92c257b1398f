package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf)
	log.Debug("hidden")
	log.Info("shown", "id", "1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "tada")
	assert.Contains(t, out, "id=1")
}

func TestNew_UnknownLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	log := New("chatty", &buf)
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestOpen_InteractiveUsesLogFile(t *testing.T) {
	dir := t.TempDir()
	log, closer, err := Open("info", "", dir, true)
	require.NoError(t, err)
	log.Info("to file")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(filepath.Join(dir, "tada.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "to file")
}

func TestOpen_NonInteractiveUsesStderr(t *testing.T) {
	dir := t.TempDir()
	_, closer, err := Open("info", "", dir, false)
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	_, err = os.Stat(filepath.Join(dir, "tada.log"))
	assert.True(t, os.IsNotExist(err))
}
