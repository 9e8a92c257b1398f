// Package logging builds the hclog loggers used across the program.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// New returns a logger named "tada" writing to out at level.
func New(level string, out io.Writer) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "tada",
		Level:  lvl,
		Output: out,
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open resolves where logs go. A configured file always wins. Without one,
// interactive sessions log to <dir>/tada.log so the terminal UI stays
// clean, and everything else logs to stderr.
func Open(level, file, dir string, interactive bool) (hclog.Logger, io.Closer, error) {
	if file == "" && interactive {
		file = filepath.Join(dir, "tada.log")
	}
	if file == "" {
		return New(level, os.Stderr), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return nil, nil, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(level, f), f, nil
}
