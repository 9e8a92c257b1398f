// Package ui renders the non-interactive command output: styled status
// lines, themed todo rows and a framed panel.
package ui

import (
	"fmt"
	"io"
	"os"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

var (
	forceColor   bool
	disableColor bool
)

// SetColorMode applies "auto", "always" or "never".
func SetColorMode(mode string) {
	switch mode {
	case "always":
		forceColor, disableColor = true, false
	case "never":
		forceColor, disableColor = false, true
	default:
		forceColor, disableColor = false, false
	}
}

func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// C wraps s in color when the output supports it.
func C(color, s string) string {
	if disableColor || current.Plain || color == "" {
		return s
	}
	if forceColor || isTTY() {
		return color + s + reset
	}
	return s
}

// OK prints a success line.
func OK(w io.Writer, msg string) { fmt.Fprintln(w, C(current.Success, symCheck+" "+msg)) }

// Fail prints an error line.
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, C(current.Error, symCross+" "+msg)) }

// Muted renders secondary text.
func Muted(s string) string { return C(current.Muted, s) }
