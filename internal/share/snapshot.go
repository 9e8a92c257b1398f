// Package share renders the todo list as plain text and hands it to the
// mail client or the clipboard.
package share

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

// Status glyphs used in a snapshot.
const (
	DoneGlyph = "✅"
	OpenGlyph = "⬜"
)

// ErrEmpty is returned when there is nothing to share.
var ErrEmpty = fmt.Errorf("%w: no todos to share", model.ErrValidation)

// Build renders the whole sequence, unfiltered and in order, one
// "<n>. <title> <glyph>" line per todo. The same input always yields the
// same text.
func Build(seq []model.Todo) (string, error) {
	if len(seq) == 0 {
		return "", ErrEmpty
	}
	var b strings.Builder
	for i, t := range seq {
		if i > 0 {
			b.WriteByte('\n')
		}
		glyph := OpenGlyph
		if t.Completed {
			glyph = DoneGlyph
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(t.Title)
		b.WriteByte(' ')
		b.WriteString(glyph)
	}
	return b.String(), nil
}
