package ui

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Makepad-fr/tada/internal/filter"
	"github.com/Makepad-fr/tada/internal/model"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func visibleWidth(s string) int { return runewidth.StringWidth(ansiRegexp.ReplaceAllString(s, "")) }

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// TodoLine renders one numbered row: "<n>. <box> <title>".
func TodoLine(n int, t model.Todo) string {
	th := current
	box := C(th.Muted, th.BoxUnchecked)
	title := t.Title
	if t.Completed {
		box = C(th.Success, th.BoxChecked)
		title = C(th.Muted, title)
	}
	return fmt.Sprintf("%s %s %s", C(th.Muted, fmt.Sprintf("%2d.", n)), box, title)
}

// Summary renders the counts header with a progress bar.
func Summary(c filter.Counts) string {
	th := current
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d  %s",
		C(th.Title, "Todos"),
		C(th.Success, th.SymDone), c.Completed,
		C(th.Pending, th.SymUnchecked), c.Active,
		C(th.Accent, "Total"), c.Total,
		ProgressBar(c.Completed, c.Total, 20),
	)
}

// Panel draws a framed box using the current theme.
func Panel(w io.Writer, lines []string) {
	t := current
	// compute visible width
	maxw := 0
	for _, ln := range lines {
		if vw := visibleWidth(ln); vw > maxw {
			maxw = vw
		}
	}
	pad := func(s string) string {
		if vis := visibleWidth(s); vis < maxw {
			s = s + strings.Repeat(" ", maxw-vis)
		}
		return s
	}
	fmt.Fprintln(w, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		fmt.Fprintln(w, t.V+" "+pad(ln)+" "+t.V)
	}
	fmt.Fprintln(w, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}
