package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

// Theme is the palette, checkbox glyphs and panel frame used by the
// plain-output renderers. A Plain theme never emits color.
type Theme struct {
	Name  string
	Plain bool

	Title, Muted, Accent, Success, Error, Pending string
	BoxUnchecked, BoxChecked                      string
	CornerTL, CornerTR, CornerBL, CornerBR        string
	H, V                                          string
	SymDone, SymUnchecked                         string
}

// DefaultTheme is used until SetTheme picks another one.
const DefaultTheme = "classic"

var themes = map[string]Theme{
	"classic": {
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Pending: fgYellow,
		BoxUnchecked: "☐", BoxChecked: "☑",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
		SymDone: "✔", SymUnchecked: "•",
	},
	"neon": {
		Title: "\033[95m", Muted: fgGray, Accent: "\033[96m",
		Success: fgGreen, Error: fgRed, Pending: "\033[93m",
		BoxUnchecked: "◻", BoxChecked: "◼",
		CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
		H: "─", V: "│",
		SymDone: "✔", SymUnchecked: "•",
	},
	"mono": {
		Plain:        true,
		BoxUnchecked: "[ ]", BoxChecked: "[x]",
		CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
		H: "-", V: "|",
		SymDone: "x", SymUnchecked: "-",
	},
}

var current = lookup(DefaultTheme)

func lookup(name string) Theme {
	t := themes[name]
	t.Name = name
	return t
}

// ThemeNames lists the registered themes, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetTheme switches the active theme. Unknown names leave it unchanged.
func SetTheme(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := themes[name]; !ok {
		return fmt.Errorf("%w: unknown theme %q (want %s)", model.ErrValidation, name, strings.Join(ThemeNames(), "|"))
	}
	current = lookup(name)
	return nil
}

// Current returns the active theme.
func Current() Theme { return current }
