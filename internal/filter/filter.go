// Package filter projects a todo sequence into the subset selected by
// the view, and counts it.
package filter

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

// Filter selects which todos are visible.
type Filter int

const (
	All Filter = iota
	Active
	Completed
)

// Filters lists every filter in tab order.
var Filters = []Filter{All, Active, Completed}

func (f Filter) String() string {
	switch f {
	case Active:
		return "active"
	case Completed:
		return "completed"
	default:
		return "all"
	}
}

// Next cycles to the following filter.
func (f Filter) Next() Filter { return Filters[(int(f)+1)%len(Filters)] }

// Parse reads a filter name.
func Parse(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return All, nil
	case "active":
		return Active, nil
	case "completed", "done":
		return Completed, nil
	}
	return All, fmt.Errorf("%w: unknown filter %q (want all|active|completed)", model.ErrValidation, s)
}

// Apply returns the todos of seq selected by f, in sequence order.
func Apply(seq []model.Todo, f Filter) []model.Todo {
	out := make([]model.Todo, 0, len(seq))
	for _, t := range seq {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Match reports whether t is visible under f.
func (f Filter) Match(t model.Todo) bool {
	switch f {
	case Active:
		return !t.Completed
	case Completed:
		return t.Completed
	default:
		return true
	}
}

// Counts summarizes a sequence. Active+Completed always equals Total.
type Counts struct {
	Total     int
	Active    int
	Completed int
}

// Count tallies seq in one pass.
func Count(seq []model.Todo) Counts {
	var c Counts
	for _, t := range seq {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	c.Total = c.Active + c.Completed
	return c
}
