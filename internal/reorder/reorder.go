// Package reorder holds the only rule that changes the relative order of
// todos: a status change moves the item to the head or tail.
package reorder

import "github.com/Makepad-fr/tada/internal/model"

// Reposition returns a new sequence with any entry for updated.ID removed
// and updated re-inserted: appended when completed, prepended otherwise.
// seq is not modified.
func Reposition(seq []model.Todo, updated model.Todo) []model.Todo {
	out := make([]model.Todo, 0, len(seq)+1)
	if !updated.Completed {
		out = append(out, updated)
	}
	for _, t := range seq {
		if t.ID != updated.ID {
			out = append(out, t)
		}
	}
	if updated.Completed {
		out = append(out, updated)
	}
	return out
}
