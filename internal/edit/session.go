// Package edit tracks the single inline edit the user may have open.
package edit

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
)

// ErrNotEditing is returned when a draft change or save arrives while idle.
var ErrNotEditing = fmt.Errorf("%w: no edit in progress", model.ErrValidation)

// Editor is what a session saves through; *store.Store satisfies it.
type Editor interface {
	Edit(ctx context.Context, id, title string) (model.Todo, error)
	Has(id string) bool
}

// State of a Session.
type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// Session is Idle or Editing(id, draft). The zero value is Idle and ready
// to use. Safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	state State
	id    string
	draft string
}

// Start begins editing todo, seeding the draft with its title. Any edit
// already open is dropped.
func (s *Session) Start(todo model.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.id, s.draft = Editing, todo.ID, todo.Title
}

// ChangeDraft replaces the draft text.
func (s *Session) ChangeDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Editing {
		return ErrNotEditing
	}
	s.draft = text
	return nil
}

// Save writes the draft through ed. It is refused without a transition
// when idle or when the draft is blank. If the target has vanished the
// session drops back to Idle. A failed save keeps the session open so the
// user can retry or cancel.
func (s *Session) Save(ctx context.Context, ed Editor) (model.Todo, error) {
	s.mu.Lock()
	if s.state != Editing {
		s.mu.Unlock()
		return model.Todo{}, ErrNotEditing
	}
	id, draft := s.id, s.draft
	s.mu.Unlock()

	if strings.TrimSpace(draft) == "" {
		return model.Todo{}, &model.OpError{Op: "save", ID: id, Err: fmt.Errorf("%w: title cannot be empty", model.ErrValidation)}
	}
	if !ed.Has(id) {
		s.ExternalRemoval(id)
		return model.Todo{}, &model.OpError{Op: "save", ID: id, Err: model.ErrNotFound}
	}

	updated, err := ed.Edit(ctx, id, draft)
	if err != nil {
		return model.Todo{}, err
	}
	s.mu.Lock()
	if s.state == Editing && s.id == id {
		s.reset()
	}
	s.mu.Unlock()
	return updated, nil
}

// Cancel drops the edit; the todo is left untouched.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// ExternalRemoval ends the edit if it targets id. Reports whether it did.
func (s *Session) ExternalRemoval(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Editing || s.id != id {
		return false
	}
	s.reset()
	return true
}

// Reconcile ends the edit if has no longer knows the target, e.g. after a
// reload. Reports whether it did.
func (s *Session) Reconcile(has func(id string) bool) bool {
	s.mu.Lock()
	id, editing := s.id, s.state == Editing
	s.mu.Unlock()
	if !editing || has(id) {
		return false
	}
	return s.ExternalRemoval(id)
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Target returns the edited id and draft; ok is false when idle.
func (s *Session) Target() (id, draft string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.draft, s.state == Editing
}

func (s *Session) reset() {
	s.state, s.id, s.draft = Idle, "", ""
}
