// Package store holds the authoritative, ordered list of todos and keeps it
// in step with the remote service.
//
// Every mutation goes to the service first; the local sequence only
// changes once the service has accepted it. Operations on the same id are
// queued, so a toggle and an edit of one item never race each other.
// Results that arrive for an item that has meanwhile disappeared (e.g. a
// reload dropped it) are discarded instead of resurrecting it. A list that
// was requested before a change committed gets that change replayed on
// top, so a reload never undoes a confirmed add, update or remove.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
	"github.com/Makepad-fr/tada/internal/reorder"
)

// EventKind says what a committed change was.
type EventKind int

const (
	Loaded EventKind = iota
	Added
	Updated
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	default:
		return "loaded"
	}
}

// Event is delivered to subscribers after a change is committed.
// ID and Todo are empty for Loaded.
type Event struct {
	Kind EventKind
	ID   string
	Todo model.Todo
}

// Store is safe for concurrent use.
type Store struct {
	client remote.Client
	log    hclog.Logger
	locks  keyedMutex

	mu    sync.RWMutex
	items []model.Todo
	subs  []func(Event)

	gen     uint64      // bumped by every commit
	loads   int         // list calls in flight
	journal []journaled // commits made while loads > 0
}

type journaled struct {
	gen   uint64
	ev    Event
	items []model.Todo // set for Loaded
}

// New returns an empty store backed by client.
func New(client remote.Client, log hclog.Logger) *Store {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Store{client: client, log: log, items: []model.Todo{}}
}

// Subscribe registers fn for every committed change. fn runs on the
// goroutine that made the change, outside the store's lock.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Items returns a copy of the current sequence.
func (s *Store) Items() []model.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Clone(s.items)
}

// Len is the number of todos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get looks up one todo.
func (s *Store) Get(id string) (model.Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := model.IndexOf(s.items, id); i >= 0 {
		return s.items[i], true
	}
	return model.Todo{}, false
}

// Has reports whether id is in the sequence.
func (s *Store) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Load replaces the whole sequence with the service's list. On failure
// the sequence is left as it was. Changes committed while the list was in
// flight are replayed onto it.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	start := s.gen
	s.loads++
	s.mu.Unlock()

	items, err := s.client.List(ctx)

	s.mu.Lock()
	s.loads--
	if err != nil {
		s.trimJournal()
		s.mu.Unlock()
		s.log.Error("load failed", "error", err)
		return err
	}
	next := model.Clone(items)
	replayed := 0
	for _, j := range s.journal {
		if j.gen > start {
			next = replay(next, j)
			replayed++
		}
	}
	s.items = next
	s.record(Event{Kind: Loaded}, next)
	s.trimJournal()
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Kind: Loaded})
	}
	if replayed > 0 {
		s.log.Debug("replayed changes onto late list", "count", replayed)
	}
	s.log.Debug("loaded", "count", len(next))
	return nil
}

// Add creates a todo and puts it at the head of the sequence. A blank
// title is rejected without contacting the service.
func (s *Store) Add(ctx context.Context, title string) (model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Todo{}, s.rejected("add", "", "empty title")
	}
	created, err := s.client.Create(ctx, title)
	if err != nil {
		s.log.Error("add failed", "title", title, "error", err)
		return model.Todo{}, err
	}
	s.commit(Event{Kind: Added, ID: created.ID, Todo: created}, func(cur []model.Todo) []model.Todo {
		out := make([]model.Todo, 0, len(cur)+1)
		out = append(out, created)
		for _, t := range cur {
			if t.ID != created.ID {
				out = append(out, t)
			}
		}
		return out
	})
	return created, nil
}

// Toggle flips the completed flag of id and repositions it: completed
// items go to the tail, reactivated ones to the head.
func (s *Store) Toggle(ctx context.Context, id string) (model.Todo, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	cur, ok := s.Get(id)
	if !ok {
		return model.Todo{}, s.rejectedNotFound("toggle", id)
	}
	updated, err := s.client.SetCompleted(ctx, id, !cur.Completed)
	if err != nil {
		s.log.Error("toggle failed", "id", id, "error", err)
		return model.Todo{}, err
	}
	updated.ID = id
	if !s.commitIfPresent(id, Event{Kind: Updated, ID: id, Todo: updated}, func(seq []model.Todo) []model.Todo {
		return reorder.Reposition(seq, updated)
	}) {
		return model.Todo{}, s.stale("toggle", id)
	}
	return updated, nil
}

// Edit changes the title of id in place; the item does not move. A blank
// title is rejected without contacting the service.
func (s *Store) Edit(ctx context.Context, id, title string) (model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Todo{}, s.rejected("edit", id, "empty title")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if !s.Has(id) {
		return model.Todo{}, s.rejectedNotFound("edit", id)
	}
	updated, err := s.client.SetTitle(ctx, id, title)
	if err != nil {
		s.log.Error("edit failed", "id", id, "error", err)
		return model.Todo{}, err
	}
	updated.ID = id
	if !s.commitIfPresent(id, Event{Kind: Updated, ID: id, Todo: updated}, func(seq []model.Todo) []model.Todo {
		out := model.Clone(seq)
		out[model.IndexOf(out, id)] = updated
		return out
	}) {
		return model.Todo{}, s.stale("edit", id)
	}
	return updated, nil
}

// Remove deletes id on the service and then locally.
func (s *Store) Remove(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	removed, ok := s.Get(id)
	if !ok {
		return s.rejectedNotFound("remove", id)
	}
	if err := s.client.Delete(ctx, id); err != nil {
		s.log.Error("remove failed", "id", id, "error", err)
		return err
	}
	// Already gone locally (e.g. a reload) is fine: the outcome is the same.
	s.commitIfPresent(id, Event{Kind: Removed, ID: id, Todo: removed}, func(seq []model.Todo) []model.Todo {
		out := make([]model.Todo, 0, len(seq))
		for _, t := range seq {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out
	})
	return nil
}

// commit swaps in next(current) and notifies subscribers.
func (s *Store) commit(ev Event, next func([]model.Todo) []model.Todo) {
	s.mu.Lock()
	s.items = next(s.items)
	s.record(ev, nil)
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// commitIfPresent is commit guarded by id still being in the sequence.
func (s *Store) commitIfPresent(id string, ev Event, next func([]model.Todo) []model.Todo) bool {
	s.mu.Lock()
	if model.IndexOf(s.items, id) < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = next(s.items)
	s.record(ev, nil)
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
	return true
}

// record bumps the generation and journals ev while a list call is in
// flight. Callers hold s.mu.
func (s *Store) record(ev Event, items []model.Todo) {
	s.gen++
	if s.loads > 0 {
		s.journal = append(s.journal, journaled{gen: s.gen, ev: ev, items: model.Clone(items)})
	}
}

// trimJournal drops the journal once no list call can need it.
// Callers hold s.mu.
func (s *Store) trimJournal() {
	if s.loads == 0 {
		s.journal = nil
	}
}

// replay applies one committed change to a list fetched before it.
func replay(seq []model.Todo, j journaled) []model.Todo {
	switch j.ev.Kind {
	case Loaded:
		return model.Clone(j.items)
	case Added:
		out := make([]model.Todo, 0, len(seq)+1)
		out = append(out, j.ev.Todo)
		for _, t := range seq {
			if t.ID != j.ev.ID {
				out = append(out, t)
			}
		}
		return out
	case Removed:
		out := make([]model.Todo, 0, len(seq))
		for _, t := range seq {
			if t.ID != j.ev.ID {
				out = append(out, t)
			}
		}
		return out
	case Updated:
		i := model.IndexOf(seq, j.ev.ID)
		if i < 0 {
			return seq
		}
		if seq[i].Completed != j.ev.Todo.Completed {
			return reorder.Reposition(seq, j.ev.Todo)
		}
		out := model.Clone(seq)
		out[i] = j.ev.Todo
		return out
	}
	return seq
}

func (s *Store) rejected(op, id, why string) error {
	s.log.Debug("rejected locally", "op", op, "id", id, "reason", why)
	return &model.OpError{Op: op, ID: id, Err: fmt.Errorf("%w: %s", model.ErrValidation, why)}
}

func (s *Store) rejectedNotFound(op, id string) error {
	s.log.Debug("rejected locally", "op", op, "id", id, "reason", "unknown id")
	return &model.OpError{Op: op, ID: id, Err: model.ErrNotFound}
}

func (s *Store) stale(op, id string) error {
	s.log.Warn("discarding result for item no longer present", "op", op, "id", id)
	return &model.OpError{Op: op, ID: id, Err: fmt.Errorf("%w: removed while request was in flight", model.ErrNotFound)}
}
