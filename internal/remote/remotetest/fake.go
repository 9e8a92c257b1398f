// Package remotetest provides an in-memory remote.Client for tests.
package remotetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/remote"
)

// Fake keeps todos in memory and behaves like the dev server. Any *Func
// field that is set replaces the built-in behavior for that call.
type Fake struct {
	ListFunc         func(ctx context.Context) ([]model.Todo, error)
	CreateFunc       func(ctx context.Context, title string) (model.Todo, error)
	SetCompletedFunc func(ctx context.Context, id string, completed bool) (model.Todo, error)
	SetTitleFunc     func(ctx context.Context, id, title string) (model.Todo, error)
	DeleteFunc       func(ctx context.Context, id string) error

	mu    sync.Mutex
	items []model.Todo
	next  int
	calls map[string]int
}

var _ remote.Client = (*Fake)(nil)

// NewFake returns a Fake seeded with items (server order).
func NewFake(items ...model.Todo) *Fake {
	return &Fake{items: model.Clone(items), calls: map[string]int{}}
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls sums every op.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Items returns the fake server state.
func (f *Fake) Items() []model.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.Clone(f.items)
}

func (f *Fake) count(op string) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
	f.mu.Unlock()
}

func (f *Fake) List(ctx context.Context) ([]model.Todo, error) {
	f.count("list")
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	return f.Items(), nil
}

func (f *Fake) Create(ctx context.Context, title string) (model.Todo, error) {
	f.count("create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, title)
	}
	if strings.TrimSpace(title) == "" {
		return model.Todo{}, &model.OpError{Op: "create", Err: model.ErrValidation}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	t := model.Todo{ID: fmt.Sprintf("todo-%d", f.next), Title: title}
	f.items = append([]model.Todo{t}, f.items...)
	return t, nil
}

func (f *Fake) SetCompleted(ctx context.Context, id string, completed bool) (model.Todo, error) {
	f.count("set-completed")
	if f.SetCompletedFunc != nil {
		return f.SetCompletedFunc(ctx, id, completed)
	}
	return f.update("set-completed", id, func(t *model.Todo) { t.Completed = completed })
}

func (f *Fake) SetTitle(ctx context.Context, id, title string) (model.Todo, error) {
	f.count("set-title")
	if f.SetTitleFunc != nil {
		return f.SetTitleFunc(ctx, id, title)
	}
	return f.update("set-title", id, func(t *model.Todo) { t.Title = title })
}

func (f *Fake) Delete(ctx context.Context, id string) error {
	f.count("delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := model.IndexOf(f.items, id)
	if i < 0 {
		return &model.OpError{Op: "delete", ID: id, Err: model.ErrNotFound}
	}
	f.items = append(f.items[:i:i], f.items[i+1:]...)
	return nil
}

func (f *Fake) update(op, id string, apply func(*model.Todo)) (model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := model.IndexOf(f.items, id)
	if i < 0 {
		return model.Todo{}, &model.OpError{Op: op, ID: id, Err: model.ErrNotFound}
	}
	apply(&f.items[i])
	return f.items[i], nil
}
