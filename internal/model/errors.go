package model

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNetwork    = errors.New("network error")
	ErrNotFound   = errors.New("not found")
)

// OpError records the operation and item an error came from.
type OpError struct {
	Op  string // list, create, set-completed, set-title, delete
	ID  string // empty for list/create
	Err error
}

func (e *OpError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Kind names the error kind of err for display and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrNetwork):
		return "network"
	default:
		return "unknown"
	}
}
