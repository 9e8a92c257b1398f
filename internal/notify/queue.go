// Package notify holds the one transient status message the UI shows.
package notify

import (
	"sync"
	"time"
)

// DefaultDuration is how long a notification stays up.
const DefaultDuration = 2500 * time.Millisecond

// Kind of notification.
type Kind int

const (
	Success Kind = iota
	Error
)

func (k Kind) String() string {
	if k == Error {
		return "error"
	}
	return "success"
}

// Notification is a message with its expiry time.
type Notification struct {
	Message string
	Kind    Kind
	Expiry  time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// OnExpire registers fn to run (on the timer goroutine) when the live
// notification expires.
func OnExpire(fn func()) Option {
	return func(q *Queue) { q.onExpire = fn }
}

// Queue holds at most one live notification. Posting replaces the
// current one and restarts the expiry timer.
type Queue struct {
	ttl      time.Duration
	now      func() time.Time
	onExpire func()

	mu    sync.Mutex
	cur   *Notification
	timer *time.Timer
	gen   uint64
}

// New returns an empty queue; ttl <= 0 means DefaultDuration.
func New(ttl time.Duration, opts ...Option) *Queue {
	if ttl <= 0 {
		ttl = DefaultDuration
	}
	q := &Queue{ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Duration is the configured lifetime of a notification.
func (q *Queue) Duration() time.Duration { return q.ttl }

// Post shows message, discarding whatever was showing.
func (q *Queue) Post(message string, kind Kind) Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.timer != nil {
		q.timer.Stop()
	}
	q.gen++
	gen := q.gen
	n := Notification{Message: message, Kind: kind, Expiry: q.now().Add(q.ttl)}
	q.cur = &n
	q.timer = time.AfterFunc(q.ttl, func() { q.expire(gen) })
	return n
}

// Success posts a success message.
func (q *Queue) Success(message string) Notification { return q.Post(message, Success) }

// Error posts an error message.
func (q *Queue) Error(message string) Notification { return q.Post(message, Error) }

// Current returns the live notification, if any.
func (q *Queue) Current() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cur == nil || !q.now().Before(q.cur.Expiry) {
		return Notification{}, false
	}
	return *q.cur, true
}

// Stop clears the queue and cancels the pending timer.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.gen++
	q.cur = nil
}

func (q *Queue) expire(gen uint64) {
	q.mu.Lock()
	if gen != q.gen {
		// superseded by a newer post
		q.mu.Unlock()
		return
	}
	q.cur = nil
	q.timer = nil
	fn := q.onExpire
	q.mu.Unlock()
	if fn != nil {
		fn()
	}
}
