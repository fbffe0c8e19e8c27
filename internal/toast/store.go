// Package toast holds the console's transient notifications.
//
// A Store is owned by one component tree (the app model). Every toast is
// removed exactly once: either its expiry timer fires or Close is called,
// and Close cancels the pending timer.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"keyconsole/internal/timer"
)

// DefaultTTL is how long a toast stays visible unless closed earlier.
const DefaultTTL = 4 * time.Second

// Kind is the visual category of a toast.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Toast is one visible notification.
type Toast struct {
	ID      string
	Message string
	Kind    Kind
}

// Store is an ordered list of visible toasts with auto-expiry.
type Store struct {
	mu       sync.Mutex
	sched    timer.Scheduler
	ttl      time.Duration
	toasts   []Toast
	timers   map[string]timer.Timer
	onChange func()
	newID    func() string
}

// Option configures a Store.
type Option func(*Store)

// WithScheduler sets the timer source. Defaults to timer.Real().
func WithScheduler(s timer.Scheduler) Option {
	return func(st *Store) { st.sched = s }
}

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(st *Store) { st.ttl = d }
}

// WithOnChange registers a hook called (without the lock held) after every
// mutation, including timer-driven expiry.
func WithOnChange(fn func()) Option {
	return func(st *Store) { st.onChange = fn }
}

// WithIDFunc overrides the id generator. Used in tests.
func WithIDFunc(fn func() string) Option {
	return func(st *Store) { st.newID = fn }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sched:  timer.Real(),
		ttl:    DefaultTTL,
		timers: make(map[string]timer.Timer),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetOnChange replaces the change hook. The app wires this once the Bubble
// Tea program exists.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Show appends a toast and schedules its removal. An empty kind means success.
// Returns the new toast's id.
func (s *Store) Show(message string, kind Kind) string {
	if kind == "" {
		kind = KindSuccess
	}
	s.mu.Lock()
	id := s.newID()
	for s.indexLocked(id) >= 0 {
		id = s.newID()
	}
	s.toasts = append(s.toasts, Toast{ID: id, Message: message, Kind: kind})
	s.timers[id] = s.sched.AfterFunc(s.ttl, func() { s.expire(id) })
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	return id
}

// Success is Show with KindSuccess.
func (s *Store) Success(message string) string {
	return s.Show(message, KindSuccess)
}

// Error is Show with KindError.
func (s *Store) Error(message string) string {
	return s.Show(message, KindError)
}

// Close removes the toast with id and cancels its timer. Closing an unknown
// or already removed id is a no-op. Reports whether a toast was removed.
func (s *Store) Close(id string) bool {
	s.mu.Lock()
	removed := s.removeLocked(id)
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	notify := s.onChange
	s.mu.Unlock()

	if removed && notify != nil {
		notify()
	}
	return removed
}

// expire is the timer path. A Close that won the race leaves nothing to do.
func (s *Store) expire(id string) {
	s.mu.Lock()
	removed := s.removeLocked(id)
	delete(s.timers, id)
	notify := s.onChange
	s.mu.Unlock()

	if removed && notify != nil {
		notify()
	}
}

// List returns a snapshot of visible toasts in insertion order.
func (s *Store) List() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

// Len returns the number of visible toasts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toasts)
}

// Reset drops all toasts and cancels their timers, as on remount.
func (s *Store) Reset() {
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	hadToasts := len(s.toasts) > 0
	s.toasts = nil
	notify := s.onChange
	s.mu.Unlock()

	if hadToasts && notify != nil {
		notify()
	}
}

func (s *Store) indexLocked(id string) int {
	for i, t := range s.toasts {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(id string) bool {
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
	return true
}
