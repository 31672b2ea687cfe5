package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxToasts is how many notifications can be visible at once
const MaxToasts = 5

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// Toast is one notification
type Toast struct {
	ID        string
	Kind      Kind
	Message   string
	CreatedAt time.Time
}

// Store holds the visible notifications. It is created by whoever owns the
// screen and must be closed by it; there is no package-level instance.
type Store struct {
	mu          sync.Mutex
	ttl         time.Duration
	toasts      []Toast
	timers      map[string]*time.Timer
	subscribers map[int]func([]Toast)
	nextSub     int
	closed      bool
}

// New creates a store. With ttl > 0 every toast dismisses itself after ttl.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:         ttl,
		timers:      make(map[string]*time.Timer),
		subscribers: make(map[int]func([]Toast)),
	}
}

// Push adds a toast, evicting the oldest one when the store is full
func (s *Store) Push(kind Kind, message string) string {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ""
	}

	t := Toast{ID: uuid.NewString(), Kind: kind, Message: message, CreatedAt: time.Now()}
	for len(s.toasts) >= MaxToasts {
		s.removeLocked(s.toasts[0].ID)
	}
	s.toasts = append(s.toasts, t)
	if s.ttl > 0 {
		id := t.ID
		s.timers[id] = time.AfterFunc(s.ttl, func() { s.Dismiss(id) })
	}
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return t.ID
}

func (s *Store) Success(message string) string { return s.Push(KindSuccess, message) }
func (s *Store) Error(message string) string   { return s.Push(KindError, message) }
func (s *Store) Info(message string) string    { return s.Push(KindInfo, message) }

// Dismiss removes a toast; unknown ids are ignored
func (s *Store) Dismiss(id string) {
	s.mu.Lock()
	if !s.removeLocked(id) {
		s.mu.Unlock()
		return
	}
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
}

// List returns the visible toasts, oldest first
func (s *Store) List() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

// Subscribe registers fn to be called with the full list after every change.
// The returned func unsubscribes.
func (s *Store) Subscribe(fn func([]Toast)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close stops pending timers and drops all subscribers
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.toasts = nil
	s.subscribers = make(map[int]func([]Toast))
	s.closed = true
}

func (s *Store) removeLocked(id string) bool {
	for i, t := range s.toasts {
		if t.ID != id {
			continue
		}
		s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
		if timer, ok := s.timers[id]; ok {
			timer.Stop()
			delete(s.timers, id)
		}
		return true
	}
	return false
}

func (s *Store) snapshotLocked() ([]Toast, []func([]Toast)) {
	snapshot := make([]Toast, len(s.toasts))
	copy(snapshot, s.toasts)
	subs := make([]func([]Toast), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return snapshot, subs
}

func notify(subs []func([]Toast), snapshot []Toast) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
