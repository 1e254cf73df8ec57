package services

import (
	"sync"
	"time"
)

// SessionEvent describes a change of authentication state.
type SessionEvent struct {
	Type   string    `json:"type"` // events.SignedUp, events.SignedIn or events.SignedOut
	UserID string    `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	At     time.Time `json:"at"`
}

// SessionStore fans session events out to subscribers. Callbacks run on the
// publishing goroutine and must not block.
type SessionStore struct {
	mu   sync.RWMutex
	subs map[uint64]func(SessionEvent)
	next uint64
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{subs: make(map[uint64]func(SessionEvent))}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	store *SessionStore
	id    uint64
	once  sync.Once
}

// Subscribe registers fn for every future event until the subscription is released.
func (s *SessionStore) Subscribe(fn func(SessionEvent)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.subs[s.next] = fn
	return &Subscription{store: s, id: s.next}
}

// Unsubscribe releases the subscription. It is safe to call more than once.
func (sub *Subscription) Unsubscribe() {
	sub.once.Do(func() {
		sub.store.mu.Lock()
		delete(sub.store.subs, sub.id)
		sub.store.mu.Unlock()
	})
}

// Publish delivers ev to every current subscriber.
func (s *SessionStore) Publish(ev SessionEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	s.mu.RLock()
	fns := make([]func(SessionEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Subscribers returns the number of active subscriptions.
func (s *SessionStore) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
