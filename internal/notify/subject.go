package notify

import (
	"sync"
)

// Listener receives the subject's value after every Set.
type Listener[T any] func(T)

// Subscription is the handle returned by Subject.Subscribe. The subscriber
// owns it and must hand it back to Unsubscribe on teardown.
type Subscription struct {
	ID     uint64
	closed bool
	mu     sync.RWMutex
}

// IsClosed returns whether the subscription has been removed.
func (s *Subscription) IsClosed() bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Metrics tracks subject usage.
type Metrics struct {
	TotalSubscriptions  int
	ActiveSubscriptions int
	Published           int64
	Delivered           int64
}

type entry[T any] struct {
	sub      *Subscription
	listener Listener[T]
}

// Subject holds a value and notifies listeners synchronously, in
// subscription order, every time it is Set. Listeners run on the caller's
// goroutine and outside the subject's lock, so a listener may read the
// subject or unsubscribe itself.
type Subject[T any] struct {
	mu      sync.RWMutex
	value   T
	entries []entry[T]
	nextID  uint64
	metrics Metrics
}

// NewSubject creates a subject holding initial.
func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

// Get returns the current value.
func (s *Subject[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores v and notifies every active listener.
func (s *Subject[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	listeners := make([]entry[T], len(s.entries))
	copy(listeners, s.entries)
	s.metrics.Published++
	s.mu.Unlock()

	delivered := 0
	for _, e := range listeners {
		// Unsubscribed by an earlier listener in this same round.
		if e.sub.IsClosed() {
			continue
		}
		e.listener(v)
		delivered++
	}

	s.mu.Lock()
	s.metrics.Delivered += int64(delivered)
	s.mu.Unlock()
}

// Subscribe registers listener. It is not called with the current value;
// callers that need it read Get after subscribing.
func (s *Subject[T]) Subscribe(listener Listener[T]) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sub := &Subscription{ID: s.nextID}
	s.entries = append(s.entries, entry[T]{sub: sub, listener: listener})
	s.metrics.TotalSubscriptions++
	s.metrics.ActiveSubscriptions++
	return sub
}

// Unsubscribe removes the subscription. Unknown or already closed
// subscriptions are ignored.
func (s *Subject[T]) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.sub == sub {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.metrics.ActiveSubscriptions--
			sub.close()
			return
		}
	}
}

// GetMetrics returns a copy of the subject metrics.
func (s *Subject[T]) GetMetrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}
