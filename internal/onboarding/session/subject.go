package session

import (
	"sync"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

// Subject fans state changes out to subscribers. A new subscriber receives the
// current state first. Every subscriber channel holds at most one pending
// state and a slow reader only ever sees the latest one.
type Subject struct {
	mu      sync.Mutex
	current domain.State
	nextID  int
	subs    map[int]chan domain.State
	closed  bool
}

func NewSubject(initial domain.State) *Subject {
	return &Subject{current: initial.Clone(), subs: make(map[int]chan domain.State)}
}

// Subscription is a live view on the state stream
type Subscription struct {
	id      int
	C       <-chan domain.State
	subject *Subject
}

// Unsubscribe stops delivery and closes C
func (s *Subscription) Unsubscribe() {
	s.subject.remove(s.id)
}

func (s *Subject) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan domain.State, 1)
	if s.closed {
		close(ch)
		return &Subscription{id: -1, C: ch, subject: s}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.current.Clone()
	return &Subscription{id: id, C: ch, subject: s}
}

// Next records a new state and offers it to every subscriber
func (s *Subject) Next(state domain.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = state.Clone()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.current.Clone()
	}
}

// Value returns the latest state
func (s *Subject) Value() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Close ends every subscription
func (s *Subject) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Subject) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
	}
}
