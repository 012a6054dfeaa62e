package session

import (
	"context"
	"sync"
)

// Registry hands out the session of each vendor, restoring saved state the
// first time a vendor is seen.
type Registry struct {
	mu       sync.Mutex
	deps     Dependencies
	sessions map[string]*Session
}

func NewRegistry(deps Dependencies) *Registry {
	return &Registry{deps: deps, sessions: make(map[string]*Session)}
}

// Get returns the session of vendorID, creating it on first use. The stored
// snapshot is loaded without holding the registry lock; when two callers race
// on a new vendor the first one to register wins.
func (r *Registry) Get(ctx context.Context, vendorID string) *Session {
	r.mu.Lock()
	s, ok := r.sessions[vendorID]
	r.mu.Unlock()
	if ok {
		return s
	}

	fresh := New(vendorID, r.deps)
	fresh.Load(ctx)

	r.mu.Lock()
	if s, ok := r.sessions[vendorID]; ok {
		r.mu.Unlock()
		fresh.Close()
		return s
	}
	r.sessions[vendorID] = fresh
	r.mu.Unlock()
	return fresh
}

// Drop forgets a vendor's session and closes its subscriptions
func (r *Registry) Drop(vendorID string) {
	r.mu.Lock()
	s, ok := r.sessions[vendorID]
	delete(r.sessions, vendorID)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
