package appstate

import (
	"fmt"
	"sync"
	"time"
)

type entry struct {
	state    *State
	lastSeen time.Time
}

// Registry keeps one State per browser session that has logged in, refreshed
// or logged out. Read-only visitors never get an entry.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry // browserID -> entry
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Get returns the state for browserID, creating it on first use
func (r *Registry) Get(browserID string) (*State, error) {
	if browserID == "" {
		return nil, fmt.Errorf("browserID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[browserID]
	if !ok {
		e = &entry{state: New()}
		r.entries[browserID] = e
	}
	e.lastSeen = time.Now()
	return e.state, nil
}

// Lookup returns the state for browserID without creating one
func (r *Registry) Lookup(browserID string) (*State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[browserID]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.state, true
}

func (r *Registry) Delete(browserID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, browserID)
}

// EvictIdle drops every entry not seen since cutoff and returns their ids
func (r *Registry) EvictIdle(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
