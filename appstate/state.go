// Package appstate holds the UI state shared by the pages of one browser:
// whether the user is authenticated and the last error to show.
package appstate

import "sync"

// State is the application-state container injected into the session manager
// and the page handlers.
type State struct {
	mu            sync.RWMutex
	authenticated bool
	errorMessage  *string
}

// Snapshot is a point in time copy of State for rendering
type Snapshot struct {
	Authenticated bool
	Error         string
	HasError      bool
}

func New() *State {
	return &State{}
}

func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *State) SetAuthenticated(authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = authenticated
}

// Error returns the last error message and whether one is set
func (s *State) Error() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.errorMessage == nil {
		return "", false
	}
	return *s.errorMessage, true
}

// SetError overwrites the last error message
func (s *State) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorMessage = &message
}

func (s *State) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorMessage = nil
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Authenticated: s.authenticated}
	if s.errorMessage != nil {
		snap.Error = *s.errorMessage
		snap.HasError = true
	}
	return snap
}
