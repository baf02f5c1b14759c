// internal/store/memory.go
//
// In-memory registry of live game sessions.
//
// Characteristics:
//   - Holds one *session.Orchestrator per player id.
//   - Concurrency-safe via RWMutex (concurrent lookups, exclusive creation).
//   - Sessions are lost when the process restarts; the score survives
//     through the score store each session was opened with.

package store

import (
	"errors"
	"sync"

	"github.com/robalobadob/hangman/apps/go-server/internal/session"
)

var ErrNotFound = errors.New("session not found")

// Factory builds a session for a player the first time they show up.
type Factory func(player string) *session.Orchestrator

// Registry maps player ids to their sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Orchestrator
	factory  Factory
}

// NewRegistry constructs an empty registry.
func NewRegistry(f Factory) *Registry {
	return &Registry{sessions: make(map[string]*session.Orchestrator), factory: f}
}

// Get looks up a player's session.
func (r *Registry) Get(player string) (*session.Orchestrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[player]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// GetOrCreate returns the player's session, creating it on first use.
func (r *Registry) GetOrCreate(player string) *session.Orchestrator {
	if s, err := r.Get(player); err == nil {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[player]; ok {
		return s
	}
	s := r.factory(player)
	r.sessions[player] = s
	return s
}

// Delete closes and forgets a player's session.
func (r *Registry) Delete(player string) {
	r.mu.Lock()
	s, ok := r.sessions[player]
	delete(r.sessions, player)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every session. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*session.Orchestrator)
	r.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
