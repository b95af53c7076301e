// Package session owns the per-session conversation logs for the web view.
// Sessions are ephemeral: they live in memory only and disappear when the
// process exits.
package session

import (
	"sync"

	"github.com/hallwaylabs/parley/pkg/chat"
)

// Store hands out conversation logs keyed by session ID. The store is the
// external owner of every log; request handlers fetch a session's log per
// call instead of sharing ambient mutable state.
type Store interface {
	// Log returns the session's conversation log, creating it if needed.
	Log(id string) *chat.Log

	// Clear resets the session's log to empty. A no-op for unknown sessions.
	Clear(id string)

	// Remove drops the session entirely.
	Remove(id string)

	// Len returns the number of live sessions.
	Len() int
}

// MemoryStore is the in-memory Store implementation. The mutex guards the
// registry map only; each log is touched by at most one in-flight request
// at a time, so the logs themselves carry no locks.
type MemoryStore struct {
	mu   sync.Mutex
	logs map[string]*chat.Log
}

// NewMemoryStore creates an empty session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs: make(map[string]*chat.Log),
	}
}

// Log implements Store.
func (s *MemoryStore) Log(id string) *chat.Log {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[id]
	if !ok {
		log = chat.NewLog()
		s.logs[id] = log
	}
	return log
}

// Clear implements Store.
func (s *MemoryStore) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if log, ok := s.logs[id]; ok {
		log.Clear()
	}
}

// Remove implements Store.
func (s *MemoryStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.logs, id)
}

// Len implements Store.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.logs)
}
