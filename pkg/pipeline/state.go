package pipeline

import (
	"maps"
	"sync"
)

// SessionState is the keyed output store shared by the stages of one run.
// Values are raw stage output; the last write for a key wins and nothing is
// deleted while the run is alive.
//
// A run owns its state exclusively. The lock only guards reads from the live
// session registry, which may happen on another goroutine.
type SessionState struct {
	id     string
	mu     sync.RWMutex
	values map[string]string
}

func NewSessionState(id string) *SessionState {
	return &SessionState{
		id:     id,
		values: make(map[string]string),
	}
}

func (s *SessionState) ID() string {
	return s.id
}

func (s *SessionState) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *SessionState) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Snapshot returns a copy of every stored output.
func (s *SessionState) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Len returns the number of stored outputs.
func (s *SessionState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
