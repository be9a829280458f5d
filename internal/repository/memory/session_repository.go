package memory

import (
	"sync"
	"time"

	"ai-permit-planner-be/pkg/pipeline"

	"github.com/patrickmn/go-cache"
)

// SessionRepository tracks the state of runs in flight so it can be looked
// up by session id while the run is streaming.
type SessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Runs normally finish in minutes; the expiry only cleans up after
	// callers that never removed their session.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

// Register keeps the first live state for a session id; a second run with
// the same id is not visible until the first one is removed.
func (r *SessionRepository) Register(state *pipeline.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Add(state.ID(), state, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*pipeline.SessionState, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*pipeline.SessionState), true
	}
	return nil, false
}

// Remove drops the entry only while it still holds state.
func (r *SessionRepository) Remove(state *pipeline.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, found := r.cache.Get(state.ID()); found && x.(*pipeline.SessionState) == state {
		r.cache.Delete(state.ID())
	}
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
