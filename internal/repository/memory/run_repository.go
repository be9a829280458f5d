package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ai-permit-planner-be/internal/entity"
	"ai-permit-planner-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type RunRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewRunRepository(ttl time.Duration) contract.RunRepository {
	return &RunRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *RunRepository) Save(ctx context.Context, run *entity.RunRecord) error {
	if run.Id == uuid.Nil {
		run.Id = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if x, found := r.cache.Get(run.SessionId); found && x.(*entity.RunRecord).RequesterId != run.RequesterId {
		return contract.ErrSessionTaken
	}
	stored := *run
	r.cache.Set(run.SessionId, &stored, cache.DefaultExpiration)
	return nil
}

func (r *RunRepository) FindBySessionId(ctx context.Context, sessionId string) (*entity.RunRecord, error) {
	if x, found := r.cache.Get(sessionId); found {
		run := *x.(*entity.RunRecord)
		return &run, nil
	}
	return nil, nil
}

func (r *RunRepository) FindAllByRequester(ctx context.Context, requesterId string, limit int) ([]*entity.RunRecord, error) {
	var runs []*entity.RunRecord
	for _, item := range r.cache.Items() {
		run := *item.Object.(*entity.RunRecord)
		if run.RequesterId == requesterId {
			runs = append(runs, &run)
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CompletedAt.After(runs[j].CompletedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
