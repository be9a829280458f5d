package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-permit-planner-be/internal/entity"
	"ai-permit-planner-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	runKeyPrefix       = "pipeline:run:"
	requesterKeyPrefix = "pipeline:runs:requester:"
)

// RedisRunRepositoryImpl keeps runs as JSON values that expire after ttl.
// Each requester has a sorted set of session ids scored by completion time.
type RedisRunRepositoryImpl struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRunRepository(rdb *redis.Client, ttl time.Duration) contract.RunRepository {
	return &RedisRunRepositoryImpl{rdb: rdb, ttl: ttl}
}

func (r *RedisRunRepositoryImpl) Save(ctx context.Context, run *entity.RunRecord) error {
	if run.Id == uuid.Nil {
		run.Id = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	key := runKeyPrefix + run.SessionId
	return r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		prev, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var existing entity.RunRecord
			if err := json.Unmarshal(prev, &existing); err == nil && existing.RequesterId != run.RequesterId {
				return contract.ErrSessionTaken
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			if run.RequesterId != "" {
				idx := requesterKeyPrefix + run.RequesterId
				pipe.ZAdd(ctx, idx, redis.Z{Score: float64(run.CompletedAt.UnixMilli()), Member: run.SessionId})
				pipe.Expire(ctx, idx, r.ttl)
			}
			return nil
		})
		return err
	}, key)
}

func (r *RedisRunRepositoryImpl) FindBySessionId(ctx context.Context, sessionId string) (*entity.RunRecord, error) {
	data, err := r.rdb.Get(ctx, runKeyPrefix+sessionId).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var run entity.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", sessionId, err)
	}
	return &run, nil
}

// FindAllByRequester skips ids whose run value already expired.
func (r *RedisRunRepositoryImpl) FindAllByRequester(ctx context.Context, requesterId string, limit int) ([]*entity.RunRecord, error) {
	ids, err := r.rdb.ZRevRange(ctx, requesterKeyPrefix+requesterId, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	runs := make([]*entity.RunRecord, 0, len(ids))
	for _, id := range ids {
		run, err := r.FindBySessionId(ctx, id)
		if err != nil {
			return nil, err
		}
		if run != nil {
			runs = append(runs, run)
		}
	}
	return runs, nil
}
