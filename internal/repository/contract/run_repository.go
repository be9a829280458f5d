package contract

import (
	"context"
	"errors"

	"ai-permit-planner-be/internal/entity"
)

// ErrSessionTaken is returned by Save when the session id already holds a run
// of another requester.
var ErrSessionTaken = errors.New("session id belongs to another requester")

// RunRepository stores finished runs. Find methods return nil, nil when
// nothing matches. Saving a run again under the same session id replaces it
// only for the same requester.
type RunRepository interface {
	Save(ctx context.Context, run *entity.RunRecord) error
	FindBySessionId(ctx context.Context, sessionId string) (*entity.RunRecord, error)
	FindAllByRequester(ctx context.Context, requesterId string, limit int) ([]*entity.RunRecord, error)
}
