package memory

import (
	"context"
	"testing"
	"time"

	"ai-permit-planner-be/internal/entity"
	"ai-permit-planner-be/internal/repository/contract"
	"ai-permit-planner-be/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRepositorySaveAndFind(t *testing.T) {
	repo := NewRunRepository(time.Hour)
	ctx := context.Background()

	run := &entity.RunRecord{
		SessionId:   "s-1",
		RequesterId: "u-1",
		Request:     "open a bakery",
		Result:      map[string]any{"summary": "ok"},
		CompletedAt: time.Now(),
	}
	require.NoError(t, repo.Save(ctx, run))
	assert.NotEqual(t, uuid.Nil, run.Id)

	found, err := repo.FindBySessionId(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, run.Id, found.Id)
	assert.Equal(t, "ok", found.Result["summary"])

	missing, err := repo.FindBySessionId(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRunRepositorySaveKeepsOwner(t *testing.T) {
	repo := NewRunRepository(time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &entity.RunRecord{SessionId: "s-1", RequesterId: "u-1", Request: "first"}))

	tests := []struct {
		name      string
		requester string
		wantErr   error
	}{
		{"other requester", "u-2", contract.ErrSessionTaken},
		{"anonymous", "", contract.ErrSessionTaken},
		{"same requester", "u-1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Save(ctx, &entity.RunRecord{SessionId: "s-1", RequesterId: tt.requester, Request: tt.name})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	found, err := repo.FindBySessionId(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.RequesterId)
	assert.Equal(t, "same requester", found.Request)

	others, err := repo.FindAllByRequester(ctx, "u-2", 10)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestRunRepositoryFindAllByRequester(t *testing.T) {
	repo := NewRunRepository(time.Hour)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Save(ctx, &entity.RunRecord{
			SessionId:   id,
			RequesterId: "u-1",
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Save(ctx, &entity.RunRecord{SessionId: "other", RequesterId: "u-2", CompletedAt: base}))

	runs, err := repo.FindAllByRequester(ctx, "u-1", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].SessionId)
	assert.Equal(t, "b", runs[1].SessionId)
}

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository()
	state := pipeline.NewSessionState("abc")
	state.Set("intake", "{}")

	repo.Register(state)
	assert.Equal(t, 1, repo.Count())

	got, ok := repo.Get("abc")
	require.True(t, ok)
	v, _ := got.Get("intake")
	assert.Equal(t, "{}", v)

	repo.Remove(state)
	_, ok = repo.Get("abc")
	assert.False(t, ok)
}

func TestSessionRepositorySharedIDKeepsFirst(t *testing.T) {
	repo := NewSessionRepository()
	first := pipeline.NewSessionState("dup")
	second := pipeline.NewSessionState("dup")

	repo.Register(first)
	repo.Register(second)
	got, ok := repo.Get("dup")
	require.True(t, ok)
	assert.Same(t, first, got)

	repo.Remove(second)
	got, ok = repo.Get("dup")
	require.True(t, ok)
	assert.Same(t, first, got)

	repo.Remove(first)
	assert.Equal(t, 0, repo.Count())
}
