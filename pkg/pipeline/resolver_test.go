package pipeline

import (
	"testing"

	"ai-permit-planner-be/pkg/fallback"

	"github.com/stretchr/testify/assert"
)

func TestResolveResult(t *testing.T) {
	const key = "final_report"
	want := fallback.Build(request)

	tests := []struct {
		name       string
		stored     *string
		execErr    error
		wantResult map[string]any
		wantReason Resolution
	}{
		{"executor failed", strPtr(`{"a":1}`), errBackend, want, ResolutionExecutorFailed},
		{"missing", nil, nil, want, ResolutionMissing},
		{"not json", strPtr("not json"), nil, want, ResolutionMalformed},
		{"array", strPtr(`[1,2]`), nil, want, ResolutionMalformed},
		{"empty object", strPtr(`{}`), nil, want, ResolutionEmpty},
		{"plain object", strPtr(`{"a":1}`), nil, map[string]any{"a": float64(1)}, ResolutionOK},
		{"fenced object", strPtr("```json\n{\"a\":1}\n```"), nil, map[string]any{"a": float64(1)}, ResolutionOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewSessionState("s")
			if tt.stored != nil {
				state.Set(key, *tt.stored)
			}
			got, reason := ResolveResult(request, state, key, tt.execErr)
			assert.Equal(t, tt.wantResult, got)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestSessionStateLastWriteWins(t *testing.T) {
	state := NewSessionState("s")
	state.Set("k", "one")
	state.Set("k", "two")
	state.Set("other", "x")

	v, ok := state.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "two", v)
	assert.Equal(t, 2, state.Len())

	snap := state.Snapshot()
	snap["k"] = "mutated"
	v, _ = state.Get("k")
	assert.Equal(t, "two", v)
}

func strPtr(s string) *string {
	return &s
}
