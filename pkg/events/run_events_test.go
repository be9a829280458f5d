package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRunEvent(t *testing.T) {
	finished := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	outcome := RunOutcome{
		SessionID:  "s-1",
		Pipeline:   "full",
		Resolution: "ok",
		Progress:   12,
		Debates:    4,
		Duration:   1500 * time.Millisecond,
		FinishedAt: finished,
	}

	tests := []struct {
		name      string
		completed bool
		fallback  bool
		want      string
	}{
		{"clean completion", true, false, RunCompleted},
		{"fallback", true, true, RunFallback},
		{"incomplete", false, false, RunIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewRunEvent(outcome, tt.completed, tt.fallback)
			assert.Equal(t, tt.want, ev.EventType())
			assert.Equal(t, finished, ev.Timestamp())
			assert.Equal(t, "s-1", ev.Payload()["session_id"])
			assert.Equal(t, int64(1500), ev.Payload()["duration_ms"])
			assert.NotContains(t, ev.Payload(), "requester_id")
			assert.NotContains(t, ev.Payload(), "error")
		})
	}
}

func TestNewRunEventOptionalFields(t *testing.T) {
	ev := NewRunEvent(RunOutcome{RequesterID: "u-1", Error: "boom"}, true, true)
	assert.Equal(t, "u-1", ev.Payload()["requester_id"])
	assert.Equal(t, "boom", ev.Payload()["error"])
}
