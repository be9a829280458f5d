package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-permit-planner-be/internal/pkg/logger"
	"ai-permit-planner-be/pkg/events"
	"ai-permit-planner-be/pkg/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logLine struct {
	level   string
	message string
	details map[string]interface{}
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *recordingLogger) add(level, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{level, message, details})
}

func (l *recordingLogger) Debug(_, m string, d map[string]interface{}) { l.add("debug", m, d) }
func (l *recordingLogger) Info(_, m string, d map[string]interface{})  { l.add("info", m, d) }
func (l *recordingLogger) Warn(_, m string, d map[string]interface{})  { l.add("warn", m, d) }
func (l *recordingLogger) Error(_, m string, d map[string]interface{}) { l.add("error", m, d) }
func (l *recordingLogger) Sync() error                                 { return nil }

type captureEvents struct {
	events []events.Event
	err    error
}

func (c *captureEvents) Publish(ctx context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestRunObserver(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		summary   pipeline.RunSummary
		wantLevel string
		wantEvent string
	}{
		{
			name:      "completed",
			summary:   pipeline.RunSummary{SessionID: "s", Completed: true, Resolution: pipeline.ResolutionOK},
			wantLevel: "info",
			wantEvent: events.RunCompleted,
		},
		{
			name:      "fallback",
			summary:   pipeline.RunSummary{SessionID: "s", Completed: true, Resolution: pipeline.ResolutionExecutorFailed, Err: errors.New("boom")},
			wantLevel: "info",
			wantEvent: events.RunFallback,
		},
		{
			name:      "incomplete",
			summary:   pipeline.RunSummary{SessionID: "s", Resolution: pipeline.ResolutionIncomplete},
			wantLevel: "error",
			wantEvent: events.RunIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit := &recordingLogger{}
			bus := &captureEvents{}
			tt.summary.StartedAt = started
			tt.summary.Duration = 2 * time.Second

			NewRunObserver(audit, logger.NewNopLogger(), bus).RunFinished(context.Background(), tt.summary)

			require.Len(t, audit.lines, 1)
			assert.Equal(t, tt.wantLevel, audit.lines[0].level)
			assert.Equal(t, "s", audit.lines[0].details["session_id"])

			require.Len(t, bus.events, 1)
			assert.Equal(t, tt.wantEvent, bus.events[0].EventType())
			assert.Equal(t, started.Add(2*time.Second), bus.events[0].Timestamp())
		})
	}
}

func TestRunObserverPublishFailureIsLogged(t *testing.T) {
	audit := &recordingLogger{}
	appLog := &recordingLogger{}
	bus := &captureEvents{err: errors.New("nats down")}

	NewRunObserver(audit, appLog, bus).RunFinished(context.Background(), pipeline.RunSummary{SessionID: "s", Completed: true})

	require.Len(t, appLog.lines, 1)
	assert.Equal(t, "warn", appLog.lines[0].level)
}

func TestRunObserverWithoutPublisher(t *testing.T) {
	audit := &recordingLogger{}
	obs := NewRunObserver(audit, logger.NewNopLogger(), nil)

	assert.NotPanics(t, func() {
		obs.RunFinished(context.Background(), pipeline.RunSummary{SessionID: "s", Completed: true})
	})
	assert.Len(t, audit.lines, 1)
}
