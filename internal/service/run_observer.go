package service

import (
	"context"

	"ai-permit-planner-be/internal/pkg/logger"
	"ai-permit-planner-be/pkg/events"
	"ai-permit-planner-be/pkg/pipeline"
)

// EventPublisher is the part of the NATS publisher the observer uses.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// RunObserver writes one audit line per finished run and announces the
// outcome on the event bus.
type RunObserver struct {
	audit     logger.ILogger
	logger    logger.ILogger
	publisher EventPublisher
}

// NewRunObserver accepts a nil publisher; events are then skipped.
func NewRunObserver(audit, log logger.ILogger, publisher EventPublisher) *RunObserver {
	return &RunObserver{
		audit:     audit,
		logger:    log,
		publisher: publisher,
	}
}

func (o *RunObserver) RunFinished(ctx context.Context, s pipeline.RunSummary) {
	fallbackUsed := s.Completed && s.Resolution != pipeline.ResolutionOK

	details := map[string]interface{}{
		"session_id":    s.SessionID,
		"requester_id":  s.RequesterID,
		"pipeline":      s.Pipeline,
		"resolution":    string(s.Resolution),
		"completed":     s.Completed,
		"fallback_used": fallbackUsed,
		"progress":      s.Progress,
		"debates":       s.Debates,
		"duration_ms":   s.Duration.Milliseconds(),
	}
	errMsg := ""
	if s.Err != nil {
		errMsg = s.Err.Error()
		details["error"] = errMsg
	}

	if s.Completed {
		o.audit.Info("RUN", "Run finished", details)
	} else {
		o.audit.Error("RUN", "Run ended without a result", details)
	}

	if o.publisher == nil {
		return
	}

	event := events.NewRunEvent(events.RunOutcome{
		SessionID:   s.SessionID,
		RequesterID: s.RequesterID,
		Pipeline:    s.Pipeline,
		Resolution:  string(s.Resolution),
		Error:       errMsg,
		Progress:    s.Progress,
		Debates:     s.Debates,
		Duration:    s.Duration,
		FinishedAt:  s.StartedAt.Add(s.Duration),
	}, s.Completed, fallbackUsed)

	// The run's own context may already be cancelled by the time a
	// streaming client disconnects; the event still goes out.
	if err := o.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		o.logger.Warn("RUN", "Failed to publish run event", map[string]interface{}{
			"session_id": s.SessionID,
			"error":      err.Error(),
		})
	}
}
