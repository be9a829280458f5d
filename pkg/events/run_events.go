package events

import "time"

const (
	RunCompleted  = "run.completed"
	RunFallback   = "run.fallback"
	RunIncomplete = "run.incomplete"
)

// RunOutcome is the data shared by all run events.
type RunOutcome struct {
	SessionID   string
	RequesterID string
	Pipeline    string
	Resolution  string
	Error       string
	Progress    int
	Debates     int
	Duration    time.Duration
	FinishedAt  time.Time
}

// NewRunEvent picks the event type from the outcome: incomplete runs,
// runs answered by the fallback and clean completions are told apart.
func NewRunEvent(o RunOutcome, completed, fallbackUsed bool) Event {
	eventType := RunCompleted
	switch {
	case !completed:
		eventType = RunIncomplete
	case fallbackUsed:
		eventType = RunFallback
	}

	data := map[string]interface{}{
		"session_id":  o.SessionID,
		"pipeline":    o.Pipeline,
		"resolution":  o.Resolution,
		"progress":    o.Progress,
		"debates":     o.Debates,
		"duration_ms": o.Duration.Milliseconds(),
		"finished_at": o.FinishedAt.Format(time.RFC3339Nano),
	}
	if o.RequesterID != "" {
		data["requester_id"] = o.RequesterID
	}
	if o.Error != "" {
		data["error"] = o.Error
	}

	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: o.FinishedAt,
	}
}
