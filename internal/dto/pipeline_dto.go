package dto

import (
	"strings"
	"time"

	"ai-permit-planner-be/pkg/debate"

	"github.com/google/uuid"
)

// RunPipelineRequest is the body of a run. RequesterId is never read from
// the body; transports fill it from the verified token.
type RunPipelineRequest struct {
	Text        string `json:"text" validate:"required,max=4000"`
	RequesterId string `json:"-"`
	SessionId   string `json:"session_id,omitempty" validate:"omitempty,max=64"`
	Persist     bool   `json:"persist,omitempty"`
}

// Normalize trims the text and session id so validation sees what the run
// will see.
func (r *RunPipelineRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	r.SessionId = strings.TrimSpace(r.SessionId)
}

type RunPipelineResponse struct {
	SessionId    string           `json:"session_id"`
	RequesterId  string           `json:"requester_id,omitempty"`
	Result       map[string]any   `json:"result"`
	Debate       []debate.Message `json:"debate"`
	FallbackUsed bool             `json:"fallback_used"`
	CompletedAt  time.Time        `json:"completed_at"`
}

// PersistRunMessage is published on the persist topic once a run completes.
type PersistRunMessage struct {
	SessionId    string           `json:"session_id"`
	RequesterId  string           `json:"requester_id,omitempty"`
	Request      string           `json:"request"`
	Pipeline     string           `json:"pipeline"`
	Result       map[string]any   `json:"result"`
	Debate       []debate.Message `json:"debate,omitempty"`
	FallbackUsed bool             `json:"fallback_used"`
	CompletedAt  time.Time        `json:"completed_at"`
}

type RunRecordResponse struct {
	Id           uuid.UUID        `json:"id"`
	SessionId    string           `json:"session_id"`
	RequesterId  string           `json:"requester_id,omitempty"`
	Request      string           `json:"request"`
	Pipeline     string           `json:"pipeline"`
	Result       map[string]any   `json:"result"`
	Debate       []debate.Message `json:"debate,omitempty"`
	FallbackUsed bool             `json:"fallback_used"`
	CompletedAt  time.Time        `json:"completed_at"`
	CreatedAt    time.Time        `json:"created_at"`
}

type ListRunsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}
