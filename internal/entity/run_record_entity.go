package entity

import (
	"time"

	"ai-permit-planner-be/pkg/debate"

	"github.com/google/uuid"
)

// RunRecord is a finished run as kept for later lookup.
type RunRecord struct {
	Id           uuid.UUID
	SessionId    string
	RequesterId  string
	Request      string
	Pipeline     string
	Result       map[string]any
	Debate       []debate.Message
	FallbackUsed bool
	CompletedAt  time.Time
	CreatedAt    time.Time
}
