package pipeline

import (
	"time"

	"ai-permit-planner-be/pkg/debate"
)

type ItemKind string

const (
	KindProgress ItemKind = "progress"
	KindTyping   ItemKind = "typing"
	KindDebate   ItemKind = "debate"
	KindComplete ItemKind = "complete"
)

type Progress struct {
	StageID           string             `json:"stage_id"`
	Timestamp         time.Time          `json:"timestamp"`
	Text              string             `json:"text,omitempty"`
	Partial           bool               `json:"partial"`
	FunctionCalls     []FunctionCall     `json:"function_calls,omitempty"`
	FunctionResponses []FunctionResponse `json:"function_responses,omitempty"`
}

type Typing struct {
	StageID     string `json:"stage_id"`
	DisplayName string `json:"display_name"`
	IsTyping    bool   `json:"is_typing"`
}

type Complete struct {
	Timestamp   time.Time      `json:"timestamp"`
	Result      map[string]any `json:"result"`
	SessionID   string         `json:"session_id"`
	RequesterID string         `json:"requester_id,omitempty"`

	// Pipeline and Resolution describe how the result was produced. They
	// are not part of the streamed payload.
	Pipeline   string     `json:"-"`
	Resolution Resolution `json:"-"`
}

// FallbackUsed reports whether the result came from the fallback report.
func (c Complete) FallbackUsed() bool {
	return c.Resolution != ResolutionOK
}

// StreamItem is one element of a run's output. Exactly one payload field,
// matching Kind, is set.
type StreamItem struct {
	Kind     ItemKind
	Progress *Progress
	Typing   *Typing
	Debate   *debate.Message
	Complete *Complete
}

// Payload returns the populated payload for encoding.
func (i StreamItem) Payload() any {
	switch i.Kind {
	case KindProgress:
		return i.Progress
	case KindTyping:
		return i.Typing
	case KindDebate:
		return i.Debate
	case KindComplete:
		return i.Complete
	}
	return nil
}

func progressItem(n Notification) StreamItem {
	return StreamItem{Kind: KindProgress, Progress: &Progress{
		StageID:           n.StageID,
		Timestamp:         n.Timestamp,
		Text:              n.Text,
		Partial:           n.Partial,
		FunctionCalls:     n.FunctionCalls,
		FunctionResponses: n.FunctionResponses,
	}}
}

func typingItem(t Typing) StreamItem {
	return StreamItem{Kind: KindTyping, Typing: &t}
}

func debateItem(m *debate.Message) StreamItem {
	return StreamItem{Kind: KindDebate, Debate: m}
}

func completeItem(c Complete) StreamItem {
	return StreamItem{Kind: KindComplete, Complete: &c}
}
