package pipeline

import (
	"strings"
	"time"
)

// FunctionCall is a tool invocation requested by a stage.
type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse is the result of a tool invocation.
type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response,omitempty"`
}

// Part is one piece of event content. Any field may be nil.
type Part struct {
	Text             *string
	FunctionCall     *FunctionCall
	FunctionResponse *FunctionResponse
}

type Content struct {
	Role  string
	Parts []Part
}

// Event is the record an Executor yields. Its fields are loosely populated:
// content and partial may be absent, and parts carry any mix of payloads.
type Event struct {
	Author    string
	Content   *Content
	Partial   *bool
	Timestamp time.Time
}

// TextEvent builds a final text event for author.
func TextEvent(author, text string) Event {
	return Event{
		Author:    author,
		Content:   &Content{Role: "model", Parts: []Part{{Text: &text}}},
		Timestamp: time.Now(),
	}
}

// PartialEvent builds an incremental text event for author.
func PartialEvent(author, text string) Event {
	ev := TextEvent(author, text)
	partial := true
	ev.Partial = &partial
	return ev
}

// CallEvent builds an event carrying a single tool call.
func CallEvent(author string, call FunctionCall) Event {
	return Event{
		Author:    author,
		Content:   &Content{Role: "model", Parts: []Part{{FunctionCall: &call}}},
		Timestamp: time.Now(),
	}
}

// Notification is the core's view of an Event.
type Notification struct {
	StageID           string
	Text              string
	Partial           bool
	Final             bool
	Timestamp         time.Time
	FunctionCalls     []FunctionCall
	FunctionResponses []FunctionResponse
}

// notificationFrom flattens ev. A notification is final when it is not
// partial and carries no tool traffic, i.e. it is the stage's own answer.
func notificationFrom(ev Event, now time.Time) Notification {
	n := Notification{
		StageID:   ev.Author,
		Timestamp: ev.Timestamp,
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = now
	}
	if ev.Partial != nil {
		n.Partial = *ev.Partial
	}

	if ev.Content != nil {
		var texts []string
		for _, p := range ev.Content.Parts {
			if p.Text != nil && *p.Text != "" {
				texts = append(texts, *p.Text)
			}
			if p.FunctionCall != nil {
				n.FunctionCalls = append(n.FunctionCalls, *p.FunctionCall)
			}
			if p.FunctionResponse != nil {
				n.FunctionResponses = append(n.FunctionResponses, *p.FunctionResponse)
			}
		}
		n.Text = strings.Join(texts, "")
	}

	n.Final = !n.Partial && len(n.FunctionCalls) == 0 && len(n.FunctionResponses) == 0
	return n
}
