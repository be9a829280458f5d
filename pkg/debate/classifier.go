// Package debate turns raw stage output into classified debate messages.
//
// Everything except Classifier.Classify is a pure function of its inputs so
// each step can be tested with literal fixtures.
package debate

import (
	"fmt"
	"strings"
	"time"

	"ai-permit-planner-be/pkg/stage"

	"github.com/google/uuid"
)

// Message is one voice in the debate transcript.
type Message struct {
	ID                    string      `json:"id"`
	Timestamp             time.Time   `json:"timestamp"`
	FromStage             string      `json:"from_stage"`
	FromDisplayName       string      `json:"from_display_name"`
	FromGroup             stage.Group `json:"from_group"`
	Type                  MessageType `json:"type"`
	ReferencesStage       string      `json:"references_stage,omitempty"`
	ReferencesDisplayName string      `json:"references_display_name,omitempty"`
	Content               string      `json:"content"`
	Confidence            *float64    `json:"confidence,omitempty"`
}

// Analysis is the deterministic part of a classification.
type Analysis struct {
	Type       MessageType
	Reference  *Reference
	Confidence *float64
	Content    string
}

// Classifier builds debate messages for stages in a catalog.
type Classifier struct {
	catalog *stage.Catalog
	now     func() time.Time
}

type Option func(*Classifier)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		c.now = now
	}
}

func NewClassifier(catalog *stage.Catalog, opts ...Option) *Classifier {
	c := &Classifier{
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze runs the classification steps for text produced by stageID.
// prior lists the stage ids that already spoke in this run, oldest first.
// It returns false when the stage is unknown or the text is too short.
func (c *Classifier) Analyze(stageID, text string, prior []string) (Analysis, bool) {
	s, ok := c.catalog.Lookup(stageID)
	if !ok || !Substantive(text) {
		return Analysis{}, false
	}

	speakers := make([]stage.Stage, 0, len(prior))
	for _, id := range prior {
		if ps, ok := c.catalog.Lookup(id); ok {
			speakers = append(speakers, ps)
		}
	}

	t := DetectType(text, s.Group)
	return Analysis{
		Type:       t,
		Reference:  DetectReference(text, stageID, speakers),
		Confidence: ExtractConfidence(text),
		Content:    Conversational(s, text, t),
	}, true
}

// Classify analyzes text and wraps the result in a new Message.
func (c *Classifier) Classify(stageID, text string, prior []string) (*Message, bool) {
	a, ok := c.Analyze(stageID, text, prior)
	if !ok {
		return nil, false
	}
	s, _ := c.catalog.Lookup(stageID)
	ts := c.now()

	msg := &Message{
		ID:              NewMessageID(stageID, ts),
		Timestamp:       ts,
		FromStage:       s.ID,
		FromDisplayName: s.DisplayName,
		FromGroup:       s.Group,
		Type:            a.Type,
		Content:         a.Content,
		Confidence:      a.Confidence,
	}
	if a.Reference != nil {
		msg.ReferencesStage = a.Reference.StageID
		msg.ReferencesDisplayName = a.Reference.DisplayName
	}
	return msg, true
}

// NewMessageID combines the stage, the timestamp and a random suffix so ids
// stay unique across concurrent runs without a shared counter.
func NewMessageID(stageID string, ts time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", stageID, ts.UnixMilli(), suffix)
}
