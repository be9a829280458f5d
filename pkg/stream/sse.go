// Package stream frames pipeline output as Server-Sent Events.
package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"ai-permit-planner-be/pkg/pipeline"
)

// Event names on the wire.
const (
	EventMeta     = "meta"
	EventProgress = "event"
	EventTyping   = "typing"
	EventDebate   = "debate"
	EventComplete = "complete"
	EventError    = "error"
)

// Meta opens every stream.
type Meta struct {
	StartedAt time.Time `json:"started_at"`
	SessionID string    `json:"session_id"`
}

// ErrorPayload reports a transport failure. Pipeline failures never use it.
type ErrorPayload struct {
	Message string `json:"message"`
}

// EventName maps a stream item kind to its wire event name.
func EventName(kind pipeline.ItemKind) string {
	switch kind {
	case pipeline.KindProgress:
		return EventProgress
	case pipeline.KindTyping:
		return EventTyping
	case pipeline.KindDebate:
		return EventDebate
	case pipeline.KindComplete:
		return EventComplete
	}
	return string(kind)
}

type flusher interface {
	Flush() error
}

// Writer writes SSE frames and flushes after each one when the underlying
// writer supports it (bufio.Writer does).
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEvent writes "event: <name>\ndata: <json>\n\n".
func (sw *Writer) WriteEvent(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sse: marshal %s: %w", name, err)
	}
	if _, err := fmt.Fprintf(sw.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return fmt.Errorf("sse: write %s: %w", name, err)
	}
	if f, ok := sw.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("sse: flush: %w", err)
		}
	}
	return nil
}

// WriteItem writes a pipeline stream item under its wire name.
func (sw *Writer) WriteItem(item pipeline.StreamItem) error {
	return sw.WriteEvent(EventName(item.Kind), item.Payload())
}

// Frame is one decoded SSE frame.
type Frame struct {
	Event string
	Data  json.RawMessage
}

// ReadFrames decodes every frame in r. Comment lines and unknown fields are
// skipped; multiple data lines are joined with newlines.
func ReadFrames(r io.Reader) ([]Frame, error) {
	var (
		frames []Frame
		event  string
		data   strings.Builder
	)
	flush := func() {
		if data.Len() > 0 || event != "" {
			frames = append(frames, Frame{Event: event, Data: json.RawMessage(data.String())})
		}
		event = ""
		data.Reset()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return frames, fmt.Errorf("sse: read: %w", err)
	}
	flush()
	return frames, nil
}
