package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"ai-permit-planner-be/pkg/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEventFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteEvent(EventMeta, map[string]string{"session_id": "s1"}))
	assert.Equal(t, "event: meta\ndata: {\"session_id\":\"s1\"}\n\n", buf.String())
}

func TestWriteItemFlushesBufferedWriter(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	w := NewWriter(bw)

	item := pipeline.StreamItem{Kind: pipeline.KindTyping, Typing: &pipeline.Typing{StageID: "zoning_researcher", DisplayName: "Zoning Researcher", IsTyping: true}}
	require.NoError(t, w.WriteItem(item))

	assert.True(t, strings.HasPrefix(buf.String(), "event: typing\n"))
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "event", EventName(pipeline.KindProgress))
	assert.Equal(t, "typing", EventName(pipeline.KindTyping))
	assert.Equal(t, "debate", EventName(pipeline.KindDebate))
	assert.Equal(t, "complete", EventName(pipeline.KindComplete))
}

func TestReadFramesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteEvent(EventMeta, Meta{SessionID: "s1"}))
	require.NoError(t, w.WriteEvent(EventComplete, map[string]any{"result": map[string]any{"a": 1}}))
	buf.WriteString(": keep-alive\n\n")

	frames, err := ReadFrames(&buf)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, EventMeta, frames[0].Event)
	assert.Equal(t, EventComplete, frames[1].Event)

	var payload struct {
		Result map[string]int `json:"result"`
	}
	require.NoError(t, json.Unmarshal(frames[1].Data, &payload))
	assert.Equal(t, 1, payload.Result["a"])
}

func TestReadFramesJoinsDataLines(t *testing.T) {
	frames, err := ReadFrames(strings.NewReader("event: debate\ndata: {\"a\":\ndata: 1}\n\n"))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"a":1}`, string(frames[0].Data))
}
