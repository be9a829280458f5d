package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"sync/atomic"
	"time"

	"ai-permit-planner-be/internal/dto"
	"ai-permit-planner-be/internal/pkg/logger"
	"ai-permit-planner-be/internal/pkg/serverutils"
	"ai-permit-planner-be/internal/repository/contract"
	"ai-permit-planner-be/pkg/pipeline"
	"ai-permit-planner-be/pkg/stream"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024

	logModule = "WEBSOCKET"
)

// RunStreamer admits a run request and then streams its items.
type RunStreamer interface {
	Admit(ctx context.Context, req *dto.RunPipelineRequest) error
	Stream(ctx context.Context, req *dto.RunPipelineRequest) iter.Seq[pipeline.StreamItem]
}

// Frame is one outbound websocket message. Event names match the SSE
// stream.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client serves one connection. Every inbound text message is a run request;
// a connection runs at most one pipeline at a time.
type Client struct {
	Conn        *websocket.Conn
	RequesterID string
	Runs        RunStreamer
	Logger      logger.ILogger

	// Send buffers outbound frames for writePump.
	Send chan []byte

	running atomic.Bool
}

func (c *Client) readPump(ctx context.Context) {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Logger.Warn(logModule, "Connection closed unexpectedly", map[string]interface{}{"error": err.Error()})
			}
			return
		}

		if !c.running.CompareAndSwap(false, true) {
			c.sendError(ctx, "a run is already in progress on this connection")
			continue
		}
		req, err := c.admit(ctx, data)
		if err != nil {
			c.running.Store(false)
			c.sendError(ctx, err.Error())
			continue
		}
		go c.run(ctx, req)
	}
}

// admit decodes one inbound request. A refused request gets an error frame
// and never a meta frame.
func (c *Client) admit(ctx context.Context, data []byte) (*dto.RunPipelineRequest, error) {
	var req dto.RunPipelineRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New("request must be a JSON object")
	}
	req.Normalize()
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	req.RequesterId = c.RequesterID

	if err := c.Runs.Admit(ctx, &req); err != nil {
		switch {
		case errors.Is(err, pipeline.ErrEmptyRequest):
			return nil, errors.New("request text is empty")
		case errors.Is(err, contract.ErrSessionTaken):
			return nil, errors.New("session id is already in use")
		}
		c.Logger.Error(logModule, "Failed to admit run", map[string]interface{}{"error": err.Error()})
		return nil, errors.New("run could not be started")
	}
	if req.SessionId == "" {
		req.SessionId = uuid.NewString()
	}
	return &req, nil
}

func (c *Client) run(ctx context.Context, req *dto.RunPipelineRequest) {
	defer c.running.Store(false)

	if !c.send(ctx, stream.EventMeta, stream.Meta{StartedAt: time.Now(), SessionID: req.SessionId}) {
		return
	}
	completed := false
	for item := range c.Runs.Stream(ctx, req) {
		if !c.send(ctx, stream.EventName(item.Kind), item.Payload()) {
			return
		}
		completed = completed || item.Kind == pipeline.KindComplete
	}
	if !completed {
		c.Logger.Error(logModule, "Run ended without a complete item", map[string]interface{}{
			"session_id": req.SessionId,
		})
	}
}

func (c *Client) sendError(ctx context.Context, message string) {
	c.send(ctx, stream.EventError, stream.ErrorPayload{Message: message})
}

// send queues a frame. It reports false once the connection is gone.
func (c *Client) send(ctx context.Context, event string, payload any) bool {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		c.Logger.Error(logModule, "Failed to encode frame", map[string]interface{}{
			"event": event,
			"error": err.Error(),
		})
		return false
	}
	select {
	case c.Send <- data:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
