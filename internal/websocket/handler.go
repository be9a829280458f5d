package websocket

import (
	"context"

	"ai-permit-planner-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

// ServeWs serves run requests on c until the peer goes away. Closing the
// connection abandons any run still in progress.
func ServeWs(c *websocket.Conn, requesterID string, runs RunStreamer, log logger.ILogger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &Client{
		Conn:        c,
		RequesterID: requesterID,
		Runs:        runs,
		Logger:      log,
		Send:        make(chan []byte, 256),
	}

	go func() {
		client.writePump(ctx)
		cancel()
	}()
	client.readPump(ctx)
}
