package controller

import (
	"bufio"
	"context"
	"errors"
	"time"

	"ai-permit-planner-be/internal/dto"
	"ai-permit-planner-be/internal/pkg/logger"
	"ai-permit-planner-be/internal/pkg/serverutils"
	"ai-permit-planner-be/internal/service"
	internalWS "ai-permit-planner-be/internal/websocket"
	"ai-permit-planner-be/pkg/pipeline"
	"ai-permit-planner-be/pkg/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const controllerModule = "PIPELINE_CONTROLLER"

type IPipelineController interface {
	RegisterRoutes(r fiber.Router)
	Run(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
	GetRun(ctx *fiber.Ctx) error
	ListRuns(ctx *fiber.Ctx) error
}

type pipelineController struct {
	service service.IPipelineService
	logger  logger.ILogger
}

func NewPipelineController(service service.IPipelineService, log logger.ILogger) IPipelineController {
	return &pipelineController{service: service, logger: log}
}

func (c *pipelineController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pipeline/v1")
	h.Post("/run", serverutils.OptionalJwtMiddleware, c.Run)
	h.Post("/stream", serverutils.OptionalJwtMiddleware, c.Stream)
	h.Get("/ws", serverutils.OptionalJwtMiddleware, c.ServeWs)
	h.Get("/runs", serverutils.JwtMiddleware, c.ListRuns)
	h.Get("/runs/:sessionId", serverutils.JwtMiddleware, c.GetRun)
}

// parseRunRequest binds and validates the body. The requester is the token's
// user; anonymous runs have none.
func parseRunRequest(ctx *fiber.Ctx) (*dto.RunPipelineRequest, error) {
	var req dto.RunPipelineRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	req.RequesterId = serverutils.UserID(ctx)
	return &req, nil
}

// runError answers the errors a run can be refused or end with.
func runError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrEmptyRequest):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Request text is empty"))
	case errors.Is(err, service.ErrSessionTaken):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(fiber.StatusConflict, "Session id is already in use"))
	case errors.Is(err, pipeline.ErrNoCompletion):
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(fiber.StatusBadGateway, "Pipeline ended without a result"))
	}
	return err
}

func (c *pipelineController) Run(ctx *fiber.Ctx) error {
	req, err := parseRunRequest(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Run(ctx.UserContext(), req)
	if err != nil {
		return runError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success run pipeline", res))
}

// Stream answers with Server-Sent Events: a meta frame, then every run item.
// A client that disconnects abandons the run.
func (c *pipelineController) Stream(ctx *fiber.Ctx) error {
	req, err := parseRunRequest(ctx)
	if err != nil {
		return err
	}
	if err := c.service.Admit(ctx.UserContext(), req); err != nil {
		return runError(ctx, err)
	}
	if req.SessionId == "" {
		req.SessionId = uuid.NewString()
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The fiber context is recycled once the handler returns.
	parent := context.WithoutCancel(ctx.UserContext())

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		runCtx, cancel := context.WithCancel(parent)
		defer cancel()

		sw := stream.NewWriter(w)
		if err := sw.WriteEvent(stream.EventMeta, stream.Meta{StartedAt: time.Now(), SessionID: req.SessionId}); err != nil {
			return
		}

		completed := false
		for item := range c.service.Stream(runCtx, req) {
			if err := sw.WriteItem(item); err != nil {
				c.logger.Warn(controllerModule, "Stream write failed, abandoning run", map[string]interface{}{
					"session_id": req.SessionId,
					"error":      err.Error(),
				})
				sw.WriteEvent(stream.EventError, stream.ErrorPayload{Message: "stream interrupted"})
				return
			}
			completed = completed || item.Kind == pipeline.KindComplete
		}

		if !completed {
			c.logger.Error(controllerModule, "Stream ended without a complete item", map[string]interface{}{
				"session_id": req.SessionId,
			})
		}
	})
	return nil
}

func (c *pipelineController) ServeWs(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	requesterID := serverutils.UserID(ctx)
	return websocket.New(func(conn *websocket.Conn) {
		internalWS.ServeWs(conn, requesterID, c.service, c.logger)
	})(ctx)
}

func (c *pipelineController) GetRun(ctx *fiber.Ctx) error {
	res, err := c.service.GetRun(ctx.UserContext(), ctx.Params("sessionId"), serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "Run not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get run", res))
}

func (c *pipelineController) ListRuns(ctx *fiber.Ctx) error {
	var req dto.ListRunsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ListRuns(ctx.UserContext(), serverutils.UserID(ctx), req.Limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get runs", res))
}
