package controller

import (
	"time"

	"ai-permit-planner-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// SessionCounter reports how many runs are in flight.
type SessionCounter interface {
	Count() int
}

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	sessions  SessionCounter
	pipeline  string
	startedAt time.Time
}

func NewHealthController(sessions SessionCounter, pipelineName string) IHealthController {
	return &healthController{
		sessions:  sessions,
		pipeline:  pipelineName,
		startedAt: time.Now(),
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{
		"pipeline":        c.pipeline,
		"active_sessions": c.sessions.Count(),
		"uptime_seconds":  int(time.Since(c.startedAt).Seconds()),
	}))
}
