package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	cache pinger
}

// NewHealthHandler reports on the response cache. A nil cache is reported as
// disabled.
func NewHealthHandler(cache pinger) *HealthHandler {
	return &HealthHandler{cache: cache}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if h.cache == nil {
		return c.JSON(fiber.Map{"status": "ok", "cache": "disabled", "time": now})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.cache.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"cache":  "down",
			"time":   now,
		})
	}

	return c.JSON(fiber.Map{"status": "ok", "cache": "up", "time": now})
}
