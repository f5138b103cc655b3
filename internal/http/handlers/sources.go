package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gabriel/raw-source-finder/internal/sources"
)

type SourcesHandler struct {
	registry *sources.Registry
}

func NewSourcesHandler(registry *sources.Registry) *SourcesHandler {
	return &SourcesHandler{registry: registry}
}

func (h *SourcesHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.registry.Descriptors()})
}

// Detect reports which known source a pasted page URL belongs to.
func (h *SourcesHandler) Detect(c *fiber.Ctx) error {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing url"})
	}

	detection, ok := h.registry.Detect(rawURL)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No known source matches this URL"})
	}
	return c.JSON(detection)
}
