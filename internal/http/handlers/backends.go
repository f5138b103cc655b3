package handlers

import "github.com/gofiber/fiber/v2"

type backendLister interface {
	Names() []string
	Strategy() string
}

type BackendsHandler struct {
	backends backendLister
}

func NewBackendsHandler(backends backendLister) *BackendsHandler {
	return &BackendsHandler{backends: backends}
}

func (h *BackendsHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"strategy": h.backends.Strategy(),
		"items":    h.backends.Names(),
	})
}
