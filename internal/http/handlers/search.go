package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gabriel/raw-source-finder/internal/cache"
	"github.com/gabriel/raw-source-finder/internal/lookup"
	"github.com/gabriel/raw-source-finder/internal/models"
)

type pipeline interface {
	Lookup(ctx context.Context, req lookup.Request) (models.PipelineResponse, error)
}

type responseCache interface {
	Get(ctx context.Context, key string, now time.Time) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte, expiresAt time.Time) error
}

type SearchHandler struct {
	pipeline pipeline
	cache    responseCache
	ttl      time.Duration
	logger   *slog.Logger
}

// NewSearchHandler builds the search endpoint. A nil cache disables response
// caching.
func NewSearchHandler(pipeline pipeline, cache responseCache, ttl time.Duration, logger *slog.Logger) *SearchHandler {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{pipeline: pipeline, cache: cache, ttl: ttl, logger: logger}
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	query := cache.NormalizeQuery(strings.Clone(c.Query("q")))
	debug := c.Query("debug") == "1"
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing q"})
	}

	ctx := c.UserContext()
	key := cache.KeyFor(c.Path(), query, debug)
	if h.cacheable(debug) {
		payload, ok, err := h.cache.Get(ctx, key, time.Now())
		if err != nil {
			h.logger.Warn("response cache read failed", "key", key, "error", err)
		}
		if ok {
			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.Send(payload)
		}
	}

	response, err := h.pipeline.Lookup(ctx, lookup.Request{Query: query, Debug: debug})
	if err != nil {
		switch {
		case errors.Is(err, lookup.ErrMissingQuery):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing q"})
		case errors.Is(err, lookup.ErrEnglishInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "English input rejected",
				"message": lookup.EnglishInputHint,
			})
		default:
			return err
		}
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return err
	}

	h.logger.Info("search served",
		"requestId", c.Locals("requestid"),
		"query", query,
		"matches", len(response.Matches),
		"debug", debug,
	)

	if h.cacheable(debug) {
		c.Set("X-Cache", "MISS")
		if response.Degraded {
			h.logger.Warn("degraded response not cached", "requestId", c.Locals("requestid"), "key", key)
		} else if err := h.cache.Put(ctx, key, payload, time.Now().Add(h.ttl)); err != nil {
			h.logger.Warn("response cache write failed", "key", key, "error", err)
		}
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(payload)
}

func (h *SearchHandler) cacheable(debug bool) bool {
	return h.cache != nil && !debug
}
