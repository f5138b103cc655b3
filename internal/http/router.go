package http

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/gabriel/raw-source-finder/internal/cache"
	"github.com/gabriel/raw-source-finder/internal/config"
	"github.com/gabriel/raw-source-finder/internal/http/handlers"
	"github.com/gabriel/raw-source-finder/internal/lookup"
	"github.com/gabriel/raw-source-finder/internal/searchengine"
	"github.com/gabriel/raw-source-finder/internal/sources"
)

const (
	allowedMethods = "GET,OPTIONS"
	allowedHeaders = "Content-Type"
)

type Dependencies struct {
	Registry *sources.Registry
	Lookup   *lookup.Service
	Rotator  *searchengine.Rotator
	// Cache is nil when response caching is disabled.
	Cache  *cache.Store
	Logger *slog.Logger
}

func NewServer(cfg config.Config, deps Dependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: jsonErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: allowedMethods,
		AllowHeaders: allowedHeaders,
	}))
	app.Use(corsOnEveryResponse)

	cacheTTL := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	search := handlers.NewSearchHandler(deps.Lookup, nil, cacheTTL, logger)
	health := handlers.NewHealthHandler(nil)
	if deps.Cache != nil {
		// Only a non-nil store may reach the handlers' interfaces.
		search = handlers.NewSearchHandler(deps.Lookup, deps.Cache, cacheTTL, logger)
		health = handlers.NewHealthHandler(deps.Cache)
	}
	sourceHandlers := handlers.NewSourcesHandler(deps.Registry)
	backendHandlers := handlers.NewBackendsHandler(deps.Rotator)

	app.Get("/search", search.Search)
	app.Get("/health", health.Check)

	v1 := app.Group("/v1")
	v1.Get("/sources", sourceHandlers.List)
	v1.Get("/sources/detect", sourceHandlers.Detect)
	v1.Get("/backends", backendHandlers.List)
	v1.Get("/health", health.Check)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("Not found")
	})

	return app
}

// corsOnEveryResponse sets the CORS headers even for requests without an
// Origin header, and answers any OPTIONS request with 204.
func corsOnEveryResponse(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, allowedMethods)
	c.Set(fiber.HeaderAccessControlAllowHeaders, allowedHeaders)
	if c.Method() == fiber.MethodOptions {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Next()
}

func jsonErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed", "path", c.Path(), "requestId", c.Locals("requestid"), "error", err)
		}

		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
