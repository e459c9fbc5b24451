package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/jss367/convora/internal/handler"
	"github.com/jss367/convora/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Discussion *handler.DiscussionHandler
	Stats      *handler.StatsHandler
	Health     *handler.HealthHandler
	WS         *handler.WSHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Health checks (before API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus scrape endpoint
	app.Get("/metrics", handler.MetricsHandler())

	// Websocket endpoint; rate limit guards the upgrade, not the session.
	app.Get("/ws", h.WS.Serve, middleware.NewWSUpgradeRateLimiter().Handler())

	// API routes
	api := app.Group("/api")

	// Discussion routes
	api.Post("/discussions", h.Discussion.Create, middleware.NewDiscussionCreateRateLimiter().Handler())
	api.Get("/discussions/topic/:topic/questions", h.Discussion.GetQuestions, middleware.NewSnapshotRateLimiter().Handler())
	api.Get("/discussions/:id", h.Discussion.GetByID)

	// Stats routes
	api.Get("/stats", h.Stats.GetStats, middleware.NewStatsRateLimiter().Handler())
}
