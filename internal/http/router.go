package http

import (
	"time"

	"github.com/dash-ai/backend/internal/config"
	"github.com/dash-ai/backend/internal/http/handlers"
	"github.com/dash-ai/backend/internal/middleware"
	"github.com/dash-ai/backend/internal/session"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	store *session.Store,
	authHandler *handlers.AuthHandler,
	blueprintHandler *handlers.BlueprintHandler,
	reviewHandler *handlers.ReviewHandler,
	sessionHub *handlers.SessionHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Landing (public)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "dash-ai", "status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Credential entry (public)
	api.Post("/signin", authHandler.SignIn)
	api.Post("/signup", authHandler.SignUp)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(store, log))

	protected.Post("/signout", authHandler.SignOut)
	protected.Get("/me", authHandler.Me)

	// Meta
	metaHandler := handlers.NewMetaHandler()
	protected.Get("/meta/platforms", metaHandler.GetPlatforms)
	protected.Get("/meta/formats", metaHandler.GetFormats)

	// Composer
	protected.Post("/content-blueprint", blueprintHandler.Submit)

	// Review
	protected.Get("/content-review", reviewHandler.View)
	protected.Post("/content-review/approve", reviewHandler.Approve)
	protected.Post("/content-review/reject", reviewHandler.Reject)

	// WebSocket: session change push
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(sessionHub.HandleWS))
}
