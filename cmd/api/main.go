package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dash-ai/backend/internal/config"
	"github.com/dash-ai/backend/internal/db"
	"github.com/dash-ai/backend/internal/events"
	apphttp "github.com/dash-ai/backend/internal/http"
	"github.com/dash-ai/backend/internal/http/handlers"
	"github.com/dash-ai/backend/internal/repositories"
	"github.com/dash-ai/backend/internal/services"
	"github.com/dash-ai/backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	sessionRepo := repositories.NewSessionRepo(rdb)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Session store
	provider := session.NewCredentialsProvider(userRepo, sessionRepo, publisher, subscriber,
		cfg.JWTSecret, cfg.SessionTTL, cfg.BcryptCost, log)
	store := session.NewStore(provider, log)
	if err := store.Start(ctx); err != nil {
		log.Fatal("session change subscription failed", zap.Error(err))
	}

	// Protected routes answer 503 until the one-time restore succeeds.
	go func() {
		for {
			err := store.Restore(ctx)
			if err == nil {
				log.Info("session store restored")
				return
			}
			log.Warn("session restore failed, retrying", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
	}()

	// Services
	notifier := services.NewWebhookNotifier(cfg.ApprovalWebhookURL, log)
	generator := services.NewGeneratorClient(cfg.GeneratorURL, log)
	reviewService := services.NewReviewService(notifier, log)
	blueprintService := services.NewBlueprintService(generator, reviewService, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(store, log)
	blueprintHandler := handlers.NewBlueprintHandler(blueprintService, log)
	reviewHandler := handlers.NewReviewHandler(reviewService, log)
	sessionHub := handlers.NewSessionHub(store, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, store, authHandler, blueprintHandler, reviewHandler, sessionHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
