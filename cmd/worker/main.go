package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dash-ai/backend/internal/config"
	"github.com/dash-ai/backend/internal/db"
	"github.com/dash-ai/backend/internal/events"
	"github.com/dash-ai/backend/internal/models"
	"github.com/dash-ai/backend/internal/repositories"
	"go.uber.org/zap"
)

// The worker notices sessions whose TTL ran out and publishes the expiry as
// a session change event, so subscribed views lose access without a user
// action.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	sessionRepo := repositories.NewSessionRepo(rdb)
	publisher := events.NewRedisPublisher(rdb, log)

	log.Info("worker started", zap.Duration("sweep_interval", cfg.SessionSweepInterval))

	sweepTicker := time.NewTicker(cfg.SessionSweepInterval)
	defer sweepTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			runSessionSweep(ctx, sessionRepo, publisher, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runSessionSweep(ctx context.Context, sessionRepo *repositories.SessionRepo, publisher events.Publisher, log *zap.Logger) {
	expired, err := sessionRepo.ExpiredBefore(ctx, time.Now())
	if err != nil {
		log.Error("failed to collect expired sessions", zap.Error(err))
		return
	}

	for _, e := range expired {
		log.Info("session expired",
			zap.String("session_id", e.SessionID.String()),
			zap.String("user_id", e.UserID.String()),
		)

		event := events.Event{
			Type: models.SessionExpired,
			Payload: map[string]any{
				"user_id":    e.UserID.String(),
				"session_id": e.SessionID.String(),
			},
		}
		if err := publisher.Publish(ctx, events.StreamSession, event); err != nil {
			log.Error("failed to publish session expiry", zap.Error(err))
		}
	}
}
