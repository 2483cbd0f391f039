package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"authbase/internal/pkg/logger"
	"authbase/internal/platform/cache"
	"authbase/internal/platform/config"
	"authbase/internal/platform/database"
	"authbase/internal/platform/email"
	"authbase/internal/platform/pubsub"
	"authbase/internal/platform/queue"
	"authbase/internal/platform/repositories"
	"authbase/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := cache.NewClient(cfg.Redis)
	defer redisClient.Close()

	devRepo := repositories.NewDeveloperRepository(db)
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	profileRepo := repositories.NewProfileRepository(db)

	mailer := email.NewSMTPMailer(cfg.SMTP)
	broker := pubsub.NewRedisBroker(redisClient)
	purgeQueue := queue.NewDelayedQueue(redisClient)

	sweeper := workers.NewSweeper(userRepo, devRepo, mailer)
	purger := workers.NewPurger(purgeQueue, devRepo, profileRepo, tokenRepo, cfg.Sweeper.PurgeDelay)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Starting background workers...")

	go runEvery(ctx, cfg.Sweeper.DeleteInterval, sweeper.DeleteUnverified)
	go runEvery(ctx, cfg.Sweeper.ReminderInterval, sweeper.SendReminders)
	go runEvery(ctx, cfg.Sweeper.PurgePollInterval, func() { purger.Run(ctx) })

	// Deletion events are consumed here only for the audit trail; external
	// consumers subscribe to the same channel.
	go func() {
		if err := broker.SubscribeProfileDeleted(ctx, func(event pubsub.DeletionEvent) {
			zlog.Info().
				Str("type", event.Type).
				Str("id", event.ID).
				Int64("timestamp", event.Timestamp).
				Msg("profile deleted")
		}); err != nil && err != context.Canceled {
			zlog.Error().Err(err).Msg("deletion event subscriber stopped")
		}
	}()

	<-ctx.Done()
	log.Println("Workers shutting down")
}

func runEvery(ctx context.Context, interval time.Duration, job func()) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job()
		}
	}
}
