// Command cleanup-locks removes element locks whose lease has lapsed. Lock
// reads already ignore expired rows, so this only reclaims storage; it is
// intended to be invoked by an external cron job.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/adproofhq/adproof-backend/internal/adapter/postgres"
	lockrepo "github.com/adproofhq/adproof-backend/internal/adapter/postgres/lock"
	"github.com/adproofhq/adproof-backend/internal/app"
	"github.com/adproofhq/adproof-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	purged, err := lockrepo.New(pool).PurgeExpired(ctx)
	if err != nil {
		logger.Error("purge expired locks failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("purge completed", slog.Int("purged", purged))
}
