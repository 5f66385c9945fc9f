// Package app wires configuration, storage, services, and the HTTP server
// into a running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adproofhq/adproof-backend/internal/adapter/blob"
	"github.com/adproofhq/adproof-backend/internal/adapter/postgres"
	activityrepo "github.com/adproofhq/adproof-backend/internal/adapter/postgres/activity"
	approvalrepo "github.com/adproofhq/adproof-backend/internal/adapter/postgres/approval"
	creativerepo "github.com/adproofhq/adproof-backend/internal/adapter/postgres/creative"
	lockrepo "github.com/adproofhq/adproof-backend/internal/adapter/postgres/lock"
	"github.com/adproofhq/adproof-backend/internal/adapter/smtp"
	"github.com/adproofhq/adproof-backend/internal/auth"
	"github.com/adproofhq/adproof-backend/internal/config"
	"github.com/adproofhq/adproof-backend/internal/service/activity"
	"github.com/adproofhq/adproof-backend/internal/service/approval"
	"github.com/adproofhq/adproof-backend/internal/service/creative"
	"github.com/adproofhq/adproof-backend/internal/service/lockmgr"
	"github.com/adproofhq/adproof-backend/internal/service/notify"
	"github.com/adproofhq/adproof-backend/internal/transport/middleware"
	"github.com/adproofhq/adproof-backend/internal/transport/realtime"
	"github.com/adproofhq/adproof-backend/internal/transport/rest"
)

// Run is the application entry point. It blocks until ctx is cancelled, then
// shuts the HTTP server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	// Adapters.
	txManager := postgres.NewTxManager(pool)
	approvals := approvalrepo.New(pool)
	creatives := creativerepo.New(pool)
	locks := lockrepo.New(pool)
	activities := activityrepo.New(pool)

	blobs, err := blob.New(cfg.Blob)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}
	mailer := smtp.New(cfg.Email)
	links := auth.NewShareLinkManager(cfg.Approval.LinkSecret, cfg.Approval.LinkTTL)

	// Services.
	activitySvc := activity.NewService(logger, activities)
	approvalSvc := approval.NewService(logger, approvals, creatives, activitySvc, txManager, cfg.Approval)
	lockSvc := lockmgr.NewService(logger, locks, approvals, cfg.Locks)
	creativeSvc := creative.NewService(logger, creatives, blobs, cfg.Blob)

	dispatcher := notify.NewDispatcher(logger, mailer, links, activitySvc, cfg.Approval)
	approvalSvc.SetNotifier(dispatcher)

	var wsHandler http.HandlerFunc
	if cfg.Realtime.Enabled {
		hub := realtime.NewHub(logger)
		dispatcher.SetPublisher(hub)
		wsHandler = hub.ServeWS
	}

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	router := rest.NewRouter(rest.RouterDeps{
		Logger:    logger,
		Approvals: rest.NewApprovalHandler(approvalSvc, logger),
		Creatives: rest.NewCreativeHandler(creativeSvc, logger, cfg.Blob.MaxUploadBytes),
		Locks:     rest.NewLockHandler(lockSvc, logger),
		Activity:  rest.NewActivityHandler(activitySvc, logger),
		Health:    rest.NewHealthHandler(pool, BuildVersion()),
		Identify:  middleware.Identify(links),
		Limiter:   limiter,
		WS:        wsHandler,
		Media:     http.FileServer(http.Dir(cfg.Blob.Dir)),
		CORS:      cfg.CORS,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
