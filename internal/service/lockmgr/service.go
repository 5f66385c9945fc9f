// Package lockmgr implements advisory element locks: best-effort mutual
// exclusion over single creative fields so two reviewers do not edit the
// same element at once. Losing a lock is a normal outcome, not an error.
package lockmgr

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/config"
	"github.com/adproofhq/adproof-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type lockRepo interface {
	Acquire(ctx context.Context, l domain.ElementLock, now time.Time) (*domain.ElementLock, error)
	Extend(ctx context.Context, requestID uuid.UUID, elementPath, holderEmail string, ttl time.Duration, now time.Time) (bool, error)
	Release(ctx context.Context, requestID uuid.UUID, elementPath, holderEmail string) (bool, error)
	Get(ctx context.Context, requestID uuid.UUID, elementPath string) (*domain.ElementLock, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.ElementLock, error)
	PurgeExpired(ctx context.Context) (int, error)
}

type requestGetter interface {
	GetRequest(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service manages element locks for approval requests.
type Service struct {
	log      *slog.Logger
	locks    lockRepo
	requests requestGetter
	cfg      config.LockConfig
}

// NewService creates a new lock manager.
func NewService(logger *slog.Logger, locks lockRepo, requests requestGetter, cfg config.LockConfig) *Service {
	return &Service{
		log:      logger.With("service", "lockmgr"),
		locks:    locks,
		requests: requests,
		cfg:      cfg,
	}
}

// clampTTL maps a requested lease to the configured bounds. Zero means
// "use the default".
func (s *Service) clampTTL(requested time.Duration) time.Duration {
	if requested <= 0 {
		return s.cfg.DefaultTTL
	}
	if requested > s.cfg.MaxTTL {
		return s.cfg.MaxTTL
	}
	return requested
}
