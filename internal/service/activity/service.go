// Package activity maintains the append-only engagement trail of an
// approval request: reviews, decisions, emails, opens and clicks.
package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
)

type activityRepo interface {
	Append(ctx context.Context, act domain.Activity) error
	ListByRequest(ctx context.Context, requestID uuid.UUID, limit int) ([]domain.Activity, error)
}

const defaultListLimit = 200

// Service records and lists activity. Recording is best-effort: the trail
// annotates the workflow but never gates it, so append failures are logged
// and swallowed.
type Service struct {
	log  *slog.Logger
	repo activityRepo
}

// NewService creates a new activity service.
func NewService(logger *slog.Logger, repo activityRepo) *Service {
	return &Service{
		log:  logger.With("service", "activity"),
		repo: repo,
	}
}

// Record appends one activity record. Missing ID and CreatedAt are filled
// in. When called inside a transaction the append joins it, making the
// record atomic with the transition it describes.
func (s *Service) Record(ctx context.Context, act domain.Activity) {
	if act.ID == uuid.Nil {
		act.ID = uuid.New()
	}
	if act.CreatedAt.IsZero() {
		act.CreatedAt = time.Now().UTC()
	}
	if !act.Type.IsValid() {
		s.log.WarnContext(ctx, "dropping activity with unknown type",
			slog.String("type", act.Type.String()),
			slog.String("request_id", act.RequestID.String()),
		)
		return
	}

	if err := s.repo.Append(ctx, act); err != nil {
		s.log.WarnContext(ctx, "activity append failed",
			slog.String("type", act.Type.String()),
			slog.String("request_id", act.RequestID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// List returns a request's activity, newest first. A zero limit applies the
// default cap.
func (s *Service) List(ctx context.Context, requestID uuid.UUID, limit int) ([]domain.Activity, error) {
	if requestID == uuid.Nil {
		return nil, domain.NewValidationError("request_id", "required")
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.ListByRequest(ctx, requestID, limit)
}
