// Package approval implements the tiered approval workflow engine: a
// creative moves through reviewer tiers (client, account executive,
// campaign manager) and advances only when every participant of the
// active tier has approved.
package approval

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

type approvalRepo interface {
	CreateRequest(ctx context.Context, req domain.ApprovalRequest) (domain.ApprovalRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error)
	GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error)
	GetActiveRequestByCreative(ctx context.Context, creativeID uuid.UUID) (*domain.ApprovalRequest, error)
	UpdateRequest(ctx context.Context, req domain.ApprovalRequest) (*domain.ApprovalRequest, error)
	CreateParticipants(ctx context.Context, participants []domain.Participant) error
	GetParticipant(ctx context.Context, id uuid.UUID) (*domain.Participant, error)
	ListParticipants(ctx context.Context, requestID uuid.UUID) ([]domain.Participant, error)
	UpdateParticipantStatus(ctx context.Context, id uuid.UUID, status domain.ParticipantStatus, decidedAt time.Time) (*domain.Participant, error)
	ResetTierParticipants(ctx context.Context, requestID uuid.UUID, tier domain.Tier) (int, error)
	UpsertRevision(ctx context.Context, rev domain.ElementRevision) (domain.ElementRevision, error)
	ListRevisions(ctx context.Context, requestID uuid.UUID) ([]domain.ElementRevision, error)
}

type creativeRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Creative, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.CreativeStatus) error
}

type activityRecorder interface {
	Record(ctx context.Context, act domain.Activity)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type notifier interface {
	Dispatch(ctx context.Context, ev domain.TransitionEvent)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the approval workflow business logic. All state
// transitions of one request run inside a transaction holding a row lock on
// the request, so two concurrent decisions can never both advance a tier.
type Service struct {
	log       *slog.Logger
	approvals approvalRepo
	creatives creativeRepo
	activity  activityRecorder
	tx        txManager
	notify    notifier
	cfg       config.ApprovalConfig
}

// NewService creates a new approval workflow service.
func NewService(
	logger *slog.Logger,
	approvals approvalRepo,
	creatives creativeRepo,
	activity activityRecorder,
	tx txManager,
	cfg config.ApprovalConfig,
) *Service {
	return &Service{
		log:       logger.With("service", "approval"),
		approvals: approvals,
		creatives: creatives,
		activity:  activity,
		tx:        tx,
		cfg:       cfg,
	}
}

// SetNotifier injects the optional transition notifier. Without one,
// transitions commit silently.
func (s *Service) SetNotifier(n notifier) {
	s.notify = n
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// dispatch forwards transition events to the notifier after the enclosing
// transaction has committed. Events from a rolled-back transaction must
// never reach this point.
func (s *Service) dispatch(ctx context.Context, events ...domain.TransitionEvent) {
	if s.notify == nil {
		return
	}
	for _, ev := range events {
		s.notify.Dispatch(ctx, ev)
	}
}

func (s *Service) record(ctx context.Context, requestID uuid.UUID, typ domain.ActivityType, email, name string, metadata map[string]any) {
	s.activity.Record(ctx, domain.Activity{
		RequestID: requestID,
		Type:      typ,
		UserEmail: email,
		UserName:  name,
		Metadata:  metadata,
	})
}
