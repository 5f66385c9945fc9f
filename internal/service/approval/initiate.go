package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/pkg/ctxutil"
)

// InitiateApproval creates an approval request over a creative with the full
// tier layout fixed up front. Nothing is persisted unless the whole layout is
// valid and the creative has no other active request.
func (s *Service) InitiateApproval(ctx context.Context, input InitiateInput) (*RequestResult, error) {
	viewer, ok := ctxutil.ViewerFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(s.cfg.MaxParticipantsPerTier); err != nil {
		return nil, err
	}

	creative, err := s.creatives.GetByID(ctx, input.CreativeID)
	if err != nil {
		return nil, fmt.Errorf("get creative: %w", err)
	}

	now := time.Now().UTC()
	req := domain.ApprovalRequest{
		ID:          uuid.New(),
		CreativeID:  creative.ID,
		CurrentTier: domain.MinTier,
		Status:      domain.RequestStatusPending,
		InitiatedBy: viewer.Email,
		InitiatedAt: now,
		UpdatedAt:   now,
	}
	if s.cfg.RequestTTL > 0 {
		expires := now.Add(s.cfg.RequestTTL)
		req.ExpiresAt = &expires
	}

	participants := buildParticipants(req.ID, input.Tiers, now)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := s.approvals.GetActiveRequestByCreative(ctx, creative.ID)
		switch {
		case err == nil:
			return fmt.Errorf("creative %s already has an active approval request: %w", creative.ID, domain.ErrAlreadyExists)
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("check active request: %w", err)
		}

		if req, err = createRequest(ctx, s.approvals, req); err != nil {
			return err
		}
		if err := s.approvals.CreateParticipants(ctx, participants); err != nil {
			return fmt.Errorf("create participants: %w", err)
		}
		if err := s.creatives.SetStatus(ctx, creative.ID, domain.CreativeStatusInApproval); err != nil {
			return fmt.Errorf("mark creative in approval: %w", err)
		}

		s.record(ctx, req.ID, domain.ActivityCreated, viewer.Email, viewer.Name, map[string]any{
			"creative_id": creative.ID.String(),
			"tiers":       len(input.Tiers),
			"reviewers":   len(participants),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, domain.TransitionEvent{
		Type:       domain.EventRequestInitiated,
		Request:    req,
		Creative:   *creative,
		ActorEmail: viewer.Email,
		ActorName:  viewer.Name,
		Recipients: domain.PendingParticipantsInTier(participants, req.CurrentTier),
	})

	s.log.InfoContext(ctx, "approval request initiated",
		slog.String("request_id", req.ID.String()),
		slog.String("creative_id", creative.ID.String()),
		slog.Int("reviewers", len(participants)),
	)

	return &RequestResult{Request: req, Participants: participants}, nil
}

func createRequest(ctx context.Context, repo approvalRepo, req domain.ApprovalRequest) (domain.ApprovalRequest, error) {
	created, err := repo.CreateRequest(ctx, req)
	if err != nil {
		return domain.ApprovalRequest{}, fmt.Errorf("create approval request: %w", err)
	}
	return created, nil
}

func buildParticipants(requestID uuid.UUID, tiers []TierInput, now time.Time) []domain.Participant {
	var participants []domain.Participant
	for tier := domain.MinTier; tier <= domain.MaxTier; tier++ {
		for _, t := range tiers {
			if domain.Tier(t.Tier) != tier {
				continue
			}
			for _, p := range t.Participants {
				email := strings.ToLower(strings.TrimSpace(p.Email))
				name := strings.TrimSpace(p.Name)
				if name == "" {
					name = email
				}
				participants = append(participants, domain.Participant{
					ID:        uuid.New(),
					RequestID: requestID,
					Tier:      tier,
					Email:     email,
					Name:      name,
					Status:    domain.ParticipantStatusPending,
					CreatedAt: now,
				})
			}
		}
	}
	return participants
}
