package approval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/pkg/ctxutil"
)

// Resubmit re-opens a halted request after the owner has revised the
// creative. Every participant of the halted tier goes back to pending,
// including those who had already approved it, so the revised creative gets
// a full re-review of that tier. current_tier is untouched: it never moves
// backwards.
func (s *Service) Resubmit(ctx context.Context, requestID uuid.UUID) (*RequestResult, error) {
	viewer, ok := ctxutil.ViewerFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if requestID == uuid.Nil {
		return nil, domain.NewValidationError("request_id", "required")
	}

	var (
		result RequestResult
		event  domain.TransitionEvent
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.approvals.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get request: %w", err)
		}
		if !req.Status.IsHalted() {
			return domain.NewValidationError("request", "only a rejected or needs_revision request can be resubmitted")
		}
		if viewer.Email != req.InitiatedBy {
			return fmt.Errorf("viewer %s did not initiate request %s: %w", viewer.Email, req.ID, domain.ErrUnauthorized)
		}

		creative, err := s.creatives.GetByID(ctx, req.CreativeID)
		if err != nil {
			return fmt.Errorf("get creative: %w", err)
		}

		reset, err := s.approvals.ResetTierParticipants(ctx, req.ID, req.CurrentTier)
		if err != nil {
			return fmt.Errorf("reset tier %d: %w", req.CurrentTier, err)
		}

		now := time.Now().UTC()
		req.Status = domain.RequestStatusInReview
		req.DecidedAt = nil
		req.UpdatedAt = now

		updated, err := s.approvals.UpdateRequest(ctx, *req)
		if err != nil {
			return fmt.Errorf("reopen request: %w", err)
		}
		if err := s.creatives.SetStatus(ctx, creative.ID, domain.CreativeStatusInApproval); err != nil {
			return fmt.Errorf("mark creative in approval: %w", err)
		}

		s.record(ctx, req.ID, domain.ActivityResubmitted, viewer.Email, viewer.Name, map[string]any{
			"tier":               int(req.CurrentTier),
			"participants_reset": reset,
		})

		participants, err := s.approvals.ListParticipants(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("list participants: %w", err)
		}

		result = RequestResult{Request: *updated, Participants: participants}
		event = domain.TransitionEvent{
			Type:       domain.EventRequestResubmitted,
			Request:    *updated,
			Creative:   *creative,
			ActorEmail: viewer.Email,
			ActorName:  viewer.Name,
			Recipients: domain.PendingParticipantsInTier(participants, updated.CurrentTier),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, event)

	s.log.InfoContext(ctx, "request resubmitted",
		slog.String("request_id", requestID.String()),
		slog.Int("current_tier", int(result.Request.CurrentTier)),
	)

	return &result, nil
}
