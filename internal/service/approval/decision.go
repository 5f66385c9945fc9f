package approval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/pkg/ctxutil"
)

// SubmitDecision records one reviewer decision and advances the workflow.
//
// The whole transition runs inside a transaction holding SELECT ... FOR
// UPDATE on the request row. Two concurrent decisions on the same request
// serialize on that lock, so the last-remaining-participant race (both
// observing the tier incomplete, both advancing) cannot happen.
func (s *Service) SubmitDecision(ctx context.Context, input DecisionInput) (*RequestResult, error) {
	viewer, ok := ctxutil.ViewerFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		result RequestResult
		events []domain.TransitionEvent
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.approvals.GetRequestForUpdate(ctx, input.RequestID)
		if err != nil {
			return fmt.Errorf("get request: %w", err)
		}
		if req.Status.IsTerminal() || req.Status.IsHalted() {
			return domain.NewValidationError("request", fmt.Sprintf("request is %s and no longer accepts decisions", strings.ToLower(req.Status.String())))
		}

		p, err := s.approvals.GetParticipant(ctx, input.ParticipantID)
		if err != nil {
			return fmt.Errorf("get participant: %w", err)
		}
		if p.RequestID != req.ID {
			return fmt.Errorf("participant %s does not belong to request %s: %w", p.ID, req.ID, domain.ErrNotFound)
		}
		if viewer.Email != p.Email {
			return fmt.Errorf("viewer %s is not participant %s: %w", viewer.Email, p.Email, domain.ErrUnauthorized)
		}
		if p.Tier != req.CurrentTier {
			return fmt.Errorf("participant is in tier %d, current tier is %d: %w", p.Tier, req.CurrentTier, domain.ErrNotCurrentTier)
		}

		now := time.Now().UTC()
		if _, err := s.approvals.UpdateParticipantStatus(ctx, p.ID, input.Status, now); err != nil {
			return fmt.Errorf("record decision: %w", err)
		}

		creative, err := s.creatives.GetByID(ctx, req.CreativeID)
		if err != nil {
			return fmt.Errorf("get creative: %w", err)
		}

		if input.Comment != nil && strings.TrimSpace(*input.Comment) != "" {
			s.record(ctx, req.ID, domain.ActivityCommentAdded, viewer.Email, viewer.Name, map[string]any{
				"comment": strings.TrimSpace(*input.Comment),
			})
		}

		// first decision on a fresh request opens the review
		if req.Status == domain.RequestStatusPending {
			req.Status = domain.RequestStatusInReview
		}

		switch input.Status {
		case domain.ParticipantStatusRejected:
			events, err = s.applyRejection(ctx, req, p, creative, viewer, input.Revisions, now)
		case domain.ParticipantStatusApproved:
			events, err = s.applyApproval(ctx, req, p, creative, viewer, now)
		}
		if err != nil {
			return err
		}

		updated, err := s.approvals.GetRequest(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("reload request: %w", err)
		}
		participants, err := s.approvals.ListParticipants(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("list participants: %w", err)
		}
		result = RequestResult{Request: *updated, Participants: participants}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, events...)

	s.log.InfoContext(ctx, "decision submitted",
		slog.String("request_id", input.RequestID.String()),
		slog.String("participant_id", input.ParticipantID.String()),
		slog.String("decision", input.Status.String()),
		slog.String("request_status", result.Request.Status.String()),
		slog.Int("current_tier", int(result.Request.CurrentTier)),
	)

	return &result, nil
}

// applyRejection halts tier evaluation. A rejection carrying suggested
// revisions parks the request in needs_revision for the owner to act on; a
// bare rejection is final until the owner resubmits.
func (s *Service) applyRejection(
	ctx context.Context,
	req *domain.ApprovalRequest,
	p *domain.Participant,
	creative *domain.Creative,
	viewer ctxutil.Viewer,
	revisions []RevisionInput,
	now time.Time,
) ([]domain.TransitionEvent, error) {
	for _, r := range revisions {
		rev := domain.ElementRevision{
			ID:            uuid.New(),
			RequestID:     req.ID,
			ParticipantID: p.ID,
			FieldPath:     strings.TrimSpace(r.FieldPath),
			FieldLabel:    strings.TrimSpace(r.FieldLabel),
			OriginalValue: r.OriginalValue,
			RevisedValue:  r.RevisedValue,
			CreatedAt:     now,
		}
		if _, err := s.approvals.UpsertRevision(ctx, rev); err != nil {
			return nil, fmt.Errorf("store revision for %s: %w", rev.FieldPath, err)
		}
		s.record(ctx, req.ID, domain.ActivityRevisionSuggested, viewer.Email, viewer.Name, map[string]any{
			"field_path":    rev.FieldPath,
			"revised_value": rev.RevisedValue,
		})
	}

	if len(revisions) > 0 {
		req.Status = domain.RequestStatusNeedsRevision
	} else {
		req.Status = domain.RequestStatusRejected
	}
	req.DecidedAt = &now
	req.UpdatedAt = now

	if _, err := s.approvals.UpdateRequest(ctx, *req); err != nil {
		return nil, fmt.Errorf("halt request: %w", err)
	}
	if err := s.creatives.SetStatus(ctx, creative.ID, domain.CreativeStatusDraft); err != nil {
		return nil, fmt.Errorf("return creative to draft: %w", err)
	}

	s.record(ctx, req.ID, domain.ActivityRejected, viewer.Email, viewer.Name, map[string]any{
		"tier":      int(p.Tier),
		"revisions": len(revisions),
	})

	return []domain.TransitionEvent{{
		Type:       domain.EventRequestHalted,
		Request:    *req,
		Creative:   *creative,
		ActorEmail: viewer.Email,
		ActorName:  viewer.Name,
	}}, nil
}

// applyApproval records the approval and evaluates the fan-in join: the tier
// advances only once its entire participant set has approved.
func (s *Service) applyApproval(
	ctx context.Context,
	req *domain.ApprovalRequest,
	p *domain.Participant,
	creative *domain.Creative,
	viewer ctxutil.Viewer,
	now time.Time,
) ([]domain.TransitionEvent, error) {
	s.record(ctx, req.ID, domain.ActivityApproved, viewer.Email, viewer.Name, map[string]any{
		"tier": int(p.Tier),
	})

	participants, err := s.approvals.ListParticipants(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	if !domain.TierComplete(participants, req.CurrentTier) {
		// fan-in pending: stay on the same tier
		req.UpdatedAt = now
		if _, err := s.approvals.UpdateRequest(ctx, *req); err != nil {
			return nil, fmt.Errorf("update request: %w", err)
		}
		return nil, nil
	}

	if req.CurrentTier < domain.MaxTier {
		fromTier := req.CurrentTier
		req.CurrentTier++
		req.Status = domain.RequestStatusInReview
		req.UpdatedAt = now
		if _, err := s.approvals.UpdateRequest(ctx, *req); err != nil {
			return nil, fmt.Errorf("advance tier: %w", err)
		}

		s.record(ctx, req.ID, domain.ActivityTierAdvanced, viewer.Email, viewer.Name, map[string]any{
			"from_tier": int(fromTier),
			"to_tier":   int(req.CurrentTier),
		})

		return []domain.TransitionEvent{{
			Type:       domain.EventTierAdvanced,
			Request:    *req,
			Creative:   *creative,
			FromTier:   fromTier,
			ToTier:     req.CurrentTier,
			ActorEmail: viewer.Email,
			ActorName:  viewer.Name,
			Recipients: domain.PendingParticipantsInTier(participants, req.CurrentTier),
		}}, nil
	}

	// final tier cleared: terminal approval
	req.Status = domain.RequestStatusApproved
	req.DecidedAt = &now
	req.UpdatedAt = now
	if _, err := s.approvals.UpdateRequest(ctx, *req); err != nil {
		return nil, fmt.Errorf("complete request: %w", err)
	}
	if err := s.creatives.SetStatus(ctx, creative.ID, domain.CreativeStatusApproved); err != nil {
		return nil, fmt.Errorf("mark creative approved: %w", err)
	}

	s.record(ctx, req.ID, domain.ActivityApprovalComplete, viewer.Email, viewer.Name, nil)

	return []domain.TransitionEvent{{
		Type:       domain.EventApprovalComplete,
		Request:    *req,
		Creative:   *creative,
		ActorEmail: viewer.Email,
		ActorName:  viewer.Name,
	}}, nil
}
