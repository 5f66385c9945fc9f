package approval

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/pkg/ctxutil"
)

// GetApprovalState returns the request, its participants and revisions, plus
// the viewer's own standing. Works without a viewer in context; can_approve
// is then simply false.
func (s *Service) GetApprovalState(ctx context.Context, requestID uuid.UUID) (*State, error) {
	if requestID == uuid.Nil {
		return nil, domain.NewValidationError("request_id", "required")
	}

	req, err := s.approvals.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}

	creative, err := s.creatives.GetByID(ctx, req.CreativeID)
	if err != nil {
		return nil, fmt.Errorf("get creative: %w", err)
	}

	participants, err := s.approvals.ListParticipants(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	revisions, err := s.approvals.ListRevisions(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}

	state := &State{
		Request:      *req,
		Creative:     *creative,
		Participants: participants,
		Revisions:    revisions,
	}

	if viewer, ok := ctxutil.ViewerFromCtx(ctx); ok {
		// the same email may review in several tiers; the active tier's row wins
		for i := range participants {
			if participants[i].Email != viewer.Email {
				continue
			}
			p := participants[i]
			if state.CurrentUserParticipant == nil || p.Tier == req.CurrentTier {
				state.CurrentUserParticipant = &p
			}
		}
		if p := state.CurrentUserParticipant; p != nil {
			state.CanApprove = p.Status == domain.ParticipantStatusPending &&
				p.Tier == req.CurrentTier &&
				!req.Status.IsTerminal() && !req.Status.IsHalted()
		}
	}

	return state, nil
}
