package approval

import "github.com/adproofhq/adproof-backend/internal/domain"

// RequestResult bundles a request with its participant set as of the end of
// one operation.
type RequestResult struct {
	Request      domain.ApprovalRequest
	Participants []domain.Participant
}

// State is the full view of an approval request for one viewer.
type State struct {
	Request      domain.ApprovalRequest
	Creative     domain.Creative
	Participants []domain.Participant
	Revisions    []domain.ElementRevision

	// CanApprove reports whether the viewer holds a pending decision in the
	// active tier of a request that is still accepting decisions.
	CanApprove bool
	// CurrentUserParticipant is the viewer's own participant row, if any.
	CurrentUserParticipant *domain.Participant
}
