package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalRequest is the root of a tiered approval workflow for one creative.
// current_tier only moves forward over the request's lifetime; a resubmit
// after rejection re-opens the halted tier without moving the tier backward.
type ApprovalRequest struct {
	ID          uuid.UUID
	CreativeID  uuid.UUID
	CurrentTier Tier
	Status      RequestStatus
	InitiatedBy string // email of the creative owner who started the flow
	InitiatedAt time.Time
	ExpiresAt   *time.Time
	DecidedAt   *time.Time // set when the request reaches approved/rejected/needs_revision
	UpdatedAt   time.Time
}

// Participant is one reviewer assigned to a tier of an approval request.
// Records are created at initiation time and never deleted; status moves
// pending → approved/rejected exactly once.
type Participant struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	Tier      Tier
	Email     string
	Name      string
	Status    ParticipantStatus
	DecidedAt *time.Time
	CreatedAt time.Time
}

// ElementRevision is a suggested edit to one creative field, proposed while
// rejecting a creative. Keyed by FieldPath within a revision session: a later
// suggestion for the same field replaces the pending one.
type ElementRevision struct {
	ID            uuid.UUID
	RequestID     uuid.UUID
	ParticipantID uuid.UUID
	FieldPath     string // dotted path into the ad copy, e.g. "adCopy.headline"
	FieldLabel    string
	OriginalValue string
	RevisedValue  string
	CreatedAt     time.Time
}

// TierComplete reports whether every participant of the given tier has a
// terminal status and none of them rejected.
func TierComplete(participants []Participant, tier Tier) bool {
	n := 0
	for _, p := range participants {
		if p.Tier != tier {
			continue
		}
		n++
		if p.Status != ParticipantStatusApproved {
			return false
		}
	}
	return n > 0
}

// PendingInTier returns how many participants of the tier have not decided yet.
func PendingInTier(participants []Participant, tier Tier) int {
	return len(PendingParticipantsInTier(participants, tier))
}

// PendingParticipantsInTier returns the participants of the tier who have not
// decided yet, in input order.
func PendingParticipantsInTier(participants []Participant, tier Tier) []Participant {
	var pending []Participant
	for _, p := range participants {
		if p.Tier == tier && p.Status == ParticipantStatusPending {
			pending = append(pending, p)
		}
	}
	return pending
}
