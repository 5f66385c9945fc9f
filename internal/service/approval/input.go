package approval

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
)

// ParticipantInput names one reviewer of a tier.
type ParticipantInput struct {
	Email string
	Name  string
}

// TierInput assigns reviewers to one tier.
type TierInput struct {
	Tier         int
	Participants []ParticipantInput
}

// InitiateInput holds the parameters for starting an approval request.
type InitiateInput struct {
	CreativeID uuid.UUID
	Tiers      []TierInput
}

// Validate checks the tier layout: all tiers from client to campaign manager
// must be present exactly once, contiguous, and each must carry at least one
// participant. A reviewer-less tier would let a request advance with nobody
// looking at it, so it blocks initiation outright.
func (i InitiateInput) Validate(maxPerTier int) error {
	var errs []domain.FieldError

	if i.CreativeID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "creative_id", Message: "required"})
	}

	seen := make(map[int][]ParticipantInput, len(i.Tiers))
	for _, t := range i.Tiers {
		if _, dup := seen[t.Tier]; dup {
			errs = append(errs, domain.FieldError{Field: "tiers", Message: fmt.Sprintf("tier %d listed twice", t.Tier)})
			continue
		}
		seen[t.Tier] = t.Participants
	}

	for tier := int(domain.MinTier); tier <= int(domain.MaxTier); tier++ {
		participants, ok := seen[tier]
		if !ok {
			errs = append(errs, domain.FieldError{Field: "tiers", Message: fmt.Sprintf("tier %d is missing", tier)})
			continue
		}
		delete(seen, tier)

		if len(participants) == 0 {
			errs = append(errs, domain.FieldError{Field: "tiers", Message: fmt.Sprintf("tier %d has no participants", tier)})
			continue
		}
		if maxPerTier > 0 && len(participants) > maxPerTier {
			errs = append(errs, domain.FieldError{Field: "tiers", Message: fmt.Sprintf("tier %d exceeds %d participants", tier, maxPerTier)})
		}

		emails := make(map[string]struct{}, len(participants))
		for _, p := range participants {
			email := strings.ToLower(strings.TrimSpace(p.Email))
			if email == "" || !strings.Contains(email, "@") {
				errs = append(errs, domain.FieldError{Field: "tiers", Message: fmt.Sprintf("tier %d has an invalid email %q", tier, p.Email)})
				continue
			}
			if _, dup := emails[email]; dup {
				errs = append(errs, domain.FieldError{Field: "tiers", Message: fmt.Sprintf("tier %d lists %s twice", tier, email)})
			}
			emails[email] = struct{}{}
		}
	}

	// anything left in seen was outside the valid tier range
	for tier := range seen {
		errs = append(errs, domain.FieldError{Field: "tiers", Message: fmt.Sprintf("tier %d is out of range", tier)})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RevisionInput is one suggested field edit attached to a rejection.
type RevisionInput struct {
	FieldPath     string
	FieldLabel    string
	OriginalValue string
	RevisedValue  string
}

// DecisionInput holds the parameters for submitting one reviewer decision.
type DecisionInput struct {
	RequestID     uuid.UUID
	ParticipantID uuid.UUID
	Status        domain.ParticipantStatus
	Comment       *string
	Revisions     []RevisionInput
}

// Validate checks all fields and collects all errors.
func (i DecisionInput) Validate() error {
	var errs []domain.FieldError

	if i.RequestID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "request_id", Message: "required"})
	}
	if i.ParticipantID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "participant_id", Message: "required"})
	}
	if !i.Status.IsDecision() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "must be APPROVED or REJECTED"})
	}

	if len(i.Revisions) > 0 && i.Status != domain.ParticipantStatusRejected {
		errs = append(errs, domain.FieldError{Field: "revisions", Message: "only a rejection may carry revisions"})
	}
	for idx, r := range i.Revisions {
		if strings.TrimSpace(r.FieldPath) == "" {
			errs = append(errs, domain.FieldError{Field: "revisions", Message: fmt.Sprintf("revision %d is missing field_path", idx)})
		}
		if strings.TrimSpace(r.RevisedValue) == "" {
			errs = append(errs, domain.FieldError{Field: "revisions", Message: fmt.Sprintf("revision %d is missing revised_value", idx)})
		}
	}

	if i.Comment != nil && len(strings.TrimSpace(*i.Comment)) > 2000 {
		errs = append(errs, domain.FieldError{Field: "comment", Message: "max 2000 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
