package creative

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
)

const (
	maxNameLen        = 200
	maxAdCopyTextLen  = 3000
	maxAdCopyShortLen = 500
)

type AdvertiserInput struct {
	Name         string
	ContactEmail string
}

func (in AdvertiserInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "is required"})
	}
	if len(in.Name) > maxNameLen {
		errs = append(errs, domain.FieldError{Field: "name", Message: "is too long"})
	}
	if in.ContactEmail != "" && !strings.Contains(in.ContactEmail, "@") {
		errs = append(errs, domain.FieldError{Field: "contact_email", Message: "is not a valid email"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

type CampaignInput struct {
	AdvertiserID uuid.UUID
	Name         string
	StartDate    *time.Time
	EndDate      *time.Time
}

func (in CampaignInput) Validate() error {
	var errs []domain.FieldError
	if in.AdvertiserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "advertiser_id", Message: "is required"})
	}
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "is required"})
	}
	if len(in.Name) > maxNameLen {
		errs = append(errs, domain.FieldError{Field: "name", Message: "is too long"})
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		errs = append(errs, domain.FieldError{Field: "end_date", Message: "must not precede start_date"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

type AdCopyInput struct {
	PrimaryText  string
	Headline     string
	Description  string
	CallToAction string
}

func (in AdCopyInput) validate(errs []domain.FieldError) []domain.FieldError {
	if len(in.PrimaryText) > maxAdCopyTextLen {
		errs = append(errs, domain.FieldError{Field: "ad_copy.primary_text", Message: "is too long"})
	}
	if len(in.Headline) > maxAdCopyShortLen {
		errs = append(errs, domain.FieldError{Field: "ad_copy.headline", Message: "is too long"})
	}
	if len(in.Description) > maxAdCopyTextLen {
		errs = append(errs, domain.FieldError{Field: "ad_copy.description", Message: "is too long"})
	}
	if len(in.CallToAction) > maxAdCopyShortLen {
		errs = append(errs, domain.FieldError{Field: "ad_copy.call_to_action", Message: "is too long"})
	}
	return errs
}

func (in AdCopyInput) toDomain() domain.AdCopy {
	return domain.AdCopy{
		PrimaryText:  strings.TrimSpace(in.PrimaryText),
		Headline:     strings.TrimSpace(in.Headline),
		Description:  strings.TrimSpace(in.Description),
		CallToAction: strings.TrimSpace(in.CallToAction),
	}
}

type CreateCreativeInput struct {
	CampaignID uuid.UUID
	Name       string
	Platform   domain.Platform
	AdCopy     AdCopyInput
}

func (in CreateCreativeInput) Validate() error {
	var errs []domain.FieldError
	if in.CampaignID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "campaign_id", Message: "is required"})
	}
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "is required"})
	}
	if len(in.Name) > maxNameLen {
		errs = append(errs, domain.FieldError{Field: "name", Message: "is too long"})
	}
	if !in.Platform.IsValid() {
		errs = append(errs, domain.FieldError{Field: "platform", Message: "is not a supported platform"})
	}
	errs = in.AdCopy.validate(errs)
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

type UpdateCreativeInput struct {
	CreativeID uuid.UUID
	Name       *string
	AdCopy     *AdCopyInput
}

func (in UpdateCreativeInput) Validate() error {
	var errs []domain.FieldError
	if in.CreativeID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "creative_id", Message: "is required"})
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			errs = append(errs, domain.FieldError{Field: "name", Message: "must not be empty"})
		}
		if len(*in.Name) > maxNameLen {
			errs = append(errs, domain.FieldError{Field: "name", Message: "is too long"})
		}
	}
	if in.AdCopy != nil {
		errs = in.AdCopy.validate(errs)
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
