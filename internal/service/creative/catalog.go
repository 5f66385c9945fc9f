package creative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Advertisers and campaigns
// ---------------------------------------------------------------------------

func (s *Service) CreateAdvertiser(ctx context.Context, input AdvertiserInput) (domain.Advertiser, error) {
	if err := input.Validate(); err != nil {
		return domain.Advertiser{}, err
	}

	a, err := s.repo.CreateAdvertiser(ctx, domain.Advertiser{
		Name:         strings.TrimSpace(input.Name),
		ContactEmail: strings.ToLower(strings.TrimSpace(input.ContactEmail)),
	})
	if err != nil {
		return domain.Advertiser{}, fmt.Errorf("create advertiser: %w", err)
	}

	s.log.InfoContext(ctx, "advertiser created", slog.String("advertiser_id", a.ID.String()))
	return a, nil
}

func (s *Service) ListAdvertisers(ctx context.Context) ([]domain.Advertiser, error) {
	return s.repo.ListAdvertisers(ctx)
}

func (s *Service) CreateCampaign(ctx context.Context, input CampaignInput) (domain.Campaign, error) {
	if err := input.Validate(); err != nil {
		return domain.Campaign{}, err
	}

	c, err := s.repo.CreateCampaign(ctx, domain.Campaign{
		AdvertiserID: input.AdvertiserID,
		Name:         strings.TrimSpace(input.Name),
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
	})
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("create campaign: %w", err)
	}

	s.log.InfoContext(ctx, "campaign created",
		slog.String("campaign_id", c.ID.String()),
		slog.String("advertiser_id", c.AdvertiserID.String()),
	)
	return c, nil
}

func (s *Service) ListCampaigns(ctx context.Context, advertiserID uuid.UUID) ([]domain.Campaign, error) {
	if advertiserID == uuid.Nil {
		return nil, domain.NewValidationError("advertiser_id", "is required")
	}
	return s.repo.ListCampaigns(ctx, advertiserID)
}

// ---------------------------------------------------------------------------
// Creatives
// ---------------------------------------------------------------------------

// CreateCreative registers a new creative in DRAFT, owned by the viewer.
func (s *Service) CreateCreative(ctx context.Context, input CreateCreativeInput) (domain.Creative, error) {
	viewer, ok := ctxutil.ViewerFromCtx(ctx)
	if !ok {
		return domain.Creative{}, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return domain.Creative{}, err
	}

	c, err := s.repo.Create(ctx, domain.Creative{
		CampaignID: input.CampaignID,
		OwnerEmail: viewer.Email,
		Name:       strings.TrimSpace(input.Name),
		Platform:   input.Platform,
		Status:     domain.CreativeStatusDraft,
		AdCopy:     input.AdCopy.toDomain(),
	})
	if err != nil {
		return domain.Creative{}, fmt.Errorf("create creative: %w", err)
	}

	s.log.InfoContext(ctx, "creative created",
		slog.String("creative_id", c.ID.String()),
		slog.String("owner", c.OwnerEmail),
	)
	return c, nil
}

func (s *Service) GetCreative(ctx context.Context, id uuid.UUID) (*domain.Creative, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("creative_id", "is required")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fillImageURL(c)
	return c, nil
}

func (s *Service) ListCreatives(ctx context.Context, campaignID uuid.UUID) ([]domain.Creative, error) {
	if campaignID == uuid.Nil {
		return nil, domain.NewValidationError("campaign_id", "is required")
	}
	list, err := s.repo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		s.fillImageURL(&list[i])
	}
	return list, nil
}

// UpdateCreative edits name and ad copy. Only DRAFT creatives are editable:
// anything in or past approval must go through the revision workflow.
func (s *Service) UpdateCreative(ctx context.Context, input UpdateCreativeInput) (*domain.Creative, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, input.CreativeID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.CreativeStatusDraft {
		return nil, domain.NewValidationError("creative_id",
			fmt.Sprintf("creative in status %s is not editable", current.Status))
	}

	if input.Name != nil {
		current.Name = strings.TrimSpace(*input.Name)
	}
	if input.AdCopy != nil {
		current.AdCopy = input.AdCopy.toDomain()
	}

	updated, err := s.repo.Update(ctx, *current)
	if err != nil {
		return nil, fmt.Errorf("update creative: %w", err)
	}

	s.log.DebugContext(ctx, "creative updated", slog.String("creative_id", updated.ID.String()))
	s.fillImageURL(updated)
	return updated, nil
}

func (s *Service) fillImageURL(c *domain.Creative) {
	if c == nil || c.ImageKey == nil {
		return
	}
	u := s.blobs.URL(*c.ImageKey)
	c.ImageURL = &u
}
