// Package creative manages the catalog that approvals run against:
// advertisers, their campaigns, and the ad creatives themselves, including
// creative image uploads.
package creative

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/config"
	"github.com/adproofhq/adproof-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Interfaces (consumer-defined)
// ---------------------------------------------------------------------------

type catalogRepo interface {
	CreateAdvertiser(ctx context.Context, a domain.Advertiser) (domain.Advertiser, error)
	ListAdvertisers(ctx context.Context) ([]domain.Advertiser, error)

	CreateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error)
	ListCampaigns(ctx context.Context, advertiserID uuid.UUID) ([]domain.Campaign, error)

	Create(ctx context.Context, c domain.Creative) (domain.Creative, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Creative, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Creative, error)
	Update(ctx context.Context, c domain.Creative) (*domain.Creative, error)
}

type blobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

type Service struct {
	log   *slog.Logger
	repo  catalogRepo
	blobs blobStore
	cfg   config.BlobConfig
}

func NewService(logger *slog.Logger, repo catalogRepo, blobs blobStore, cfg config.BlobConfig) *Service {
	return &Service{
		log:   logger.With("service", "creative"),
		repo:  repo,
		blobs: blobs,
		cfg:   cfg,
	}
}
