// Package creative implements advertiser, campaign, and creative persistence
// using PostgreSQL.
package creative

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/adproofhq/adproof-backend/internal/adapter/postgres"
	"github.com/adproofhq/adproof-backend/internal/domain"
)

const creativeColumns = "id, campaign_id, owner_email, name, platform, status, " +
	"primary_text, headline, description, call_to_action, display_link, image_key, created_at, updated_at"

// Repo provides creative persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new creative repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Advertisers
// ---------------------------------------------------------------------------

// CreateAdvertiser inserts a new advertiser.
func (r *Repo) CreateAdvertiser(ctx context.Context, a domain.Advertiser) (domain.Advertiser, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("advertisers").
		Columns("id", "name", "contact_email", "created_at").
		Values(a.ID, a.Name, a.ContactEmail, a.CreatedAt).
		Suffix("RETURNING id, name, contact_email, created_at").
		ToSql()
	if err != nil {
		return domain.Advertiser{}, fmt.Errorf("build insert advertiser: %w", err)
	}

	var out domain.Advertiser
	if err := q.QueryRow(ctx, sql, args...).Scan(&out.ID, &out.Name, &out.ContactEmail, &out.CreatedAt); err != nil {
		return domain.Advertiser{}, postgres.MapError(err, "advertiser", a.ID)
	}
	return out, nil
}

// ListAdvertisers returns all advertisers ordered by name.
func (r *Repo) ListAdvertisers(ctx context.Context) ([]domain.Advertiser, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select("id, name, contact_email, created_at").
		From("advertisers").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list advertisers: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list advertisers: %w", err)
	}
	defer rows.Close()

	var advertisers []domain.Advertiser
	for rows.Next() {
		var a domain.Advertiser
		if err := rows.Scan(&a.ID, &a.Name, &a.ContactEmail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan advertiser: %w", err)
		}
		advertisers = append(advertisers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list advertisers: %w", err)
	}

	return advertisers, nil
}

// ---------------------------------------------------------------------------
// Campaigns
// ---------------------------------------------------------------------------

// CreateCampaign inserts a new campaign under an advertiser.
func (r *Repo) CreateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("campaigns").
		Columns("id", "advertiser_id", "name", "start_date", "end_date", "created_at").
		Values(c.ID, c.AdvertiserID, c.Name, c.StartDate, c.EndDate, c.CreatedAt).
		Suffix("RETURNING id, advertiser_id, name, start_date, end_date, created_at").
		ToSql()
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("build insert campaign: %w", err)
	}

	var out domain.Campaign
	if err := q.QueryRow(ctx, sql, args...).Scan(&out.ID, &out.AdvertiserID, &out.Name, &out.StartDate, &out.EndDate, &out.CreatedAt); err != nil {
		return domain.Campaign{}, postgres.MapError(err, "campaign", c.ID)
	}
	return out, nil
}

// ListCampaigns returns campaigns for an advertiser ordered by creation time.
func (r *Repo) ListCampaigns(ctx context.Context, advertiserID uuid.UUID) ([]domain.Campaign, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select("id, advertiser_id, name, start_date, end_date, created_at").
		From("campaigns").
		Where(squirrel.Eq{"advertiser_id": advertiserID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list campaigns: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(&c.ID, &c.AdvertiserID, &c.Name, &c.StartDate, &c.EndDate, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	return campaigns, nil
}

// ---------------------------------------------------------------------------
// Creatives
// ---------------------------------------------------------------------------

// Create inserts a new creative.
func (r *Repo) Create(ctx context.Context, c domain.Creative) (domain.Creative, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("creatives").
		Columns("id", "campaign_id", "owner_email", "name", "platform", "status",
			"primary_text", "headline", "description", "call_to_action", "display_link",
			"image_key", "created_at", "updated_at").
		Values(c.ID, c.CampaignID, c.OwnerEmail, c.Name, c.Platform, c.Status.String(),
			c.AdCopy.PrimaryText, c.AdCopy.Headline, c.AdCopy.Description,
			c.AdCopy.CallToAction, c.AdCopy.DisplayLink,
			c.ImageKey, c.CreatedAt, c.UpdatedAt).
		Suffix("RETURNING " + creativeColumns).
		ToSql()
	if err != nil {
		return domain.Creative{}, fmt.Errorf("build insert creative: %w", err)
	}

	out, err := scanCreative(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return domain.Creative{}, postgres.MapError(err, "creative", c.ID)
	}
	return out, nil
}

// GetByID returns a creative by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Creative, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(creativeColumns).
		From("creatives").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select creative: %w", err)
	}

	c, err := scanCreative(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "creative", id)
	}
	return &c, nil
}

// ListByCampaign returns creatives of a campaign, newest first.
func (r *Repo) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Creative, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(creativeColumns).
		From("creatives").
		Where(squirrel.Eq{"campaign_id": campaignID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list creatives: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list creatives: %w", err)
	}
	defer rows.Close()

	var creatives []domain.Creative
	for rows.Next() {
		c, err := scanCreative(rows)
		if err != nil {
			return nil, fmt.Errorf("scan creative: %w", err)
		}
		creatives = append(creatives, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list creatives: %w", err)
	}

	return creatives, nil
}

// Update persists the mutable fields of a creative and bumps updated_at.
func (r *Repo) Update(ctx context.Context, c domain.Creative) (*domain.Creative, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("creatives").
		Set("name", c.Name).
		Set("platform", c.Platform).
		Set("status", c.Status.String()).
		Set("primary_text", c.AdCopy.PrimaryText).
		Set("headline", c.AdCopy.Headline).
		Set("description", c.AdCopy.Description).
		Set("call_to_action", c.AdCopy.CallToAction).
		Set("display_link", c.AdCopy.DisplayLink).
		Set("image_key", c.ImageKey).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": c.ID}).
		Suffix("RETURNING " + creativeColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update creative: %w", err)
	}

	out, err := scanCreative(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "creative", c.ID)
	}
	return &out, nil
}

// SetStatus updates only the lifecycle status of a creative.
func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, status domain.CreativeStatus) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("creatives").
		Set("status", status.String()).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update creative status: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "creative", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("creative %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanCreative(row pgx.Row) (domain.Creative, error) {
	var (
		c        domain.Creative
		platform string
		status   string
	)
	err := row.Scan(&c.ID, &c.CampaignID, &c.OwnerEmail, &c.Name, &platform, &status,
		&c.AdCopy.PrimaryText, &c.AdCopy.Headline, &c.AdCopy.Description,
		&c.AdCopy.CallToAction, &c.AdCopy.DisplayLink,
		&c.ImageKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Creative{}, err
	}
	c.Platform = domain.Platform(platform)
	c.Status = domain.CreativeStatus(status)
	return c, nil
}
