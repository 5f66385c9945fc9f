package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adproofhq/adproof-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedCreative creates an advertiser, a campaign, and a draft creative.
// Returns the filled domain.Creative.
func SeedCreative(t *testing.T, pool *pgxpool.Pool) domain.Creative {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)

	advertiserID := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO advertisers (id, name, contact_email, created_at)
		 VALUES ($1, $2, $3, $4)`,
		advertiserID, "Advertiser "+suffix, "adv-"+suffix+"@example.com", now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCreative insert advertiser: %v", err)
	}

	campaignID := uuid.New()
	_, err = pool.Exec(ctx,
		`INSERT INTO campaigns (id, advertiser_id, name, created_at)
		 VALUES ($1, $2, $3, $4)`,
		campaignID, advertiserID, "Campaign "+suffix, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCreative insert campaign: %v", err)
	}

	creative := domain.Creative{
		ID:         uuid.New(),
		CampaignID: campaignID,
		OwnerEmail: "owner-" + suffix + "@example.com",
		Name:       "Creative " + suffix,
		Platform:   domain.PlatformFacebook,
		Status:     domain.CreativeStatusDraft,
		AdCopy: domain.AdCopy{
			PrimaryText:  "Primary text " + suffix,
			Headline:     "Headline " + suffix,
			Description:  "Description " + suffix,
			CallToAction: "LEARN_MORE",
			DisplayLink:  "example.com",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO creatives (id, campaign_id, owner_email, name, platform, status,
		                        primary_text, headline, description, call_to_action, display_link,
		                        created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		creative.ID, creative.CampaignID, creative.OwnerEmail, creative.Name,
		string(creative.Platform), string(creative.Status),
		creative.AdCopy.PrimaryText, creative.AdCopy.Headline, creative.AdCopy.Description,
		creative.AdCopy.CallToAction, creative.AdCopy.DisplayLink,
		creative.CreatedAt, creative.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCreative insert creative: %v", err)
	}

	return creative
}

// SeedApprovalRequest creates an approval request over a fresh creative, with
// the given participant emails per tier (tier = index+1).
// Returns the request and its participants ordered by tier.
func SeedApprovalRequest(t *testing.T, pool *pgxpool.Pool, tierEmails ...[]string) (domain.ApprovalRequest, []domain.Participant) {
	t.Helper()
	ctx := context.Background()

	creative := SeedCreative(t, pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	req := domain.ApprovalRequest{
		ID:          uuid.New(),
		CreativeID:  creative.ID,
		CurrentTier: domain.TierClient,
		Status:      domain.RequestStatusInReview,
		InitiatedBy: creative.OwnerEmail,
		InitiatedAt: now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO approval_requests (id, creative_id, current_tier, status, initiated_by, initiated_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.CreativeID, int(req.CurrentTier), string(req.Status), req.InitiatedBy, req.InitiatedAt, req.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedApprovalRequest insert request: %v", err)
	}

	var participants []domain.Participant
	for i, emails := range tierEmails {
		for _, email := range emails {
			p := domain.Participant{
				ID:        uuid.New(),
				RequestID: req.ID,
				Tier:      domain.Tier(i + 1),
				Email:     email,
				Name:      email,
				Status:    domain.ParticipantStatusPending,
				CreatedAt: now,
			}
			_, err := pool.Exec(ctx,
				`INSERT INTO approval_participants (id, request_id, tier, email, name, status, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				p.ID, p.RequestID, int(p.Tier), p.Email, p.Name, string(p.Status), p.CreatedAt,
			)
			if err != nil {
				t.Fatalf("testhelper: SeedApprovalRequest insert participant: %v", err)
			}
			participants = append(participants, p)
		}
	}

	return req, participants
}
