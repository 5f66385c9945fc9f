package domain

import (
	"time"

	"github.com/google/uuid"
)

// Advertiser is a client organization that owns campaigns.
type Advertiser struct {
	ID           uuid.UUID
	Name         string
	ContactEmail string
	CreatedAt    time.Time
}

// Campaign groups creatives under an advertiser.
type Campaign struct {
	ID           uuid.UUID
	AdvertiserID uuid.UUID
	Name         string
	StartDate    *time.Time
	EndDate      *time.Time
	CreatedAt    time.Time
}

// AdCopy holds the editable text fields of a creative. Field paths used by
// element revisions and locks ("adCopy.headline" etc.) resolve into this
// struct.
type AdCopy struct {
	PrimaryText  string `json:"primaryText"`
	Headline     string `json:"headline"`
	Description  string `json:"description"`
	CallToAction string `json:"callToAction"`
	DisplayLink  string `json:"displayLink"`
}

// Creative is one ad creative being built and reviewed.
type Creative struct {
	ID         uuid.UUID
	CampaignID uuid.UUID
	OwnerEmail string
	Name       string
	Platform   Platform
	Status     CreativeStatus
	AdCopy     AdCopy
	ImageKey   *string // blob store key of the creative image, if uploaded
	ImageURL   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
