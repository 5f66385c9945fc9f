package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/internal/service/creative"
)

// creativeService defines the minimal interface needed by CreativeHandler.
type creativeService interface {
	CreateAdvertiser(ctx context.Context, input creative.AdvertiserInput) (domain.Advertiser, error)
	ListAdvertisers(ctx context.Context) ([]domain.Advertiser, error)
	CreateCampaign(ctx context.Context, input creative.CampaignInput) (domain.Campaign, error)
	ListCampaigns(ctx context.Context, advertiserID uuid.UUID) ([]domain.Campaign, error)
	CreateCreative(ctx context.Context, input creative.CreateCreativeInput) (domain.Creative, error)
	GetCreative(ctx context.Context, id uuid.UUID) (*domain.Creative, error)
	ListCreatives(ctx context.Context, campaignID uuid.UUID) ([]domain.Creative, error)
	UpdateCreative(ctx context.Context, input creative.UpdateCreativeInput) (*domain.Creative, error)
	UploadCreativeImage(ctx context.Context, input creative.UploadImageInput) (*domain.Creative, error)
}

// CreativeHandler serves the advertiser/campaign/creative catalog endpoints.
type CreativeHandler struct {
	svc            creativeService
	log            *slog.Logger
	maxUploadBytes int64
}

func NewCreativeHandler(svc creativeService, logger *slog.Logger, maxUploadBytes int64) *CreativeHandler {
	return &CreativeHandler{
		svc:            svc,
		log:            logger.With("handler", "creative"),
		maxUploadBytes: maxUploadBytes,
	}
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type advertiserRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contactEmail"`
}

type advertiserResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type campaignRequest struct {
	AdvertiserID uuid.UUID  `json:"advertiserId"`
	Name         string     `json:"name"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

type campaignResponse struct {
	ID           string     `json:"id"`
	AdvertiserID string     `json:"advertiserId"`
	Name         string     `json:"name"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type adCopyPayload struct {
	PrimaryText  string `json:"primaryText"`
	Headline     string `json:"headline"`
	Description  string `json:"description"`
	CallToAction string `json:"callToAction"`
}

type createCreativeRequest struct {
	CampaignID uuid.UUID     `json:"campaignId"`
	Name       string        `json:"name"`
	Platform   string        `json:"platform"`
	AdCopy     adCopyPayload `json:"adCopy"`
}

type updateCreativeRequest struct {
	Name   *string        `json:"name,omitempty"`
	AdCopy *adCopyPayload `json:"adCopy,omitempty"`
}

type creativeResponse struct {
	ID         string        `json:"id"`
	CampaignID string        `json:"campaignId"`
	OwnerEmail string        `json:"ownerEmail"`
	Name       string        `json:"name"`
	Platform   string        `json:"platform"`
	Status     string        `json:"status"`
	AdCopy     adCopyPayload `json:"adCopy"`
	ImageURL   *string       `json:"imageUrl,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// ---------------------------------------------------------------------------
// Advertisers and campaigns
// ---------------------------------------------------------------------------

// CreateAdvertiser handles POST /api/v1/advertisers.
func (h *CreativeHandler) CreateAdvertiser(w http.ResponseWriter, r *http.Request) {
	var req advertiserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.svc.CreateAdvertiser(r.Context(), creative.AdvertiserInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAdvertiserResponse(a))
}

// ListAdvertisers handles GET /api/v1/advertisers.
func (h *CreativeHandler) ListAdvertisers(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListAdvertisers(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]advertiserResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAdvertiserResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateCampaign handles POST /api/v1/campaigns.
func (h *CreativeHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.svc.CreateCampaign(r.Context(), creative.CampaignInput{
		AdvertiserID: req.AdvertiserID,
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCampaignResponse(c))
}

// ListCampaigns handles GET /api/v1/advertisers/{id}/campaigns.
func (h *CreativeHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	advertiserID, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	list, err := h.svc.ListCampaigns(r.Context(), advertiserID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]campaignResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCampaignResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------------
// Creatives
// ---------------------------------------------------------------------------

// Create handles POST /api/v1/creatives.
func (h *CreativeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCreativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.svc.CreateCreative(r.Context(), creative.CreateCreativeInput{
		CampaignID: req.CampaignID,
		Name:       req.Name,
		Platform:   domain.Platform(req.Platform),
		AdCopy: creative.AdCopyInput{
			PrimaryText:  req.AdCopy.PrimaryText,
			Headline:     req.AdCopy.Headline,
			Description:  req.AdCopy.Description,
			CallToAction: req.AdCopy.CallToAction,
		},
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCreativeResponse(c))
}

// Get handles GET /api/v1/creatives/{id}.
func (h *CreativeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	c, err := h.svc.GetCreative(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCreativeResponse(*c))
}

// ListByCampaign handles GET /api/v1/campaigns/{id}/creatives.
func (h *CreativeHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	list, err := h.svc.ListCreatives(r.Context(), campaignID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]creativeResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCreativeResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles PUT /api/v1/creatives/{id}.
func (h *CreativeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req updateCreativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := creative.UpdateCreativeInput{CreativeID: id, Name: req.Name}
	if req.AdCopy != nil {
		input.AdCopy = &creative.AdCopyInput{
			PrimaryText:  req.AdCopy.PrimaryText,
			Headline:     req.AdCopy.Headline,
			Description:  req.AdCopy.Description,
			CallToAction: req.AdCopy.CallToAction,
		}
	}

	c, err := h.svc.UpdateCreative(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCreativeResponse(*c))
}

// UploadImage handles POST /api/v1/creatives/{id}/image (multipart form,
// field "file").
func (h *CreativeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1024)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	c, err := h.svc.UploadCreativeImage(r.Context(), creative.UploadImageInput{
		CreativeID: id,
		Filename:   header.Filename,
		Body:       file,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCreativeResponse(*c))
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func toAdvertiserResponse(a domain.Advertiser) advertiserResponse {
	return advertiserResponse{
		ID:           a.ID.String(),
		Name:         a.Name,
		ContactEmail: a.ContactEmail,
		CreatedAt:    a.CreatedAt,
	}
}

func toCampaignResponse(c domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:           c.ID.String(),
		AdvertiserID: c.AdvertiserID.String(),
		Name:         c.Name,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		CreatedAt:    c.CreatedAt,
	}
}

func toCreativeResponse(c domain.Creative) creativeResponse {
	return creativeResponse{
		ID:         c.ID.String(),
		CampaignID: c.CampaignID.String(),
		OwnerEmail: c.OwnerEmail,
		Name:       c.Name,
		Platform:   string(c.Platform),
		Status:     c.Status.String(),
		AdCopy: adCopyPayload{
			PrimaryText:  c.AdCopy.PrimaryText,
			Headline:     c.AdCopy.Headline,
			Description:  c.AdCopy.Description,
			CallToAction: c.AdCopy.CallToAction,
		},
		ImageURL:  c.ImageURL,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
