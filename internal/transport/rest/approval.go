package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/internal/service/approval"
)

// approvalService defines the minimal interface needed by ApprovalHandler.
type approvalService interface {
	InitiateApproval(ctx context.Context, input approval.InitiateInput) (*approval.RequestResult, error)
	SubmitDecision(ctx context.Context, input approval.DecisionInput) (*approval.RequestResult, error)
	Resubmit(ctx context.Context, requestID uuid.UUID) (*approval.RequestResult, error)
	GetApprovalState(ctx context.Context, requestID uuid.UUID) (*approval.State, error)
}

// ApprovalHandler serves the approval request endpoints.
type ApprovalHandler struct {
	svc approvalService
	log *slog.Logger
}

func NewApprovalHandler(svc approvalService, logger *slog.Logger) *ApprovalHandler {
	return &ApprovalHandler{svc: svc, log: logger.With("handler", "approval")}
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type participantPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type tierPayload struct {
	Tier         int                  `json:"tier"`
	Participants []participantPayload `json:"participants"`
}

type initiateRequest struct {
	CreativeID uuid.UUID     `json:"creativeId"`
	Tiers      []tierPayload `json:"tiers"`
}

type revisionPayload struct {
	FieldPath     string `json:"fieldPath"`
	FieldLabel    string `json:"fieldLabel"`
	OriginalValue string `json:"originalValue"`
	RevisedValue  string `json:"revisedValue"`
}

type decisionRequest struct {
	ParticipantID uuid.UUID         `json:"participantId"`
	Status        string            `json:"status"`
	Comment       *string           `json:"comment,omitempty"`
	Revisions     []revisionPayload `json:"revisions,omitempty"`
}

type participantResponse struct {
	ID        string     `json:"id"`
	Tier      int        `json:"tier"`
	TierName  string     `json:"tierName"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	DecidedAt *time.Time `json:"decidedAt,omitempty"`
}

type requestResponse struct {
	ID           string                `json:"id"`
	CreativeID   string                `json:"creativeId"`
	Status       string                `json:"status"`
	CurrentTier  int                   `json:"currentTier"`
	InitiatedBy  string                `json:"initiatedBy"`
	InitiatedAt  time.Time             `json:"initiatedAt"`
	ExpiresAt    *time.Time            `json:"expiresAt,omitempty"`
	DecidedAt    *time.Time            `json:"decidedAt,omitempty"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	Participants []participantResponse `json:"participants"`
}

type revisionResponse struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participantId"`
	FieldPath     string    `json:"fieldPath"`
	FieldLabel    string    `json:"fieldLabel,omitempty"`
	OriginalValue string    `json:"originalValue"`
	RevisedValue  string    `json:"revisedValue"`
	CreatedAt     time.Time `json:"createdAt"`
}

type stateResponse struct {
	Request                requestResponse      `json:"request"`
	Creative               creativeResponse     `json:"creative"`
	Revisions              []revisionResponse   `json:"revisions"`
	CanApprove             bool                 `json:"canApprove"`
	CurrentUserParticipant *participantResponse `json:"currentUserParticipant,omitempty"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// Initiate handles POST /api/v1/requests.
func (h *ApprovalHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := approval.InitiateInput{CreativeID: req.CreativeID}
	for _, t := range req.Tiers {
		tier := approval.TierInput{Tier: t.Tier}
		for _, p := range t.Participants {
			tier.Participants = append(tier.Participants, approval.ParticipantInput{
				Email: p.Email,
				Name:  p.Name,
			})
		}
		input.Tiers = append(input.Tiers, tier)
	}

	result, err := h.svc.InitiateApproval(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestResponse(result))
}

// Get handles GET /api/v1/requests/{id}.
func (h *ApprovalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	state, err := h.svc.GetApprovalState(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStateResponse(state))
}

// Decide handles POST /api/v1/requests/{id}/decisions.
func (h *ApprovalHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := approval.DecisionInput{
		RequestID:     id,
		ParticipantID: req.ParticipantID,
		Status:        domain.ParticipantStatus(req.Status),
		Comment:       req.Comment,
	}
	for _, rev := range req.Revisions {
		input.Revisions = append(input.Revisions, approval.RevisionInput{
			FieldPath:     rev.FieldPath,
			FieldLabel:    rev.FieldLabel,
			OriginalValue: rev.OriginalValue,
			RevisedValue:  rev.RevisedValue,
		})
	}

	result, err := h.svc.SubmitDecision(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponse(result))
}

// Resubmit handles POST /api/v1/requests/{id}/resubmit.
func (h *ApprovalHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.svc.Resubmit(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponse(result))
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

func toParticipantResponse(p domain.Participant) participantResponse {
	return participantResponse{
		ID:        p.ID.String(),
		Tier:      int(p.Tier),
		TierName:  p.Tier.Name(),
		Email:     p.Email,
		Name:      p.Name,
		Status:    p.Status.String(),
		DecidedAt: p.DecidedAt,
	}
}

func toRequestResponse(result *approval.RequestResult) requestResponse {
	resp := requestResponse{
		ID:          result.Request.ID.String(),
		CreativeID:  result.Request.CreativeID.String(),
		Status:      result.Request.Status.String(),
		CurrentTier: int(result.Request.CurrentTier),
		InitiatedBy: result.Request.InitiatedBy,
		InitiatedAt: result.Request.InitiatedAt,
		ExpiresAt:   result.Request.ExpiresAt,
		DecidedAt:   result.Request.DecidedAt,
		UpdatedAt:   result.Request.UpdatedAt,
	}
	for _, p := range result.Participants {
		resp.Participants = append(resp.Participants, toParticipantResponse(p))
	}
	return resp
}

func toStateResponse(state *approval.State) stateResponse {
	resp := stateResponse{
		Request: toRequestResponse(&approval.RequestResult{
			Request:      state.Request,
			Participants: state.Participants,
		}),
		Creative:   toCreativeResponse(state.Creative),
		CanApprove: state.CanApprove,
	}
	for _, rev := range state.Revisions {
		resp.Revisions = append(resp.Revisions, revisionResponse{
			ID:            rev.ID.String(),
			ParticipantID: rev.ParticipantID.String(),
			FieldPath:     rev.FieldPath,
			FieldLabel:    rev.FieldLabel,
			OriginalValue: rev.OriginalValue,
			RevisedValue:  rev.RevisedValue,
			CreatedAt:     rev.CreatedAt,
		})
	}
	if state.CurrentUserParticipant != nil {
		p := toParticipantResponse(*state.CurrentUserParticipant)
		resp.CurrentUserParticipant = &p
	}
	return resp
}
