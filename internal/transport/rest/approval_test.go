package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/internal/service/approval"
)

type stubApprovalService struct {
	initiate func(ctx context.Context, input approval.InitiateInput) (*approval.RequestResult, error)
	decide   func(ctx context.Context, input approval.DecisionInput) (*approval.RequestResult, error)
	resubmit func(ctx context.Context, requestID uuid.UUID) (*approval.RequestResult, error)
	state    func(ctx context.Context, requestID uuid.UUID) (*approval.State, error)
}

func (s *stubApprovalService) InitiateApproval(ctx context.Context, input approval.InitiateInput) (*approval.RequestResult, error) {
	return s.initiate(ctx, input)
}

func (s *stubApprovalService) SubmitDecision(ctx context.Context, input approval.DecisionInput) (*approval.RequestResult, error) {
	return s.decide(ctx, input)
}

func (s *stubApprovalService) Resubmit(ctx context.Context, requestID uuid.UUID) (*approval.RequestResult, error) {
	return s.resubmit(ctx, requestID)
}

func (s *stubApprovalService) GetApprovalState(ctx context.Context, requestID uuid.UUID) (*approval.State, error) {
	return s.state(ctx, requestID)
}

func sampleResult() *approval.RequestResult {
	reqID := uuid.New()
	return &approval.RequestResult{
		Request: domain.ApprovalRequest{
			ID:          reqID,
			CreativeID:  uuid.New(),
			CurrentTier: domain.TierClient,
			Status:      domain.RequestStatusPending,
			InitiatedBy: "owner@example.com",
			InitiatedAt: time.Now(),
			UpdatedAt:   time.Now(),
		},
		Participants: []domain.Participant{
			{ID: uuid.New(), RequestID: reqID, Tier: domain.TierClient, Email: "alice@example.com", Status: domain.ParticipantStatusPending},
		},
	}
}

func newApprovalMux(svc approvalService) *http.ServeMux {
	h := NewApprovalHandler(svc, slog.Default())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/requests", h.Initiate)
	mux.HandleFunc("GET /api/v1/requests/{id}", h.Get)
	mux.HandleFunc("POST /api/v1/requests/{id}/decisions", h.Decide)
	mux.HandleFunc("POST /api/v1/requests/{id}/resubmit", h.Resubmit)
	return mux
}

func TestApprovalHandler_Initiate(t *testing.T) {
	var got approval.InitiateInput
	svc := &stubApprovalService{
		initiate: func(_ context.Context, input approval.InitiateInput) (*approval.RequestResult, error) {
			got = input
			return sampleResult(), nil
		},
	}

	body := `{
		"creativeId": "5f0c3a57-39a4-4f52-9d2f-226a5de0a0de",
		"tiers": [
			{"tier": 1, "participants": [{"email": "alice@example.com", "name": "Alice"}]},
			{"tier": 2, "participants": [{"email": "bob@example.com"}]},
			{"tier": 3, "participants": [{"email": "carol@example.com"}]}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newApprovalMux(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	if len(got.Tiers) != 3 {
		t.Errorf("forwarded tiers = %d, want 3", len(got.Tiers))
	}
	if got.Tiers[0].Participants[0].Name != "Alice" {
		t.Errorf("participant name = %q", got.Tiers[0].Participants[0].Name)
	}

	var resp requestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != "PENDING" || len(resp.Participants) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestApprovalHandler_InitiateBadJSON(t *testing.T) {
	svc := &stubApprovalService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	newApprovalMux(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestApprovalHandler_DecideErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("status", "must be APPROVED or REJECTED"), http.StatusBadRequest},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"not_found", domain.ErrNotFound, http.StatusNotFound},
		{"already_decided", domain.ErrAlreadyDecided, http.StatusConflict},
		{"not_current_tier", domain.ErrNotCurrentTier, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubApprovalService{
				decide: func(context.Context, approval.DecisionInput) (*approval.RequestResult, error) {
					return nil, tt.err
				},
			}
			body := `{"participantId": "` + uuid.NewString() + `", "status": "APPROVED"}`
			req := httptest.NewRequest(http.MethodPost,
				"/api/v1/requests/"+uuid.NewString()+"/decisions", strings.NewReader(body))
			rec := httptest.NewRecorder()
			newApprovalMux(svc).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestApprovalHandler_DecideForwardsRevisions(t *testing.T) {
	var got approval.DecisionInput
	svc := &stubApprovalService{
		decide: func(_ context.Context, input approval.DecisionInput) (*approval.RequestResult, error) {
			got = input
			return sampleResult(), nil
		},
	}

	pid := uuid.New()
	body := `{
		"participantId": "` + pid.String() + `",
		"status": "REJECTED",
		"comment": "headline is off-brand",
		"revisions": [
			{"fieldPath": "adCopy.headline", "revisedValue": "Fall Sale", "originalValue": "Summer Sale"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/requests/"+uuid.NewString()+"/decisions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newApprovalMux(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got.ParticipantID != pid || got.Status != domain.ParticipantStatusRejected {
		t.Errorf("input = %+v", got)
	}
	if len(got.Revisions) != 1 || got.Revisions[0].FieldPath != "adCopy.headline" {
		t.Errorf("revisions = %+v", got.Revisions)
	}
}

func TestApprovalHandler_GetInvalidUUID(t *testing.T) {
	svc := &stubApprovalService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	newApprovalMux(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestApprovalHandler_GetState(t *testing.T) {
	result := sampleResult()
	p := result.Participants[0]
	svc := &stubApprovalService{
		state: func(_ context.Context, requestID uuid.UUID) (*approval.State, error) {
			return &approval.State{
				Request:                result.Request,
				Creative:               domain.Creative{ID: result.Request.CreativeID, Name: "Banner", Status: domain.CreativeStatusInApproval},
				Participants:           result.Participants,
				CanApprove:             true,
				CurrentUserParticipant: &p,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/"+result.Request.ID.String(), nil)
	rec := httptest.NewRecorder()
	newApprovalMux(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp stateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.CanApprove || resp.CurrentUserParticipant == nil {
		t.Errorf("response = %+v", resp)
	}
	if resp.Creative.Name != "Banner" {
		t.Errorf("creative name = %q", resp.Creative.Name)
	}
}
