package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/internal/service/lockmgr"
)

// lockService defines the minimal interface needed by LockHandler.
type lockService interface {
	Acquire(ctx context.Context, input lockmgr.AcquireInput) (*lockmgr.Result, error)
	Extend(ctx context.Context, requestID uuid.UUID, elementPath string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, requestID uuid.UUID, elementPath string) (bool, error)
	List(ctx context.Context, requestID uuid.UUID) ([]domain.ElementLock, error)
}

// LockHandler serves the element lock endpoints.
type LockHandler struct {
	svc lockService
	log *slog.Logger
}

func NewLockHandler(svc lockService, logger *slog.Logger) *LockHandler {
	return &LockHandler{svc: svc, log: logger.With("handler", "locks")}
}

type lockRequest struct {
	ElementPath string `json:"elementPath"`
	// TTLSeconds requests a lease length; zero means the server default.
	TTLSeconds int `json:"ttlSeconds,omitempty"`
}

type lockResponse struct {
	ElementPath string    `json:"elementPath"`
	HolderEmail string    `json:"holderEmail"`
	HolderName  string    `json:"holderName,omitempty"`
	LockedAt    time.Time `json:"lockedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type acquireResponse struct {
	Acquired bool          `json:"acquired"`
	Lock     *lockResponse `json:"lock,omitempty"`
}

// Acquire handles POST /api/v1/requests/{id}/locks. A conflict is a 200 with
// acquired=false and the current holder, not an error.
func (h *LockHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Acquire(r.Context(), lockmgr.AcquireInput{
		RequestID:   requestID,
		ElementPath: req.ElementPath,
		TTL:         time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := acquireResponse{Acquired: result.Acquired}
	if result.Lock != nil {
		l := toLockResponse(*result.Lock)
		resp.Lock = &l
	}
	writeJSON(w, http.StatusOK, resp)
}

// Extend handles PUT /api/v1/requests/{id}/locks.
func (h *LockHandler) Extend(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	extended, err := h.svc.Extend(r.Context(), requestID, req.ElementPath,
		time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if !extended {
		writeError(w, http.StatusConflict, "lock is not held by you")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"extended": true})
}

// Release handles DELETE /api/v1/requests/{id}/locks.
func (h *LockHandler) Release(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	released, err := h.svc.Release(r.Context(), requestID, req.ElementPath)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"released": released})
}

// List handles GET /api/v1/requests/{id}/locks.
func (h *LockHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	locks, err := h.svc.List(r.Context(), requestID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]lockResponse, 0, len(locks))
	for _, l := range locks {
		out = append(out, toLockResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func toLockResponse(l domain.ElementLock) lockResponse {
	return lockResponse{
		ElementPath: l.ElementPath,
		HolderEmail: l.HolderEmail,
		HolderName:  l.HolderName,
		LockedAt:    l.LockedAt,
		ExpiresAt:   l.ExpiresAt(),
	}
}
