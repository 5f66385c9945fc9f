package rest

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
)

// activityService defines the minimal interface needed by ActivityHandler.
type activityService interface {
	Record(ctx context.Context, act domain.Activity)
	List(ctx context.Context, requestID uuid.UUID, limit int) ([]domain.Activity, error)
}

// ActivityHandler serves the activity log and the email tracking endpoints.
type ActivityHandler struct {
	svc activityService
	log *slog.Logger
}

func NewActivityHandler(svc activityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{svc: svc, log: logger.With("handler", "activity")}
}

type activityResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	UserEmail string         `json:"userEmail,omitempty"`
	UserName  string         `json:"userName,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// List handles GET /api/v1/requests/{id}/activity.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}

	acts, err := h.svc.List(r.Context(), requestID, limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]activityResponse, 0, len(acts))
	for _, a := range acts {
		out = append(out, activityResponse{
			ID:        a.ID.String(),
			Type:      string(a.Type),
			UserEmail: a.UserEmail,
			UserName:  a.UserName,
			Metadata:  a.Metadata,
			CreatedAt: a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// trackingPixel is a 1x1 transparent GIF.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackOpen handles GET /t/{id}/open.gif?email=...
//
// Embedded in notification emails; a fetch means the recipient's client
// rendered the message. Always answers with the pixel, even for garbage
// input, so broken tracking never shows up in an inbox.
func (h *ActivityHandler) TrackOpen(w http.ResponseWriter, r *http.Request) {
	if requestID, err := uuid.Parse(r.PathValue("id")); err == nil {
		h.svc.Record(r.Context(), domain.Activity{
			RequestID: requestID,
			Type:      domain.ActivityEmailOpened,
			UserEmail: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email"))),
		})
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(trackingPixel) //nolint:errcheck
}

// TrackClick handles GET /t/{id}/click?email=...&url=...
//
// Records the click and forwards to the target URL. Only relative URLs and
// same-host absolute URLs are followed; anything else falls back to "/".
func (h *ActivityHandler) TrackClick(w http.ResponseWriter, r *http.Request) {
	target := sanitizeRedirect(r.URL.Query().Get("url"))

	if requestID, err := uuid.Parse(r.PathValue("id")); err == nil {
		h.svc.Record(r.Context(), domain.Activity{
			RequestID: requestID,
			Type:      domain.ActivityEmailClicked,
			UserEmail: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email"))),
			Metadata:  map[string]any{"url": target},
		})
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func sanitizeRedirect(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || strings.HasPrefix(raw, "//") {
		return "/"
	}
	if !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return u.String()
}
