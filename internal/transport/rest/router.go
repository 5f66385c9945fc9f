package rest

import (
	"log/slog"
	"net/http"

	"github.com/adproofhq/adproof-backend/internal/config"
	"github.com/adproofhq/adproof-backend/internal/transport/middleware"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Logger    *slog.Logger
	Approvals *ApprovalHandler
	Creatives *CreativeHandler
	Locks     *LockHandler
	Activity  *ActivityHandler
	Health    *HealthHandler

	// Identify resolves the viewer (share-link token or frontend headers).
	Identify middleware.Middleware
	// Limiter throttles per client IP.
	Limiter *middleware.RateLimiter
	// WS serves the websocket subscription endpoint; nil disables it.
	WS http.HandlerFunc
	// Media serves uploaded creative images; nil disables it.
	Media http.Handler

	CORS config.CORSConfig
}

// NewRouter assembles the route table and the middleware stack.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Probes stay outside the API chain.
	mux.HandleFunc("GET /healthz", deps.Health.Live)
	mux.HandleFunc("GET /readyz", deps.Health.Ready)
	mux.HandleFunc("GET /health", deps.Health.Health)

	// Catalog.
	mux.HandleFunc("POST /api/v1/advertisers", deps.Creatives.CreateAdvertiser)
	mux.HandleFunc("GET /api/v1/advertisers", deps.Creatives.ListAdvertisers)
	mux.HandleFunc("GET /api/v1/advertisers/{id}/campaigns", deps.Creatives.ListCampaigns)
	mux.HandleFunc("POST /api/v1/campaigns", deps.Creatives.CreateCampaign)
	mux.HandleFunc("GET /api/v1/campaigns/{id}/creatives", deps.Creatives.ListByCampaign)
	mux.HandleFunc("POST /api/v1/creatives", deps.Creatives.Create)
	mux.HandleFunc("GET /api/v1/creatives/{id}", deps.Creatives.Get)
	mux.HandleFunc("PUT /api/v1/creatives/{id}", deps.Creatives.Update)
	mux.HandleFunc("POST /api/v1/creatives/{id}/image", deps.Creatives.UploadImage)

	// Approval workflow.
	mux.HandleFunc("POST /api/v1/requests", deps.Approvals.Initiate)
	mux.HandleFunc("GET /api/v1/requests/{id}", deps.Approvals.Get)
	mux.HandleFunc("POST /api/v1/requests/{id}/decisions", deps.Approvals.Decide)
	mux.HandleFunc("POST /api/v1/requests/{id}/resubmit", deps.Approvals.Resubmit)

	// Element locks.
	mux.HandleFunc("POST /api/v1/requests/{id}/locks", deps.Locks.Acquire)
	mux.HandleFunc("PUT /api/v1/requests/{id}/locks", deps.Locks.Extend)
	mux.HandleFunc("DELETE /api/v1/requests/{id}/locks", deps.Locks.Release)
	mux.HandleFunc("GET /api/v1/requests/{id}/locks", deps.Locks.List)

	// Activity log and email tracking.
	mux.HandleFunc("GET /api/v1/requests/{id}/activity", deps.Activity.List)
	mux.HandleFunc("GET /t/{id}/open.gif", deps.Activity.TrackOpen)
	mux.HandleFunc("GET /t/{id}/click", deps.Activity.TrackClick)

	if deps.WS != nil {
		mux.HandleFunc("GET /ws/requests/{id}", deps.WS)
	}
	if deps.Media != nil {
		mux.Handle("GET /media/", http.StripPrefix("/media/", deps.Media))
	}

	mws := []middleware.Middleware{
		middleware.RequestID,
		middleware.Recovery(deps.Logger),
		middleware.Logger(deps.Logger),
		middleware.CORS(deps.CORS),
	}
	if deps.Limiter != nil {
		mws = append(mws, deps.Limiter.Limit(300))
	}
	if deps.Identify != nil {
		mws = append(mws, deps.Identify)
	}

	return middleware.Chain(mws...)(mux)
}
