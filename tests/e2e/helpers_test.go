//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/adproofhq/adproof-backend/internal/adapter/blob"
	"github.com/adproofhq/adproof-backend/internal/adapter/postgres"
	activityrepo "github.com/adproofhq/adproof-backend/internal/adapter/postgres/activity"
	approvalrepo "github.com/adproofhq/adproof-backend/internal/adapter/postgres/approval"
	creativerepo "github.com/adproofhq/adproof-backend/internal/adapter/postgres/creative"
	lockrepo "github.com/adproofhq/adproof-backend/internal/adapter/postgres/lock"
	"github.com/adproofhq/adproof-backend/internal/adapter/postgres/testhelper"
	authpkg "github.com/adproofhq/adproof-backend/internal/auth"
	"github.com/adproofhq/adproof-backend/internal/config"
	"github.com/adproofhq/adproof-backend/internal/service/activity"
	"github.com/adproofhq/adproof-backend/internal/service/approval"
	"github.com/adproofhq/adproof-backend/internal/service/creative"
	"github.com/adproofhq/adproof-backend/internal/service/lockmgr"
	"github.com/adproofhq/adproof-backend/internal/transport/middleware"
	"github.com/adproofhq/adproof-backend/internal/transport/rest"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	Links  *authpkg.ShareLinkManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

// setupTestServer boots the full HTTP stack against the shared test database.
// Email and realtime push stay disabled: transitions must not depend on them.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	txManager := postgres.NewTxManager(pool)
	approvals := approvalrepo.New(pool)
	creatives := creativerepo.New(pool)
	locks := lockrepo.New(pool)
	activities := activityrepo.New(pool)

	blobs, err := blob.New(config.BlobConfig{
		Dir:            t.TempDir(),
		BaseURL:        "http://localhost/media",
		MaxUploadBytes: 1 << 20,
	})
	require.NoError(t, err)

	links := authpkg.NewShareLinkManager("e2e-secret-0123456789abcdefghijklmn", time.Hour)

	approvalCfg := config.ApprovalConfig{
		LinkSecret:             "e2e-secret-0123456789abcdefghijklmn",
		LinkTTL:                time.Hour,
		BaseURL:                "http://localhost",
		MaxParticipantsPerTier: 20,
	}

	activitySvc := activity.NewService(logger, activities)
	approvalSvc := approval.NewService(logger, approvals, creatives, activitySvc, txManager, approvalCfg)
	lockSvc := lockmgr.NewService(logger, locks, approvals, config.LockConfig{
		DefaultTTL: 2 * time.Minute,
		MaxTTL:     10 * time.Minute,
	})
	creativeSvc := creative.NewService(logger, creatives, blobs, config.BlobConfig{MaxUploadBytes: 1 << 20})

	router := rest.NewRouter(rest.RouterDeps{
		Logger:    logger,
		Approvals: rest.NewApprovalHandler(approvalSvc, logger),
		Creatives: rest.NewCreativeHandler(creativeSvc, logger, 1<<20),
		Locks:     rest.NewLockHandler(lockSvc, logger),
		Activity:  rest.NewActivityHandler(activitySvc, logger),
		Health:    rest.NewHealthHandler(pool, "e2e"),
		Identify:  middleware.Identify(links),
		CORS:      config.CORSConfig{AllowedOrigins: "*"},
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testServer{
		URL:    server.URL,
		Client: server.Client(),
		Pool:   pool,
		Links:  links,
	}
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

// doJSON sends a JSON request as the given user (email via header) and
// decodes the JSON response.
func (ts *testServer) doJSON(t *testing.T, method, path, email string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set("X-User-Email", email)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &result))
	}
	return resp.StatusCode, result
}

// doJSONList is doJSON for endpoints returning a JSON array.
func (ts *testServer) doJSONList(t *testing.T, method, path, email string) (int, []map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL+path, nil)
	require.NoError(t, err)
	if email != "" {
		req.Header.Set("X-User-Email", email)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

// ---------------------------------------------------------------------------
// Fixture helpers
// ---------------------------------------------------------------------------

// createCreative seeds advertiser -> campaign -> creative and returns the
// creative id.
func (ts *testServer) createCreative(t *testing.T, owner string) string {
	t.Helper()

	status, adv := ts.doJSON(t, http.MethodPost, "/api/v1/advertisers", owner,
		map[string]any{"name": "Acme Corp"})
	require.Equal(t, http.StatusCreated, status, "create advertiser: %v", adv)

	status, camp := ts.doJSON(t, http.MethodPost, "/api/v1/campaigns", owner,
		map[string]any{"advertiserId": adv["id"], "name": "Summer Sale"})
	require.Equal(t, http.StatusCreated, status, "create campaign: %v", camp)

	status, cr := ts.doJSON(t, http.MethodPost, "/api/v1/creatives", owner, map[string]any{
		"campaignId": camp["id"],
		"name":       "Summer Sale 300x250",
		"platform":   "FACEBOOK",
		"adCopy": map[string]any{
			"headline":     "50% off everything",
			"primaryText":  "Our biggest sale of the year.",
			"callToAction": "Shop Now",
		},
	})
	require.Equal(t, http.StatusCreated, status, "create creative: %v", cr)

	return cr["id"].(string)
}

// threeTierBody builds an initiation payload with one reviewer per tier.
func threeTierBody(creativeID string) map[string]any {
	return map[string]any{
		"creativeId": creativeID,
		"tiers": []map[string]any{
			{"tier": 1, "participants": []map[string]any{{"email": "client@example.com", "name": "Client"}}},
			{"tier": 2, "participants": []map[string]any{{"email": "ae@example.com", "name": "AE"}}},
			{"tier": 3, "participants": []map[string]any{{"email": "dcm@example.com", "name": "DCM"}}},
		},
	}
}

// participantID digs the participant id for an email out of a request payload.
func participantID(t *testing.T, request map[string]any, email string) string {
	t.Helper()
	participants, ok := request["participants"].([]any)
	require.True(t, ok, "expected participants array in %v", request)
	for _, raw := range participants {
		p := raw.(map[string]any)
		if p["email"] == email {
			return p["id"].(string)
		}
	}
	t.Fatalf("participant %s not found in %v", email, participants)
	return ""
}

// mintToken issues a share-link token for one participant.
func mintToken(t *testing.T, ts *testServer, requestID, pID, email string) string {
	t.Helper()
	token, err := ts.Links.Mint(authpkg.ShareLink{
		RequestID:     uuid.MustParse(requestID),
		ParticipantID: uuid.MustParse(pID),
		Email:         email,
	})
	require.NoError(t, err)
	return token
}

// decide submits one decision as the given reviewer.
func (ts *testServer) decide(t *testing.T, requestID, participantID, email, decision string, extra map[string]any) (int, map[string]any) {
	t.Helper()
	body := map[string]any{
		"participantId": participantID,
		"status":        decision,
	}
	for k, v := range extra {
		body[k] = v
	}
	return ts.doJSON(t, http.MethodPost, "/api/v1/requests/"+requestID+"/decisions", email, body)
}
