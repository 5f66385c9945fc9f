package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adproofhq/adproof-backend/pkg/ctxutil"
)

func loggedRequest(t *testing.T, status int, mutate func(*http.Request) *http.Request) string {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil)
	if mutate != nil {
		req = mutate(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return buf.String()
}

func TestLogger_Success(t *testing.T) {
	out := loggedRequest(t, http.StatusOK, nil)

	for _, want := range []string{"http.request", "GET", "/api/v1/requests", `"status":200`, "duration", "INFO"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %q", want, out)
		}
	}
}

func TestLogger_ServerErrorLevel(t *testing.T) {
	out := loggedRequest(t, http.StatusInternalServerError, nil)

	if !strings.Contains(out, "ERROR") {
		t.Errorf("expected ERROR level for status 500: %q", out)
	}
	if !strings.Contains(out, `"status":500`) {
		t.Errorf("log missing status 500: %q", out)
	}
}

func TestLogger_IncludesRequestID(t *testing.T) {
	out := loggedRequest(t, http.StatusOK, func(r *http.Request) *http.Request {
		return r.WithContext(ctxutil.WithRequestID(r.Context(), "req-abc-123"))
	})

	if !strings.Contains(out, "req-abc-123") {
		t.Errorf("log missing request id: %q", out)
	}
}

func TestLogger_IncludesViewer(t *testing.T) {
	out := loggedRequest(t, http.StatusOK, func(r *http.Request) *http.Request {
		viewer := ctxutil.Viewer{Email: "dcm@example.com", Name: "Dana"}
		return r.WithContext(ctxutil.WithViewer(r.Context(), viewer))
	})

	if !strings.Contains(out, "dcm@example.com") {
		t.Errorf("log missing viewer email: %q", out)
	}
}

func TestLogger_AnonymousOmitsViewer(t *testing.T) {
	out := loggedRequest(t, http.StatusOK, nil)

	if strings.Contains(out, `"viewer"`) {
		t.Errorf("viewer attr present for anonymous request: %q", out)
	}
}
