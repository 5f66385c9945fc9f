package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

func probe(t *testing.T, fn http.HandlerFunc, path string) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec.Code, resp
}

func TestLive_Always200(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&stubPinger{err: errors.New("db is on fire")}, "test")

	code, resp := probe(t, h.Live, "/healthz")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.Status != "ok" {
		t.Errorf("status field = %q, want ok", resp.Status)
	}
	if resp.Timestamp.IsZero() {
		t.Error("timestamp is zero")
	}
}

func TestReady_DBUp(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&stubPinger{}, "test")

	code, resp := probe(t, h.Ready, "/readyz")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.Status != "ok" {
		t.Errorf("status field = %q, want ok", resp.Status)
	}
}

func TestReady_DBDown(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&stubPinger{err: errors.New("connection refused")}, "test")

	code, resp := probe(t, h.Ready, "/readyz")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if resp.Status != "down" {
		t.Errorf("status field = %q, want down", resp.Status)
	}
}

func TestHealth_AllOK(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&stubPinger{}, "v1.0.0")

	code, resp := probe(t, h.Health, "/health")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.Version != "v1.0.0" {
		t.Errorf("version = %q, want v1.0.0", resp.Version)
	}

	db, ok := resp.Components["database"]
	if !ok {
		t.Fatal("missing database component")
	}
	if db.Status != "ok" {
		t.Errorf("database status = %q, want ok", db.Status)
	}
	if db.Latency == "" {
		t.Error("database latency is empty")
	}
}

func TestHealth_DBDown(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&stubPinger{err: errors.New("connection refused")}, "v1.0.0")

	code, resp := probe(t, h.Health, "/health")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if resp.Status != "down" {
		t.Errorf("status field = %q, want down", resp.Status)
	}

	db, ok := resp.Components["database"]
	if !ok {
		t.Fatal("missing database component")
	}
	if db.Status != "down" {
		t.Errorf("database status = %q, want down", db.Status)
	}
}
