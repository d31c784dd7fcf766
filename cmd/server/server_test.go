package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/internal/infrastructure"
)

type stubClient struct{}

func (stubClient) Generate(context.Context, generation.Request) (string, error) {
	return "", errors.New("not scripted")
}

func (stubClient) GenerateWithTools(context.Context, []generation.Message, []generation.Tool) (*generation.Reply, error) {
	return nil, errors.New("not scripted")
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	srv, err := NewServer(context.Background(), cfg, infrastructure.Options{
		LogOutput:  io.Discard,
		Generation: stubClient{},
	})
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	t.Cleanup(func() { srv.infra.Lifecycle.Shutdown(time.Second) })
	return srv
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.http.http.Handler

	if rec := get(t, handler, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz: got %d, want 200", rec.Code)
	}

	if rec := get(t, handler, "/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz before startup: got %d, want 503", rec.Code)
	}

	srv.infra.Lifecycle.WaitForStartup()
	if rec := get(t, handler, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("readyz after startup: got %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv.http.http.Handler, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics missing runtime collectors")
	}
}

func TestAPIMounted(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv.http.http.Handler, "/api/analyses/not-a-uuid")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("find invalid id: got %d, want 400", rec.Code)
	}

	if rec := get(t, srv.http.http.Handler, "/unknown"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path: got %d, want 404", rec.Code)
	}
}
