package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/config"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/metrics"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/provider"
)

func newHealthRouter(repo *fakeRepo) http.Handler {
	cfg := &config.Config{Sandbox: config.SandboxConfig{Backend: "local"}}
	adapter := provider.New(config.ProviderConfig{}, metrics.New())
	handler := NewHealthHandler(repo, cfg, adapter)

	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		handler.RegisterRoutes(api)
	})
	return r
}

func TestHealthHealthy(t *testing.T) {
	router := newHealthRouter(newFakeRepo())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var got struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeJSON(t, rr, &got)
	if got.Status != "healthy" {
		t.Errorf("expected status healthy, got %q", got.Status)
	}
	if got.Checks["database"] != "ok" {
		t.Errorf("expected database check ok, got %q", got.Checks["database"])
	}
	if got.Checks["provider"] != "mock" {
		t.Errorf("expected provider check mock, got %q", got.Checks["provider"])
	}
}

func TestHealthDegradedWhenDatabaseDown(t *testing.T) {
	repo := newFakeRepo()
	repo.pingErr = errors.New("connection refused")
	router := newHealthRouter(repo)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
	var got struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeJSON(t, rr, &got)
	if got.Status != "degraded" {
		t.Errorf("expected status degraded, got %q", got.Status)
	}
	if got.Checks["database"] != "unreachable" {
		t.Errorf("expected database check unreachable, got %q", got.Checks["database"])
	}
}

func TestConfigEndpoint(t *testing.T) {
	router := newHealthRouter(newFakeRepo())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var got struct {
		Provider     string          `json:"provider"`
		Mock         bool            `json:"mock"`
		Sandbox      string          `json:"sandbox"`
		Integrations map[string]bool `json:"integrations"`
	}
	decodeJSON(t, rr, &got)
	if got.Provider != "mock" || !got.Mock {
		t.Errorf("expected mock provider, got %+v", got)
	}
	if got.Sandbox != "local" {
		t.Errorf("expected local sandbox, got %q", got.Sandbox)
	}
	if got.Integrations["email"] {
		t.Error("expected email integration in demo mode")
	}
}
