package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/config"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/provider"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/store"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler handles health and deployment info endpoints.
type HealthHandler struct {
	repo     store.Repository
	cfg      *config.Config
	provider *provider.Adapter
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(repo store.Repository, cfg *config.Config, p *provider.Adapter) *HealthHandler {
	return &HealthHandler{repo: repo, cfg: cfg, provider: p}
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := map[string]any{
		"status": "healthy",
		"checks": map[string]string{
			"api":      "ok",
			"provider": h.provider.Name(),
		},
	}
	statusCode := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		status["status"] = "degraded"
		status["checks"].(map[string]string)["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		status["checks"].(map[string]string)["database"] = "ok"
	}

	JSON(w, statusCode, status)
}

// Config describes the deployment to the frontend: which provider is
// active and which integrations run in demo mode.
func (h *HealthHandler) Config(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	JSON(w, http.StatusOK, map[string]any{
		"provider": name,
		"mock":     name == "mock",
		"sandbox":  h.cfg.Sandbox.Backend,
		"integrations": map[string]bool{
			"email":   h.cfg.Integration.ResendAPIKey != "",
			"weather": h.cfg.Integration.OpenWeatherAPIKey != "",
			"news":    h.cfg.Integration.NewsAPIKey != "",
		},
	})
}

// RegisterRoutes registers health and config routes on the /api router.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/config", h.Config)
}
