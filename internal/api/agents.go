package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/executor"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 200
)

// AgentHandler handles agent CRUD, execution, and the template catalog.
type AgentHandler struct {
	*Handler
	executor *executor.Executor
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(base *Handler, exec *executor.Executor) *AgentHandler {
	return &AgentHandler{Handler: base, executor: exec}
}

// RegisterRoutes registers agent routes on the /api router.
func (h *AgentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/agents", h.List)
	r.Post("/agents", h.Create)
	r.Get("/agents/{id}", h.Get)
	r.Delete("/agents/{id}", h.Delete)
	r.Post("/agents/{id}/execute", h.Execute)
	r.Get("/agents/{id}/logs", h.Logs)
	r.Get("/templates", h.Templates)
}

// List returns the caller's agents, newest first.
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	agents, err := h.repo.ListAgents(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list agents", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to list agents")
		return
	}
	if agents == nil {
		agents = []*domain.Agent{}
	}
	JSON(w, http.StatusOK, agents)
}

type createAgentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TemplateID  string `json:"templateId"`
}

// Create creates an agent for the caller. The name is required; the
// template id, when given, must be part of the catalog.
func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.TemplateID != "" && domain.TemplateByID(req.TemplateID) == nil {
		Error(w, http.StatusBadRequest, "unknown template id")
		return
	}

	agent := &domain.Agent{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		TemplateID:  req.TemplateID,
		Status:      domain.AgentStatusActive,
		CreatedAt:   time.Now(),
	}
	if err := h.repo.CreateAgent(r.Context(), agent); err != nil {
		slog.Error("failed to create agent", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to create agent")
		return
	}

	slog.Info("agent created", "agent_id", agent.ID, "user_id", userID, "template_id", agent.TemplateID)
	JSON(w, http.StatusCreated, agent)
}

// Get returns one of the caller's agents.
func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	agentID := chi.URLParam(r, "id")

	agent, err := h.repo.GetAgent(r.Context(), userID, agentID)
	if err != nil {
		slog.Error("failed to get agent", "error", err, "agent_id", agentID)
		Error(w, http.StatusInternalServerError, "failed to get agent")
		return
	}
	if agent == nil {
		Error(w, http.StatusNotFound, "agent not found")
		return
	}
	JSON(w, http.StatusOK, agent)
}

// Delete removes one of the caller's agents along with its logs.
func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	agentID := chi.URLParam(r, "id")

	agent, err := h.repo.GetAgent(r.Context(), userID, agentID)
	if err != nil {
		slog.Error("failed to get agent", "error", err, "agent_id", agentID)
		Error(w, http.StatusInternalServerError, "failed to delete agent")
		return
	}
	if agent == nil {
		Error(w, http.StatusNotFound, "agent not found")
		return
	}

	if err := h.repo.DeleteAgent(r.Context(), userID, agentID); err != nil {
		slog.Error("failed to delete agent", "error", err, "agent_id", agentID)
		Error(w, http.StatusInternalServerError, "failed to delete agent")
		return
	}

	slog.Info("agent deleted", "agent_id", agentID, "user_id", userID)
	JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Execute runs the agent's integration. The response is always the
// execution result shape; a missing agent is a failure result, not an
// HTTP error.
func (h *AgentHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	agentID := chi.URLParam(r, "id")

	params := executor.Params{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.executor.Execute(r.Context(), userID, agentID, params)
	JSON(w, http.StatusOK, result)
}

// Logs returns the agent's execution history, newest first.
func (h *AgentHandler) Logs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	agentID := chi.URLParam(r, "id")

	agent, err := h.repo.GetAgent(r.Context(), userID, agentID)
	if err != nil {
		slog.Error("failed to get agent", "error", err, "agent_id", agentID)
		Error(w, http.StatusInternalServerError, "failed to list execution logs")
		return
	}
	if agent == nil {
		Error(w, http.StatusNotFound, "agent not found")
		return
	}

	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxLogLimit {
			limit = n
		}
	}

	logs, err := h.repo.ListExecutionLogs(r.Context(), agentID, limit)
	if err != nil {
		slog.Error("failed to list execution logs", "error", err, "agent_id", agentID)
		Error(w, http.StatusInternalServerError, "failed to list execution logs")
		return
	}
	if logs == nil {
		logs = []*domain.ExecutionLogEntry{}
	}
	JSON(w, http.StatusOK, logs)
}

// Templates returns the static integration catalog.
func (h *AgentHandler) Templates(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, domain.BuiltinTemplates)
}
