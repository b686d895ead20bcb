package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/metrics"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/sandbox"
)

// CodeHandler handles code execution endpoints.
type CodeHandler struct {
	*Handler
	runner  sandbox.Runner
	metrics *metrics.Metrics
}

// NewCodeHandler creates a new code execution handler.
func NewCodeHandler(base *Handler, runner sandbox.Runner, m *metrics.Metrics) *CodeHandler {
	return &CodeHandler{Handler: base, runner: runner, metrics: m}
}

// RegisterRoutes registers code execution routes on the /api router.
func (h *CodeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/code/execute", h.Execute)
	r.Get("/code/runtimes", h.Runtimes)
}

type executeCodeRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Stdin    string `json:"stdin"`
}

type executeCodeResponse struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitCode   int    `json:"exitCode"`
	DurationMS int64  `json:"durationMs"`
	TimedOut   bool   `json:"timedOut"`
	Truncated  bool   `json:"truncated"`
}

// Execute runs a code snippet in the sandbox and returns its output.
func (h *CodeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req executeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		Error(w, http.StatusBadRequest, "code is required")
		return
	}

	result, err := h.runner.Run(r.Context(), sandbox.Request{
		Language: req.Language,
		Code:     req.Code,
		Stdin:    req.Stdin,
	})
	if err != nil {
		if errors.Is(err, sandbox.ErrUnsupportedLanguage) {
			Error(w, http.StatusBadRequest, "unsupported language")
			return
		}
		slog.Error("code execution failed", "error", err, "language", req.Language, "user_id", userID)
		h.metrics.RecordCodeRun(req.Language, "error")
		Error(w, http.StatusInternalServerError, "code execution failed")
		return
	}

	outcome := "success"
	switch {
	case result.TimedOut:
		outcome = "timeout"
	case result.ExitCode != 0:
		outcome = "failure"
	}
	h.metrics.RecordCodeRun(req.Language, outcome)
	slog.Info("code executed", "language", req.Language, "exit_code", result.ExitCode,
		"duration_ms", result.Duration.Milliseconds(), "timed_out", result.TimedOut)

	JSON(w, http.StatusOK, executeCodeResponse{
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		ExitCode:   result.ExitCode,
		DurationMS: result.Duration.Milliseconds(),
		TimedOut:   result.TimedOut,
		Truncated:  result.Truncated,
	})
}

// Runtimes lists the supported languages and whether each interpreter
// is available on this host.
func (h *CodeHandler) Runtimes(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.runner.Runtimes())
}
