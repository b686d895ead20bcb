package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/unified"
)

// ChatHandler handles the unified chat endpoint.
type ChatHandler struct {
	*Handler
	router *unified.Router
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(base *Handler, router *unified.Router) *ChatHandler {
	return &ChatHandler{Handler: base, router: router}
}

// RegisterRoutes registers chat routes on the /api router.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/unified", h.Unified)
}

type unifiedChatRequest struct {
	Message string `json:"message"`
}

// Unified routes one chat message through the keyword router and
// returns the routed reply.
func (h *ChatHandler) Unified(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req unifiedChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	JSON(w, http.StatusOK, h.router.HandleMessage(r.Context(), req.Message))
}
