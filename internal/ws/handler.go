package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/executor"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/identity"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/metrics"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/unified"
)

const writeTimeout = 10 * time.Second

// Handler upgrades dashboard connections and serves chat frames. Each
// frame is handled independently; there is no per-connection state
// beyond the registry entry.
type Handler struct {
	unified       *unified.Router
	executor      *executor.Executor
	sessions      *SessionManager
	metrics       *metrics.Metrics
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a new WebSocket handler.
func NewHandler(router *unified.Router, exec *executor.Executor, sessions *SessionManager, m *metrics.Metrics, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		unified:       router,
		executor:      exec,
		sessions:      sessions,
		metrics:       m,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// frame is the inbound message structure. Fields beyond Type are
// populated per message type.
type frame struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	AgentID string          `json:"agentId,omitempty"`
	Params  executor.Params `json:"params,omitempty"`
}

type unifiedResponse struct {
	Type string `json:"type"`
	*unified.Reply
}

type agentResponse struct {
	Type    string         `json:"type"`
	AgentID string         `json:"agentId"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept websocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.sessions.Register(userID, sessionID, conn)
	defer h.sessions.Unregister(userID, sessionID, conn)
	h.metrics.WSConnections.Inc()
	defer h.metrics.WSConnections.Dec()

	slog.Info("websocket connected", "user_id", userID, "session_id", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.readLoop(ctx, conn, userID)
	slog.Info("websocket disconnected", "user_id", userID, "session_id", sessionID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("websocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

// readLoop handles frames until the connection drops. Frames are
// processed one at a time; a slow provider call backpressures the
// client instead of piling up goroutines.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, userID string) {
	for {
		_, raw, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("websocket closed by client", "user_id", userID)
			} else if ctx.Err() == nil {
				slog.Warn("websocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var msg frame
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.writeError(ctx, conn, "malformed frame")
			continue
		}

		switch msg.Type {
		case "unified_chat":
			h.handleUnifiedChat(ctx, conn, msg)
		case "agent_chat":
			h.handleAgentChat(ctx, conn, userID, msg)
		case "ping":
			h.writeFrame(ctx, conn, map[string]string{"type": "pong"})
		default:
			h.writeError(ctx, conn, "unknown message type")
		}
	}
}

func (h *Handler) handleUnifiedChat(ctx context.Context, conn *websocket.Conn, msg frame) {
	if strings.TrimSpace(msg.Message) == "" {
		h.writeError(ctx, conn, "message is required")
		return
	}
	reply := h.unified.HandleMessage(ctx, msg.Message)
	h.writeFrame(ctx, conn, unifiedResponse{Type: "unified_response", Reply: reply})
}

func (h *Handler) handleAgentChat(ctx context.Context, conn *websocket.Conn, userID string, msg frame) {
	if msg.AgentID == "" {
		h.writeError(ctx, conn, "agentId is required")
		return
	}
	result := h.executor.Execute(ctx, userID, msg.AgentID, msg.Params)
	h.writeFrame(ctx, conn, agentResponse{
		Type:    "agent_response",
		AgentID: msg.AgentID,
		Success: result.Success,
		Message: result.Message,
		Data:    result.Data,
	})
}

func (h *Handler) writeError(ctx context.Context, conn *websocket.Conn, message string) {
	h.writeFrame(ctx, conn, map[string]string{"type": "error", "error": message})
}

func (h *Handler) writeFrame(ctx context.Context, conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal frame", "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		slog.Debug("websocket write error", "error", err)
	}
}
