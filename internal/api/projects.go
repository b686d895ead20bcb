package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/generator"
)

// ProjectHandler handles project generation and archive downloads.
type ProjectHandler struct {
	*Handler
	generator *generator.Generator
	cache     *generator.Cache
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(base *Handler, g *generator.Generator, cache *generator.Cache) *ProjectHandler {
	return &ProjectHandler{Handler: base, generator: g, cache: cache}
}

// RegisterRoutes registers project routes on the /api router.
func (h *ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Post("/projects/generate", h.Generate)
	r.Get("/projects/{id}/download", h.Download)
}

type generateProjectRequest struct {
	Description string `json:"description"`
}

// Generate builds a project scaffold from a natural language
// description. Unusable model output falls back to a static starter,
// so this endpoint always returns a project.
func (h *ProjectHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req generateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		Error(w, http.StatusBadRequest, "description is required")
		return
	}

	project := h.generator.Generate(r.Context(), req.Description)
	JSON(w, http.StatusOK, project)
}

// Download streams a previously generated project as a ZIP archive.
func (h *ProjectHandler) Download(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	id := chi.URLParam(r, "id")

	project, ok := h.cache.Get(id)
	if !ok {
		Error(w, http.StatusNotFound, "project not found or expired")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveFilename(project.Name)))
	w.WriteHeader(http.StatusOK)
	if err := generator.WriteArchive(w, project); err != nil {
		// Headers are already out; all we can do is log.
		slog.Error("failed to write project archive", "error", err, "project_id", id)
	}
}

// archiveFilename turns a project name into a safe attachment name.
func archiveFilename(name string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(name))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "project"
	}
	return slug + ".zip"
}
