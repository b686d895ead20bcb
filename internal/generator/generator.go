// Package generator turns free-form descriptions into downloadable
// project scaffolds. The provider is asked for a JSON project document;
// anything unusable falls back to a fixed static scaffold, so
// generation never fails.
package generator

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/metrics"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/provider"
)

// Chatter produces chat completions.
type Chatter interface {
	Chat(ctx context.Context, messages []domain.Message) *provider.Result
}

// Generator builds project scaffolds.
type Generator struct {
	chat    Chatter
	cache   *Cache
	metrics *metrics.Metrics
}

// New creates a generator that stores every result in cache so it can
// be downloaded later.
func New(chat Chatter, cache *Cache, m *metrics.Metrics) *Generator {
	return &Generator{chat: chat, cache: cache, metrics: m}
}

const projectSystemPrompt = `You are a project scaffolding tool. Reply with a single JSON object and nothing else:
{"name": string, "description": string, "files": [{"path": string, "content": string}], "instructions": string}
Generate a small, working starter project. Keep file contents complete and self-contained.`

type projectDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Files       []struct {
		Path     string `json:"path"`
		Content  string `json:"content"`
		Language string `json:"language"`
	} `json:"files"`
	Instructions string `json:"instructions"`
}

// Generate builds a project for the description and caches it for
// download. The result always has an id, a name, and at least one file.
func (g *Generator) Generate(ctx context.Context, description string) *domain.GeneratedProject {
	res := g.chat.Chat(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: projectSystemPrompt},
		{Role: domain.RoleUser, Content: "Generate a project for: " + description},
	})

	project, ok := parseProject(res.Content)
	if !ok {
		slog.Info("project output not usable, using fallback scaffold", "provider", res.Provider)
		g.metrics.RecordProject("fallback")
		project = fallbackProject(description)
	} else {
		g.metrics.RecordProject("model")
	}

	project.ID = uuid.NewString()
	project.CreatedAt = time.Now()
	g.cache.Put(project)
	return project
}

// parseProject decodes the provider output into a project. It tolerates
// fences and surrounding prose but insists on a name and at least one
// file with a path.
func parseProject(content string) (*domain.GeneratedProject, bool) {
	text := extractJSONObject(provider.StripCodeFence(content))
	if text == "" {
		return nil, false
	}

	var doc projectDoc
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, false
	}
	if strings.TrimSpace(doc.Name) == "" || len(doc.Files) == 0 {
		return nil, false
	}

	project := &domain.GeneratedProject{
		Name:         strings.TrimSpace(doc.Name),
		Description:  doc.Description,
		Instructions: doc.Instructions,
	}
	for _, f := range doc.Files {
		if strings.TrimSpace(f.Path) == "" {
			return nil, false
		}
		language := f.Language
		if language == "" {
			language = languageForPath(f.Path)
		}
		project.Files = append(project.Files, domain.ProjectFile{
			Path:     f.Path,
			Content:  f.Content,
			Language: language,
		})
	}

	return project, true
}

// extractJSONObject returns the first top-level {...} span of the text,
// or "" when the text contains no object.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

var extensionLanguages = map[string]string{
	".html": "html",
	".htm":  "html",
	".css":  "css",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".json": "json",
	".md":   "markdown",
	".py":   "python",
	".go":   "go",
	".rb":   "ruby",
	".sh":   "bash",
	".sql":  "sql",
	".yml":  "yaml",
	".yaml": "yaml",
}

// languageForPath maps a file extension to a display language,
// defaulting to "text".
func languageForPath(path string) string {
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 {
		return "text"
	}
	if language, ok := extensionLanguages[strings.ToLower(path[dot:])]; ok {
		return language
	}
	return "text"
}
