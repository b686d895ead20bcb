// Package unified implements the single chat entry point of the
// dashboard. Messages are either delegated to the project generator or
// classified by keyword into specializations that shape one provider
// call.
package unified

import (
	"context"
	"fmt"
	"strings"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/provider"
)

// Chatter produces chat completions.
type Chatter interface {
	Chat(ctx context.Context, messages []domain.Message) *provider.Result
}

// ProjectGenerator builds project scaffolds from free-form descriptions.
type ProjectGenerator interface {
	Generate(ctx context.Context, description string) *domain.GeneratedProject
}

// Reply is the routed answer for one unified chat message.
type Reply struct {
	Response   string                   `json:"response"`
	AgentsUsed []string                 `json:"agentsUsed"`
	Provider   string                   `json:"provider,omitempty"`
	Degraded   bool                     `json:"degraded,omitempty"`
	ProjectID  string                   `json:"projectId,omitempty"`
	Project    *domain.GeneratedProject `json:"projectData,omitempty"`
}

// Router routes unified chat messages.
type Router struct {
	chat      Chatter
	generator ProjectGenerator
}

// New creates a router.
func New(chat Chatter, generator ProjectGenerator) *Router {
	return &Router{chat: chat, generator: generator}
}

// specialization is one keyword-matched assistant persona.
type specialization struct {
	name     string
	keywords []string
	prompt   string
}

var specializations = []specialization{
	{
		name:     "Learning Assistant",
		keywords: []string{"learn", "teach", "study", "explain", "quiz", "course", "tutorial", "homework"},
		prompt:   "You are a patient learning assistant. Explain concepts clearly and use short examples.",
	},
	{
		name:     "Booking Assistant",
		keywords: []string{"book", "flight", "hotel", "reservation", "trip", "travel", "ticket"},
		prompt:   "You are a travel and booking assistant. Help compare options, dates, and prices.",
	},
	{
		name:     "Code Assistant",
		keywords: []string{"code", "debug", "program", "function", "script", "compile", "bug"},
		prompt:   "You are a coding assistant. Give working snippets and point out common pitfalls.",
	},
}

const generalPrompt = "You are a helpful general assistant."

const formatInstructions = "Structure the answer as: a one-line summary, two or three key points, " +
	"and a recommended next action. Keep it under 120 words."

// projectTriggers are matched as literal substrings of the lowercased
// message. Any hit routes the whole message to the project generator.
var projectTriggers = []string{
	"create a project",
	"build a project",
	"generate a project",
	"make a project",
	"create an app",
	"build an app",
	"create a website",
	"build a website",
}

func wantsProject(text string) bool {
	lower := strings.ToLower(text)
	for _, trigger := range projectTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// classify returns every specialization whose keywords appear in the
// message. Matches are not exclusive; zero, one, or several may hit.
func classify(text string) []specialization {
	lower := strings.ToLower(text)
	var matched []specialization
	for _, spec := range specializations {
		for _, keyword := range spec.keywords {
			if strings.Contains(lower, keyword) {
				matched = append(matched, spec)
				break
			}
		}
	}
	return matched
}

// HandleMessage routes one chat message and returns the reply.
func (r *Router) HandleMessage(ctx context.Context, text string) *Reply {
	if wantsProject(text) {
		project := r.generator.Generate(ctx, text)

		var sb strings.Builder
		fmt.Fprintf(&sb, "I generated the %q project with %d files:\n", project.Name, len(project.Files))
		for _, file := range project.Files {
			fmt.Fprintf(&sb, "  - %s\n", file.Path)
		}
		sb.WriteString("Use the download button to grab it as a ZIP archive.")

		return &Reply{
			Response:   sb.String(),
			AgentsUsed: []string{"Project Generator"},
			ProjectID:  project.ID,
			Project:    project,
		}
	}

	matched := classify(text)
	names := make([]string, 0, len(matched))
	prompts := make([]string, 0, len(matched))
	for _, spec := range matched {
		names = append(names, spec.name)
		prompts = append(prompts, spec.prompt)
	}
	if len(matched) == 0 {
		names = append(names, "General Assistant")
		prompts = append(prompts, generalPrompt)
	}

	system := strings.Join(prompts, " ") + " " + formatInstructions
	result := r.chat.Chat(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: text},
	})

	return &Reply{
		Response:   result.Content,
		AgentsUsed: names,
		Provider:   result.Provider,
		Degraded:   result.Degraded,
	}
}
