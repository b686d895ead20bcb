// Package provider selects and wraps the LLM backend used for chat,
// quiz, schedule, and project generation. With no credentials configured
// the mock backend serves deterministic responses, and any upstream
// failure degrades to the mock instead of surfacing an error.
package provider

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/config"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/metrics"
)

// Provider generates one chat completion for a conversation.
type Provider interface {
	// Name identifies the backend ("groq", "openai", "gemini", "mock").
	Name() string

	// CreateChatCompletion returns the assistant reply for the messages.
	CreateChatCompletion(ctx context.Context, messages []domain.Message) (string, error)
}

// Result is a completed provider call. Degraded is set when the
// configured backend failed and the mock answered instead.
type Result struct {
	Content  string `json:"content"`
	Provider string `json:"provider"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Adapter routes requests to the configured provider and absorbs its
// failures. Callers never see an error; a failed upstream call is
// answered by the mock with Degraded set, a warn log, and a fallback
// metric increment.
type Adapter struct {
	primary Provider // nil when no credentials are configured
	mock    *Mock
	metrics *metrics.Metrics
}

// Credential priority is fixed: Groq, then OpenAI, then Gemini. All
// three speak the OpenAI chat completions protocol.
const (
	groqBaseURL = "https://api.groq.com/openai/v1"
	groqModel   = "llama-3.3-70b-versatile"

	openAIBaseURL = "https://api.openai.com/v1"
	openAIModel   = "gpt-4o-mini"

	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	geminiModel   = "gemini-2.0-flash"
)

// New selects the provider from configured credentials.
func New(cfg config.ProviderConfig, m *metrics.Metrics) *Adapter {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	var primary Provider
	switch {
	case cfg.GroqAPIKey != "":
		primary = NewOpenAICompatible("groq", groqBaseURL, groqModel, cfg.GroqAPIKey, httpClient)
	case cfg.OpenAIAPIKey != "":
		primary = NewOpenAICompatible("openai", openAIBaseURL, openAIModel, cfg.OpenAIAPIKey, httpClient)
	case cfg.GeminiAPIKey != "":
		primary = NewOpenAICompatible("gemini", geminiBaseURL, geminiModel, cfg.GeminiAPIKey, httpClient)
	}

	adapter := &Adapter{primary: primary, mock: &Mock{}, metrics: m}
	slog.Info("provider selected", "provider", adapter.Name())
	return adapter
}

// Name returns the active provider name.
func (a *Adapter) Name() string {
	if a.primary == nil {
		return a.mock.Name()
	}
	return a.primary.Name()
}

// Chat sends the conversation to the active provider.
func (a *Adapter) Chat(ctx context.Context, messages []domain.Message) *Result {
	if a.primary == nil {
		return &Result{Content: a.mock.respond(messages), Provider: a.mock.Name()}
	}

	start := time.Now()
	content, err := a.primary.CreateChatCompletion(ctx, messages)
	a.metrics.RecordProviderRequest(a.primary.Name(), err == nil, time.Since(start).Seconds())
	if err != nil {
		slog.Warn("provider request failed, answering with mock",
			"provider", a.primary.Name(),
			"error", err)
		a.metrics.RecordFallback(a.primary.Name(), fallbackReason(err))
		return &Result{Content: a.mock.respond(messages), Provider: a.mock.Name(), Degraded: true}
	}

	return &Result{Content: content, Provider: a.primary.Name()}
}

// GenerateQuiz asks for a quiz as a JSON document and returns the reply
// with Markdown fences stripped. Parsing is left to the caller.
func (a *Adapter) GenerateQuiz(ctx context.Context, topic string, numQuestions int, difficulty string) *Result {
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: quizSystemPrompt},
		{Role: domain.RoleUser, Content: buildQuizPrompt(topic, numQuestions, difficulty)},
	}
	res := a.Chat(ctx, messages)
	res.Content = StripCodeFence(res.Content)
	return res
}

// GenerateSchedule asks for a study schedule as a JSON document and
// returns the reply with Markdown fences stripped.
func (a *Adapter) GenerateSchedule(ctx context.Context, topic string, days int, hoursPerDay float64) *Result {
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: scheduleSystemPrompt},
		{Role: domain.RoleUser, Content: buildSchedulePrompt(topic, days, hoursPerDay)},
	}
	res := a.Chat(ctx, messages)
	res.Content = StripCodeFence(res.Content)
	return res
}

func fallbackReason(err error) string {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return "upstream_status"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "network"
	}
}
