package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
)

// OpenAICompatible calls any backend speaking the OpenAI chat
// completions protocol. Groq and Gemini both expose compatible
// endpoints under their own base URLs.
type OpenAICompatible struct {
	name       string
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ Provider = (*OpenAICompatible)(nil)

// NewOpenAICompatible creates a provider for an OpenAI-compatible API.
func NewOpenAICompatible(name, baseURL, model, apiKey string, httpClient *http.Client) *OpenAICompatible {
	return &OpenAICompatible{
		name:       name,
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Name identifies the backend.
func (p *OpenAICompatible) Name() string {
	return p.name
}

type chatCompletionRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      domain.Message `json:"message"`
		FinishReason string         `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// StatusError reports a non-2xx response from the upstream API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Code, e.Body)
}

// CreateChatCompletion returns the assistant reply for the messages.
func (p *OpenAICompatible) CreateChatCompletion(ctx context.Context, messages []domain.Message) (string, error) {
	payload := chatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send chat request: %w", err)
	}
	defer resp.Body.Close()

	// Error bodies are short; bound the read anyway.
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: truncateBody(data)}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("upstream error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

func truncateBody(data []byte) string {
	const max = 512
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
