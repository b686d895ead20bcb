// Package integration holds the outbound HTTP clients used by agent
// templates: email delivery, weather conditions, and news headlines.
// Every client runs in demo mode when its API key is absent, returning
// simulated results instead of failing.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

const resendBaseURL = "https://api.resend.com"

// Mailer sends email through the Resend HTTP API.
type Mailer struct {
	apiKey     string
	from       string
	baseURL    string
	httpClient *http.Client
}

// NewMailer creates a mailer. An empty apiKey selects demo mode.
func NewMailer(apiKey, from string, httpClient *http.Client) *Mailer {
	return &Mailer{
		apiKey:     apiKey,
		from:       from,
		baseURL:    resendBaseURL,
		httpClient: httpClient,
	}
}

// Demo reports whether the mailer only simulates delivery.
func (m *Mailer) Demo() bool {
	return m.apiKey == ""
}

// SendReceipt confirms an accepted email.
type SendReceipt struct {
	ID        string `json:"id"`
	Simulated bool   `json:"simulated,omitempty"`
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type sendEmailResponse struct {
	ID string `json:"id"`
}

// Send delivers one plain-text email.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) (*SendReceipt, error) {
	if m.Demo() {
		slog.Info("mailer in demo mode, simulating delivery", "to", to, "subject", subject)
		return &SendReceipt{ID: "demo-" + uuid.NewString(), Simulated: true}, nil
	}

	payload, err := json.Marshal(sendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send email request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("read email response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("email API returned status %d: %s", resp.StatusCode, data)
	}

	var out sendEmailResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode email response: %w", err)
	}

	return &SendReceipt{ID: out.ID}, nil
}
