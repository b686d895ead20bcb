package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/integration"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/provider"
)

// MailSender delivers email for the email and reminder actions.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) (*integration.SendReceipt, error)
}

// WeatherSource fetches current conditions for the weather action.
type WeatherSource interface {
	Current(ctx context.Context, city string) (*integration.WeatherReport, error)
}

// HeadlineSource fetches articles for the news action.
type HeadlineSource interface {
	Headlines(ctx context.Context, topic string, limit int) ([]integration.Article, error)
}

// Chatter produces chat completions for actions that summarize.
type Chatter interface {
	Chat(ctx context.Context, messages []domain.Message) *provider.Result
}

// EmailAction sends an email with the given to, subject, and body.
type EmailAction struct {
	mailer MailSender
}

var _ Action = (*EmailAction)(nil)

// NewEmailAction creates the email-assistant action.
func NewEmailAction(mailer MailSender) *EmailAction {
	return &EmailAction{mailer: mailer}
}

func (a *EmailAction) TemplateID() string {
	return domain.TemplateEmailAssistant
}

func (a *EmailAction) Execute(ctx context.Context, params Params) (*Result, error) {
	if missing := missingParams(params, "to", "subject", "body"); len(missing) > 0 {
		return missingParamsResult(missing), nil
	}

	receipt, err := a.mailer.Send(ctx, params["to"], params["subject"], params["body"])
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}

	message := fmt.Sprintf("Email sent to %s", params["to"])
	if receipt.Simulated {
		message += " (simulated)"
	}
	return &Result{
		Success: true,
		Message: message,
		Data: map[string]any{
			"to":        params["to"],
			"subject":   params["subject"],
			"emailId":   receipt.ID,
			"simulated": receipt.Simulated,
		},
	}, nil
}

// WeatherAction reports current conditions for a city.
type WeatherAction struct {
	weather WeatherSource
}

var _ Action = (*WeatherAction)(nil)

// NewWeatherAction creates the weather-reporter action.
func NewWeatherAction(weather WeatherSource) *WeatherAction {
	return &WeatherAction{weather: weather}
}

func (a *WeatherAction) TemplateID() string {
	return domain.TemplateWeatherReporter
}

func (a *WeatherAction) Execute(ctx context.Context, params Params) (*Result, error) {
	if missing := missingParams(params, "city"); len(missing) > 0 {
		return missingParamsResult(missing), nil
	}

	report, err := a.weather.Current(ctx, params["city"])
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}

	message := fmt.Sprintf("Current weather in %s: %s, %.1f°C (feels like %.1f°C), humidity %d%%",
		report.City, report.Description, report.TempC, report.FeelsLikeC, report.Humidity)
	if report.Simulated {
		message += " (simulated)"
	}
	return &Result{
		Success: true,
		Message: message,
		Data: map[string]any{
			"city":        report.City,
			"description": report.Description,
			"tempC":       report.TempC,
			"feelsLikeC":  report.FeelsLikeC,
			"humidity":    report.Humidity,
			"windSpeed":   report.WindSpeed,
			"simulated":   report.Simulated,
		},
	}, nil
}

// NewsAction fetches headlines for a topic and summarizes them through
// the provider adapter.
type NewsAction struct {
	news HeadlineSource
	chat Chatter
}

var _ Action = (*NewsAction)(nil)

// NewNewsAction creates the news-summarizer action.
func NewNewsAction(news HeadlineSource, chat Chatter) *NewsAction {
	return &NewsAction{news: news, chat: chat}
}

func (a *NewsAction) TemplateID() string {
	return domain.TemplateNewsSummarizer
}

const newsSummaryLimit = 5

func (a *NewsAction) Execute(ctx context.Context, params Params) (*Result, error) {
	if missing := missingParams(params, "topic"); len(missing) > 0 {
		return missingParamsResult(missing), nil
	}

	articles, err := a.news.Headlines(ctx, params["topic"], newsSummaryLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}
	if len(articles) == 0 {
		return &Result{
			Success: false,
			Message: fmt.Sprintf("No recent articles found for %q", params["topic"]),
		}, nil
	}

	var sb strings.Builder
	for i, article := range articles {
		fmt.Fprintf(&sb, "%d. %s (%s)", i+1, article.Title, article.Source)
		if article.Description != "" {
			fmt.Fprintf(&sb, " - %s", article.Description)
		}
		sb.WriteString("\n")
	}

	summary := a.chat.Chat(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: "Summarize these news headlines in under 100 words. Plain text, no preamble."},
		{Role: domain.RoleUser, Content: fmt.Sprintf("Headlines about %s:\n%s", params["topic"], sb.String())},
	})

	return &Result{
		Success: true,
		Message: summary.Content,
		Data: map[string]any{
			"topic":    params["topic"],
			"count":    len(articles),
			"articles": articles,
			"provider": summary.Provider,
		},
	}, nil
}

// ReminderAction emails a task reminder, optionally with a due date.
type ReminderAction struct {
	mailer MailSender
}

var _ Action = (*ReminderAction)(nil)

// NewReminderAction creates the task-reminder action.
func NewReminderAction(mailer MailSender) *ReminderAction {
	return &ReminderAction{mailer: mailer}
}

func (a *ReminderAction) TemplateID() string {
	return domain.TemplateTaskReminder
}

func (a *ReminderAction) Execute(ctx context.Context, params Params) (*Result, error) {
	if missing := missingParams(params, "to", "task"); len(missing) > 0 {
		return missingParamsResult(missing), nil
	}

	subject := "Reminder: " + params["task"]
	body := fmt.Sprintf("This is your reminder for: %s", params["task"])
	if due := strings.TrimSpace(params["dueDate"]); due != "" {
		body += fmt.Sprintf("\nDue: %s", due)
	}

	receipt, err := a.mailer.Send(ctx, params["to"], subject, body)
	if err != nil {
		return nil, fmt.Errorf("send reminder: %w", err)
	}

	message := fmt.Sprintf("Reminder sent to %s for task %q", params["to"], params["task"])
	if receipt.Simulated {
		message += " (simulated)"
	}
	return &Result{
		Success: true,
		Message: message,
		Data: map[string]any{
			"to":        params["to"],
			"task":      params["task"],
			"dueDate":   params["dueDate"],
			"emailId":   receipt.ID,
			"simulated": receipt.Simulated,
		},
	}, nil
}

// StubAction stands in for catalog templates that are not built yet.
// It always fails with a "not yet implemented" message.
type StubAction struct {
	templateID string
	name       string
}

var _ Action = (*StubAction)(nil)

// NewStubAction creates a placeholder action for a catalog template.
func NewStubAction(templateID, name string) *StubAction {
	return &StubAction{templateID: templateID, name: name}
}

func (a *StubAction) TemplateID() string {
	return a.templateID
}

func (a *StubAction) Execute(context.Context, Params) (*Result, error) {
	return &Result{
		Success: false,
		Message: fmt.Sprintf("The %s integration is not yet implemented", a.name),
	}, nil
}
