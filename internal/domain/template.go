package domain

// Template ids for the built-in integration catalog.
const (
	TemplateEmailAssistant     = "email-assistant"
	TemplateWeatherReporter    = "weather-reporter"
	TemplateNewsSummarizer     = "news-summarizer"
	TemplateTaskReminder       = "task-reminder"
	TemplateSocialMediaManager = "social-media-manager"
	TemplateDataAnalyst        = "data-analyst"
)

// Template describes one entry of the static integration catalog shown
// on the dashboard.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Implemented bool   `json:"implemented"`
}

// BuiltinTemplates is the fixed catalog. Unimplemented entries are
// selectable but their agents report "not yet implemented" on execution.
var BuiltinTemplates = []Template{
	{ID: TemplateEmailAssistant, Name: "Email Assistant", Description: "Sends emails on your behalf", Implemented: true},
	{ID: TemplateWeatherReporter, Name: "Weather Reporter", Description: "Fetches current weather for a city", Implemented: true},
	{ID: TemplateNewsSummarizer, Name: "News Summarizer", Description: "Fetches and summarizes news headlines for a topic", Implemented: true},
	{ID: TemplateTaskReminder, Name: "Task Reminder", Description: "Emails task reminders with optional due dates", Implemented: true},
	{ID: TemplateSocialMediaManager, Name: "Social Media Manager", Description: "Drafts and schedules social media posts", Implemented: false},
	{ID: TemplateDataAnalyst, Name: "Data Analyst", Description: "Analyzes datasets and reports findings", Implemented: false},
}

// TemplateByID looks up a catalog entry, returning nil when the id is
// not part of the catalog.
func TemplateByID(id string) *Template {
	for i := range BuiltinTemplates {
		if BuiltinTemplates[i].ID == id {
			return &BuiltinTemplates[i]
		}
	}
	return nil
}
