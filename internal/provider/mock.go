package provider

import (
	"context"
	"strings"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
)

// Mock is the zero-configuration backend. Responses are deterministic
// and keyed off the request so demo deployments stay fully usable:
// quiz and schedule prompts get well-formed JSON, everything else gets
// canned assistant text.
type Mock struct{}

var _ Provider = (*Mock)(nil)

// Name identifies the backend.
func (m *Mock) Name() string {
	return "mock"
}

// CreateChatCompletion returns the canned reply for the messages.
func (m *Mock) CreateChatCompletion(_ context.Context, messages []domain.Message) (string, error) {
	return m.respond(messages), nil
}

func (m *Mock) respond(messages []domain.Message) string {
	prompt := strings.ToLower(lastUserMessage(messages))

	switch {
	case strings.Contains(prompt, "quiz"):
		return mockQuizJSON
	case strings.Contains(prompt, "study schedule") || strings.Contains(prompt, "study plan"):
		return mockScheduleJSON
	case strings.Contains(prompt, "code") || strings.Contains(prompt, "debug"):
		return "Here is a quick take on your coding question. Break the problem into " +
			"small functions, add a failing test first, and read the error message " +
			"top to bottom. (Demo mode: configure a provider API key for real answers.)"
	case strings.Contains(prompt, "book") || strings.Contains(prompt, "travel"):
		return "I can help plan that trip. Compare at least three options, book " +
			"refundable fares where possible, and double-check dates before paying. " +
			"(Demo mode: configure a provider API key for real answers.)"
	default:
		return "Thanks for your message. I am running in demo mode without a " +
			"provider API key, so this is a canned reply. Set GROQ_API_KEY, " +
			"OPENAI_API_KEY, or GEMINI_API_KEY to enable live responses."
	}
}

func lastUserMessage(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

const mockQuizJSON = `{
  "topic": "General Knowledge",
  "questions": [
    {
      "question": "Which planet is known as the Red Planet?",
      "options": ["Venus", "Mars", "Jupiter", "Saturn"],
      "answer": "Mars",
      "explanation": "Iron oxide dust gives Mars its reddish color."
    },
    {
      "question": "What does HTTP stand for?",
      "options": ["HyperText Transfer Protocol", "High Throughput Transport Protocol", "Hyperlink Text Program", "Host Transfer Text Protocol"],
      "answer": "HyperText Transfer Protocol",
      "explanation": "HTTP is the protocol the web is built on."
    },
    {
      "question": "Which data structure uses first-in, first-out ordering?",
      "options": ["Stack", "Queue", "Tree", "Graph"],
      "answer": "Queue",
      "explanation": "Queues process elements in arrival order."
    }
  ]
}`

const mockScheduleJSON = `{
  "topic": "General Study",
  "totalDuration": "3 days",
  "estimatedHoursPerDay": 2,
  "schedule": [
    {
      "day": 1,
      "title": "Foundations",
      "duration": "2 hours",
      "topics": ["Core concepts", "Vocabulary"],
      "description": "Read an overview and write down the ten most important terms.",
      "completed": false
    },
    {
      "day": 2,
      "title": "Practice",
      "duration": "2 hours",
      "topics": ["Worked examples", "Exercises"],
      "description": "Work through examples, then solve exercises without notes.",
      "completed": false
    },
    {
      "day": 3,
      "title": "Review",
      "duration": "2 hours",
      "topics": ["Self-test", "Weak spots"],
      "description": "Quiz yourself and revisit anything you missed.",
      "completed": false
    }
  ],
  "tips": ["Study at the same time each day", "Explain concepts out loud"]
}`
