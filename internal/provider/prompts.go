package provider

import (
	"fmt"
	"strings"
)

const quizSystemPrompt = `You are a quiz generator. Reply with a single JSON object and nothing else.
The object must have this shape:
{"topic": string, "questions": [{"question": string, "options": [4 strings], "answer": string, "explanation": string}]}
The answer must be one of the options verbatim.`

const scheduleSystemPrompt = `You are a study planner. Reply with a single JSON object and nothing else.
The object must have this shape:
{"topic": string, "totalDuration": string, "estimatedHoursPerDay": number, "schedule": [{"day": number, "title": string, "duration": string, "topics": [strings], "description": string, "completed": false}], "tips": [strings]}
Day numbers start at 1 and increase without gaps.`

func buildQuizPrompt(topic string, numQuestions int, difficulty string) string {
	return fmt.Sprintf("Create a %s difficulty quiz with %d questions about: %s", difficulty, numQuestions, topic)
}

func buildSchedulePrompt(topic string, days int, hoursPerDay float64) string {
	return fmt.Sprintf("Create a study schedule for learning %s over %d days at about %.1f hours per day.", topic, days, hoursPerDay)
}

// StripCodeFence removes a surrounding Markdown code fence, with or
// without a language tag. Models often wrap JSON replies this way even
// when told not to.
func StripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}

	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	} else {
		// Single-line fence like ```{"a":1}```
		return strings.TrimSpace(strings.TrimSuffix(t, "```"))
	}
	if i := strings.LastIndex(t, "```"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
