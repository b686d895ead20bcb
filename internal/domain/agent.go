// Package domain contains core domain types for the Agentverse application.
package domain

import (
	"math"
	"time"
)

// AgentStatus is the lifecycle state of an agent record.
type AgentStatus string

const (
	AgentStatusActive    AgentStatus = "active"
	AgentStatusIdle      AgentStatus = "idle"
	AgentStatusExecuting AgentStatus = "executing"
	AgentStatusError     AgentStatus = "error"
)

// Agent represents a user-created agent instance, optionally bound to an
// integration template.
type Agent struct {
	ID             string      `json:"id"`
	UserID         string      `json:"-"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	TemplateID     string      `json:"templateId,omitempty"`
	Status         AgentStatus `json:"status"`
	TasksCompleted int         `json:"tasksCompleted"`
	SuccessRate    int         `json:"successRate"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// ApplyRun folds one execution outcome into the agent's counters.
// The success rate is a running average over all completed tasks,
// rounded to the nearest whole percent.
func (a *Agent) ApplyRun(success bool) {
	score := 0.0
	if success {
		score = 100.0
	}
	prev := float64(a.SuccessRate) * float64(a.TasksCompleted)
	a.TasksCompleted++
	a.SuccessRate = int(math.Round((prev + score) / float64(a.TasksCompleted)))
	if success {
		a.Status = AgentStatusIdle
	} else {
		a.Status = AgentStatusError
	}
}

// ExecutionLogEntry is one appended record of an agent execution attempt.
type ExecutionLogEntry struct {
	ID        int64          `json:"id"`
	AgentID   string         `json:"agentId"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Result    map[string]any `json:"result,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

const (
	LogStatusSuccess = "success"
	LogStatusError   = "error"
)
