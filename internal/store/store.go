// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
)

// Repository defines the interface for persisting Agentverse data.
// Lookups scoped by user return (nil, nil) when no matching record
// exists.
type Repository interface {
	// GetUser retrieves a user by their user ID.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// CreateAgent inserts a new agent record.
	CreateAgent(ctx context.Context, agent *domain.Agent) error

	// GetAgent retrieves one of the user's agents by id.
	GetAgent(ctx context.Context, userID, agentID string) (*domain.Agent, error)

	// ListAgents retrieves all agents owned by the user, newest first.
	ListAgents(ctx context.Context, userID string) ([]*domain.Agent, error)

	// UpdateAgentStatus sets the lifecycle status of an agent.
	UpdateAgentStatus(ctx context.Context, userID, agentID string, status domain.AgentStatus) error

	// UpdateAgentRun persists status and execution counters after a run.
	UpdateAgentRun(ctx context.Context, agent *domain.Agent) error

	// DeleteAgent removes an agent and its execution logs.
	DeleteAgent(ctx context.Context, userID, agentID string) error

	// AppendExecutionLog appends one execution record for an agent.
	AppendExecutionLog(ctx context.Context, entry *domain.ExecutionLogEntry) error

	// ListExecutionLogs returns up to limit execution records for an
	// agent, newest first.
	ListExecutionLogs(ctx context.Context, agentID string, limit int) ([]*domain.ExecutionLogEntry, error)

	// SaveSchedule inserts a study schedule.
	SaveSchedule(ctx context.Context, schedule *domain.StudySchedule) error

	// GetSchedule retrieves one of the user's schedules by id.
	GetSchedule(ctx context.Context, userID, scheduleID string) (*domain.StudySchedule, error)

	// ListSchedules retrieves all schedules owned by the user, newest first.
	ListSchedules(ctx context.Context, userID string) ([]*domain.StudySchedule, error)

	// ToggleScheduleDay flips the completed flag of one schedule day and
	// returns the updated schedule.
	ToggleScheduleDay(ctx context.Context, userID, scheduleID string, day int) (*domain.StudySchedule, error)

	// DueForReminder returns schedules with email notifications enabled
	// that have not been reminded since olderThan.
	DueForReminder(ctx context.Context, olderThan time.Time) ([]*domain.StudySchedule, error)

	// MarkReminded records that a reminder was sent for a schedule.
	MarkReminded(ctx context.Context, scheduleID string, at time.Time) error

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
