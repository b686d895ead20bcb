package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db         *sql.DB
	scheduleMu sync.Mutex // Mutex for schedule read-modify-write to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agents (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		template_id TEXT,
		status TEXT NOT NULL,
		tasks_completed INTEGER NOT NULL DEFAULT 0,
		success_rate INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_agents_user ON agents(user_id, created_at);

	CREATE TABLE IF NOT EXISTS execution_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		agent_id TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT NOT NULL,
		result_json TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_execution_logs_agent ON execution_logs(agent_id, id);

	CREATE TABLE IF NOT EXISTS study_schedules (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		total_duration TEXT NOT NULL,
		hours_per_day REAL NOT NULL,
		days_json TEXT NOT NULL,
		tips_json TEXT,
		student_email TEXT,
		notifications_enabled INTEGER NOT NULL DEFAULT 0,
		last_reminded_at INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedules_user ON study_schedules(user_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// GetUser retrieves a user by their user ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT user_id, username, last_seen_at, created_at FROM users WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var user domain.User
	var lastSeen, createdAt int64

	err := row.Scan(&user.UserID, &user.Username, &lastSeen, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.LastSeenAt = time.Unix(lastSeen, 0)
	user.CreatedAt = time.Unix(createdAt, 0)

	return &user, nil
}

// UpsertUser creates or updates a user record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (user_id, username, last_seen_at, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		username = excluded.username,
		last_seen_at = excluded.last_seen_at`

	_, err := s.db.ExecContext(ctx, query,
		user.UserID, user.Username, user.LastSeenAt.Unix(), user.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// UpdateLastSeen updates the last_seen_at timestamp for a user.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error {
	query := `UPDATE users SET last_seen_at = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), userID)
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateLastSeen affected 0 rows", "user_id", userID)
	}

	return nil
}

// CreateAgent inserts a new agent record.
func (s *SQLiteStore) CreateAgent(ctx context.Context, agent *domain.Agent) error {
	query := `
	INSERT INTO agents (id, user_id, name, description, template_id, status, tasks_completed, success_rate, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var templateID interface{}
	if agent.TemplateID != "" {
		templateID = agent.TemplateID
	}

	_, err := s.db.ExecContext(ctx, query,
		agent.ID, agent.UserID, agent.Name, agent.Description, templateID,
		string(agent.Status), agent.TasksCompleted, agent.SuccessRate,
		agent.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*domain.Agent, error) {
	var agent domain.Agent
	var templateID sql.NullString
	var status string
	var createdAt int64

	err := row.Scan(
		&agent.ID, &agent.UserID, &agent.Name, &agent.Description,
		&templateID, &status, &agent.TasksCompleted, &agent.SuccessRate,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	agent.TemplateID = templateID.String
	agent.Status = domain.AgentStatus(status)
	agent.CreatedAt = time.Unix(createdAt, 0)

	return &agent, nil
}

const agentColumns = `id, user_id, name, description, template_id, status, tasks_completed, success_rate, created_at`

// GetAgent retrieves one of the user's agents by id.
func (s *SQLiteStore) GetAgent(ctx context.Context, userID, agentID string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id = ? AND user_id = ?`

	agent, err := scanAgent(s.db.QueryRowContext(ctx, query, agentID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan agent row: %w", err)
	}

	return agent, nil
}

// ListAgents retrieves all agents owned by the user, newest first.
func (s *SQLiteStore) ListAgents(ctx context.Context, userID string) ([]*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE user_id = ? ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close agent rows", "error", closeErr)
		}
	}()

	var agents []*domain.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent row: %w", err)
		}
		agents = append(agents, agent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}

	return agents, nil
}

// UpdateAgentStatus sets the lifecycle status of an agent.
func (s *SQLiteStore) UpdateAgentStatus(ctx context.Context, userID, agentID string, status domain.AgentStatus) error {
	query := `UPDATE agents SET status = ? WHERE id = ? AND user_id = ?`
	result, err := s.db.ExecContext(ctx, query, string(status), agentID, userID)
	if err != nil {
		return fmt.Errorf("update agent status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("agent not found")
	}

	return nil
}

// UpdateAgentRun persists status and execution counters after a run.
func (s *SQLiteStore) UpdateAgentRun(ctx context.Context, agent *domain.Agent) error {
	query := `UPDATE agents SET status = ?, tasks_completed = ?, success_rate = ? WHERE id = ? AND user_id = ?`
	result, err := s.db.ExecContext(ctx, query,
		string(agent.Status), agent.TasksCompleted, agent.SuccessRate,
		agent.ID, agent.UserID,
	)
	if err != nil {
		return fmt.Errorf("update agent run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("agent not found")
	}

	return nil
}

// DeleteAgent removes an agent and its execution logs.
// Implements retry logic with exponential backoff to handle SQLITE_BUSY errors.
func (s *SQLiteStore) DeleteAgent(ctx context.Context, userID, agentID string) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.deleteAgentOnce(ctx, userID, agentID)
		if err == nil {
			return nil
		}

		if isSQLiteConflict(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
			slog.Debug("DeleteAgent failed with SQLITE_BUSY, retrying",
				"agent_id", agentID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}

		return fmt.Errorf("failed to delete agent %s after %d attempts: %w", agentID, maxRetries, err)
	}

	return nil
}

// deleteAgentOnce performs a single delete attempt.
func (s *SQLiteStore) deleteAgentOnce(ctx context.Context, userID, agentID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ? AND user_id = ?`, agentID, userID)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("agent not found")
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM execution_logs WHERE agent_id = ?`, agentID); err != nil {
		return fmt.Errorf("delete execution logs: %w", err)
	}
	return nil
}

// AppendExecutionLog appends one execution record for an agent.
func (s *SQLiteStore) AppendExecutionLog(ctx context.Context, entry *domain.ExecutionLogEntry) error {
	var resultJSON interface{}
	if entry.Result != nil {
		data, err := json.Marshal(entry.Result)
		if err != nil {
			return fmt.Errorf("marshal log result: %w", err)
		}
		resultJSON = string(data)
	}

	query := `INSERT INTO execution_logs (agent_id, status, message, result_json, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		entry.AgentID, entry.Status, entry.Message, resultJSON, entry.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert execution log: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// ListExecutionLogs returns up to limit execution records for an agent, newest first.
func (s *SQLiteStore) ListExecutionLogs(ctx context.Context, agentID string, limit int) ([]*domain.ExecutionLogEntry, error) {
	query := `
		SELECT id, agent_id, status, message, result_json, created_at
		FROM execution_logs WHERE agent_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query execution logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close execution log rows", "error", closeErr)
		}
	}()

	var entries []*domain.ExecutionLogEntry
	for rows.Next() {
		var entry domain.ExecutionLogEntry
		var resultJSON sql.NullString
		var createdAt int64

		if err := rows.Scan(&entry.ID, &entry.AgentID, &entry.Status, &entry.Message, &resultJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan execution log row: %w", err)
		}

		if resultJSON.Valid && resultJSON.String != "" {
			if err := json.Unmarshal([]byte(resultJSON.String), &entry.Result); err != nil {
				slog.Warn("failed to decode execution log result", "log_id", entry.ID, "error", err)
			}
		}
		entry.Timestamp = time.Unix(createdAt, 0)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate execution logs: %w", err)
	}

	return entries, nil
}

// SaveSchedule inserts a study schedule.
func (s *SQLiteStore) SaveSchedule(ctx context.Context, schedule *domain.StudySchedule) error {
	daysJSON, err := json.Marshal(schedule.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule days: %w", err)
	}

	var tipsJSON interface{}
	if len(schedule.Tips) > 0 {
		data, err := json.Marshal(schedule.Tips)
		if err != nil {
			return fmt.Errorf("marshal schedule tips: %w", err)
		}
		tipsJSON = string(data)
	}

	var studentEmail interface{}
	if schedule.StudentEmail != "" {
		studentEmail = schedule.StudentEmail
	}

	query := `
	INSERT INTO study_schedules (
		id, user_id, topic, total_duration, hours_per_day,
		days_json, tips_json, student_email, notifications_enabled, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		schedule.ID, schedule.UserID, schedule.Topic, schedule.TotalDuration,
		schedule.EstimatedHoursPerDay, string(daysJSON), tipsJSON, studentEmail,
		schedule.EmailNotificationsEnabled, schedule.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func scanSchedule(row rowScanner) (*domain.StudySchedule, error) {
	var schedule domain.StudySchedule
	var daysJSON string
	var tipsJSON, studentEmail sql.NullString
	var lastReminded sql.NullInt64
	var createdAt int64

	err := row.Scan(
		&schedule.ID, &schedule.UserID, &schedule.Topic, &schedule.TotalDuration,
		&schedule.EstimatedHoursPerDay, &daysJSON, &tipsJSON, &studentEmail,
		&schedule.EmailNotificationsEnabled, &lastReminded, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(daysJSON), &schedule.Schedule); err != nil {
		return nil, fmt.Errorf("decode schedule days: %w", err)
	}
	if tipsJSON.Valid && tipsJSON.String != "" {
		if err := json.Unmarshal([]byte(tipsJSON.String), &schedule.Tips); err != nil {
			return nil, fmt.Errorf("decode schedule tips: %w", err)
		}
	}
	schedule.StudentEmail = studentEmail.String
	schedule.CreatedAt = time.Unix(createdAt, 0)

	return &schedule, nil
}

const scheduleColumns = `id, user_id, topic, total_duration, hours_per_day, days_json, tips_json, student_email, notifications_enabled, last_reminded_at, created_at`

// GetSchedule retrieves one of the user's schedules by id.
func (s *SQLiteStore) GetSchedule(ctx context.Context, userID, scheduleID string) (*domain.StudySchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM study_schedules WHERE id = ? AND user_id = ?`

	schedule, err := scanSchedule(s.db.QueryRowContext(ctx, query, scheduleID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan schedule row: %w", err)
	}

	return schedule, nil
}

// ListSchedules retrieves all schedules owned by the user, newest first.
func (s *SQLiteStore) ListSchedules(ctx context.Context, userID string) ([]*domain.StudySchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM study_schedules WHERE user_id = ? ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close schedule rows", "error", closeErr)
		}
	}()

	var schedules []*domain.StudySchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}

	return schedules, nil
}

// ToggleScheduleDay flips the completed flag of one schedule day and
// returns the updated schedule. The read-modify-write is serialized to
// keep concurrent toggles from losing updates.
func (s *SQLiteStore) ToggleScheduleDay(ctx context.Context, userID, scheduleID string, day int) (*domain.StudySchedule, error) {
	s.scheduleMu.Lock()
	defer s.scheduleMu.Unlock()

	schedule, err := s.GetSchedule(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, nil
	}

	found := false
	for i := range schedule.Schedule {
		if schedule.Schedule[i].Day == day {
			schedule.Schedule[i].Completed = !schedule.Schedule[i].Completed
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("schedule %s has no day %d: %w", scheduleID, day, ErrDayNotFound)
	}

	daysJSON, err := json.Marshal(schedule.Schedule)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule days: %w", err)
	}

	query := `UPDATE study_schedules SET days_json = ? WHERE id = ? AND user_id = ?`
	if _, err := s.db.ExecContext(ctx, query, string(daysJSON), scheduleID, userID); err != nil {
		return nil, fmt.Errorf("update schedule days: %w", err)
	}

	return schedule, nil
}

// DueForReminder returns schedules with email notifications enabled that
// have not been reminded since olderThan. Completion filtering is left
// to the caller.
func (s *SQLiteStore) DueForReminder(ctx context.Context, olderThan time.Time) ([]*domain.StudySchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM study_schedules
		WHERE notifications_enabled = 1 AND student_email IS NOT NULL AND student_email != ''
		AND (last_reminded_at IS NULL OR last_reminded_at < ?)`

	rows, err := s.db.QueryContext(ctx, query, olderThan.Unix())
	if err != nil {
		return nil, fmt.Errorf("query due schedules: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close due schedule rows", "error", closeErr)
		}
	}()

	var schedules []*domain.StudySchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due schedule row: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due schedules: %w", err)
	}

	return schedules, nil
}

// MarkReminded records that a reminder was sent for a schedule.
func (s *SQLiteStore) MarkReminded(ctx context.Context, scheduleID string, at time.Time) error {
	query := `UPDATE study_schedules SET last_reminded_at = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, at.Unix(), scheduleID); err != nil {
		return fmt.Errorf("mark schedule reminded: %w", err)
	}
	return nil
}
