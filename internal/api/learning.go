package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/provider"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/store"
)

const (
	defaultQuizQuestions = 5
	maxQuizQuestions     = 20
	defaultScheduleDays  = 7
	maxScheduleDays      = 30
	defaultHoursPerDay   = 2.0
)

// LearningHandler handles quiz and study schedule endpoints.
type LearningHandler struct {
	*Handler
	provider *provider.Adapter
}

// NewLearningHandler creates a new learning handler.
func NewLearningHandler(base *Handler, p *provider.Adapter) *LearningHandler {
	return &LearningHandler{Handler: base, provider: p}
}

// RegisterRoutes registers learning routes on the /api router.
func (h *LearningHandler) RegisterRoutes(r chi.Router) {
	r.Post("/learning/generate-quiz", h.GenerateQuiz)
	r.Post("/learning/generate-schedule", h.GenerateSchedule)
	r.Get("/learning/schedules", h.ListSchedules)
	r.Patch("/learning/schedules/{id}/days/{day}", h.ToggleDay)
}

type generateQuizRequest struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"numQuestions"`
	Difficulty   string `json:"difficulty"`
}

type quizResponse struct {
	*domain.Quiz
	Provider string `json:"provider"`
	Degraded bool   `json:"degraded,omitempty"`
}

// GenerateQuiz asks the provider for a quiz on the topic. Unparseable
// provider output degrades to a fixed single-question quiz, never an
// error.
func (h *LearningHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req generateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		Error(w, http.StatusBadRequest, "topic is required")
		return
	}
	if req.NumQuestions <= 0 || req.NumQuestions > maxQuizQuestions {
		req.NumQuestions = defaultQuizQuestions
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	res := h.provider.GenerateQuiz(r.Context(), req.Topic, req.NumQuestions, req.Difficulty)
	quiz, ok := parseQuiz(res.Content, req.Topic)
	if !ok {
		slog.Info("quiz output not usable, using fallback", "provider", res.Provider)
		quiz = fallbackQuiz(req.Topic)
	}

	JSON(w, http.StatusOK, quizResponse{Quiz: quiz, Provider: res.Provider, Degraded: res.Degraded})
}

type generateScheduleRequest struct {
	Topic                     string  `json:"topic"`
	DurationDays              int     `json:"durationDays"`
	HoursPerDay               float64 `json:"hoursPerDay"`
	StudentEmail              string  `json:"studentEmail"`
	EmailNotificationsEnabled bool    `json:"emailNotificationsEnabled"`
	Save                      bool    `json:"save"`
}

type scheduleResponse struct {
	*domain.StudySchedule
	Saved    bool   `json:"saved"`
	Provider string `json:"provider"`
	Degraded bool   `json:"degraded,omitempty"`
}

// GenerateSchedule asks the provider for a study schedule. The result
// is persisted when the caller asks to save it or enables email
// notifications; notifications require a student email.
func (h *LearningHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req generateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	req.StudentEmail = strings.TrimSpace(req.StudentEmail)
	if req.Topic == "" {
		Error(w, http.StatusBadRequest, "topic is required")
		return
	}
	if req.EmailNotificationsEnabled && req.StudentEmail == "" {
		Error(w, http.StatusBadRequest, "studentEmail is required when email notifications are enabled")
		return
	}
	if req.DurationDays <= 0 || req.DurationDays > maxScheduleDays {
		req.DurationDays = defaultScheduleDays
	}
	if req.HoursPerDay <= 0 || req.HoursPerDay > 24 {
		req.HoursPerDay = defaultHoursPerDay
	}

	res := h.provider.GenerateSchedule(r.Context(), req.Topic, req.DurationDays, req.HoursPerDay)
	schedule, parsed := parseSchedule(res.Content, req.Topic)
	if !parsed {
		slog.Info("schedule output not usable, using fallback", "provider", res.Provider)
		schedule = fallbackSchedule(req.Topic, req.DurationDays, req.HoursPerDay)
	}

	schedule.ID = uuid.NewString()
	schedule.UserID = userID
	schedule.StudentEmail = req.StudentEmail
	schedule.EmailNotificationsEnabled = req.EmailNotificationsEnabled
	schedule.CreatedAt = time.Now()

	saved := req.Save || req.EmailNotificationsEnabled
	if saved {
		if err := h.repo.SaveSchedule(r.Context(), schedule); err != nil {
			slog.Error("failed to save schedule", "error", err, "user_id", userID)
			Error(w, http.StatusInternalServerError, "failed to save schedule")
			return
		}
		slog.Info("schedule saved", "schedule_id", schedule.ID, "user_id", userID,
			"notifications", schedule.EmailNotificationsEnabled)
	}

	JSON(w, http.StatusOK, scheduleResponse{
		StudySchedule: schedule,
		Saved:         saved,
		Provider:      res.Provider,
		Degraded:      res.Degraded,
	})
}

// ListSchedules returns the caller's saved schedules, newest first.
func (h *LearningHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	schedules, err := h.repo.ListSchedules(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list schedules", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "failed to list schedules")
		return
	}
	if schedules == nil {
		schedules = []*domain.StudySchedule{}
	}
	JSON(w, http.StatusOK, schedules)
}

// ToggleDay flips the completed flag of one schedule day and returns
// the updated schedule.
func (h *LearningHandler) ToggleDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	scheduleID := chi.URLParam(r, "id")

	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		Error(w, http.StatusBadRequest, "day must be a number")
		return
	}

	schedule, err := h.repo.ToggleScheduleDay(r.Context(), userID, scheduleID, day)
	if err != nil {
		if errors.Is(err, store.ErrDayNotFound) {
			Error(w, http.StatusBadRequest, "day not found in schedule")
			return
		}
		slog.Error("failed to toggle schedule day", "error", err, "schedule_id", scheduleID, "day", day)
		Error(w, http.StatusInternalServerError, "failed to update schedule")
		return
	}
	if schedule == nil {
		Error(w, http.StatusNotFound, "schedule not found")
		return
	}
	JSON(w, http.StatusOK, schedule)
}

// parseQuiz decodes provider output into a quiz. The topic falls back
// to the requested one when the model omits it.
func parseQuiz(content, topic string) (*domain.Quiz, bool) {
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(content), &quiz); err != nil {
		return nil, false
	}
	if len(quiz.Questions) == 0 {
		return nil, false
	}
	for _, q := range quiz.Questions {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) == 0 {
			return nil, false
		}
	}
	if strings.TrimSpace(quiz.Topic) == "" {
		quiz.Topic = topic
	}
	return &quiz, true
}

// parseSchedule decodes provider output into a schedule. Identity and
// persistence fields are filled by the caller.
func parseSchedule(content, topic string) (*domain.StudySchedule, bool) {
	var schedule domain.StudySchedule
	if err := json.Unmarshal([]byte(content), &schedule); err != nil {
		return nil, false
	}
	if len(schedule.Schedule) == 0 {
		return nil, false
	}
	if strings.TrimSpace(schedule.Topic) == "" {
		schedule.Topic = topic
	}
	if schedule.TotalDuration == "" {
		schedule.TotalDuration = fmt.Sprintf("%d days", len(schedule.Schedule))
	}
	return &schedule, true
}

func fallbackQuiz(topic string) *domain.Quiz {
	return &domain.Quiz{
		Topic: topic,
		Questions: []domain.QuizQuestion{{
			Question:    fmt.Sprintf("Which study habit helps most when learning %s?", topic),
			Options:     []string{"Cramming the night before", "Short daily practice", "Only reading summaries", "Skipping review entirely"},
			Answer:      "Short daily practice",
			Explanation: "Spaced, repeated practice builds durable understanding.",
		}},
	}
}

func fallbackSchedule(topic string, days int, hoursPerDay float64) *domain.StudySchedule {
	phases := []struct {
		title       string
		description string
	}{
		{"Foundations", "Read an overview and note the core terms."},
		{"Practice", "Work through examples and exercises without notes."},
		{"Review", "Self-test and revisit anything you missed."},
	}

	schedule := &domain.StudySchedule{
		Topic:                topic,
		TotalDuration:        fmt.Sprintf("%d days", days),
		EstimatedHoursPerDay: hoursPerDay,
		Tips:                 []string{"Study at the same time each day", "Explain concepts out loud"},
	}
	for day := 1; day <= days; day++ {
		phase := phases[(day-1)*len(phases)/days]
		schedule.Schedule = append(schedule.Schedule, domain.ScheduleDay{
			Day:         day,
			Title:       fmt.Sprintf("%s: %s", phase.title, topic),
			Duration:    fmt.Sprintf("%.1f hours", hoursPerDay),
			Topics:      []string{topic},
			Description: phase.description,
		})
	}
	return schedule
}
