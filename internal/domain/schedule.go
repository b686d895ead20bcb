package domain

import (
	"time"
)

// ScheduleDay is one day of a study schedule.
type ScheduleDay struct {
	Day         int      `json:"day"`
	Title       string   `json:"title"`
	Duration    string   `json:"duration"`
	Topics      []string `json:"topics"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
}

// StudySchedule is a generated study plan. Apart from per-day completion
// toggles the record is immutable once saved.
type StudySchedule struct {
	ID                        string        `json:"id"`
	UserID                    string        `json:"-"`
	Topic                     string        `json:"topic"`
	TotalDuration             string        `json:"totalDuration"`
	EstimatedHoursPerDay      float64       `json:"estimatedHoursPerDay"`
	Schedule                  []ScheduleDay `json:"schedule"`
	Tips                      []string      `json:"tips,omitempty"`
	StudentEmail              string        `json:"studentEmail,omitempty"`
	EmailNotificationsEnabled bool          `json:"emailNotificationsEnabled"`
	CreatedAt                 time.Time     `json:"createdAt"`
}

// NextPendingDay returns the first day not yet marked completed, or nil
// when every day is done.
func (s *StudySchedule) NextPendingDay() *ScheduleDay {
	for i := range s.Schedule {
		if !s.Schedule[i].Completed {
			return &s.Schedule[i]
		}
	}
	return nil
}

// Progress returns completed and total day counts.
func (s *StudySchedule) Progress() (done, total int) {
	for i := range s.Schedule {
		if s.Schedule[i].Completed {
			done++
		}
	}
	return done, len(s.Schedule)
}
