// Package notify emails study schedule reminders in the background.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/integration"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/store"
)

// Sender delivers one reminder email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) (*integration.SendReceipt, error)
}

// StartReminderWorker runs a background goroutine that periodically
// emails schedule owners about their next pending study day. A schedule
// is emailed at most once per interval.
func StartReminderWorker(ctx context.Context, repo store.Repository, sender Sender, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("reminder worker started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				sendDueReminders(ctx, repo, sender, interval)
			case <-ctx.Done():
				slog.Info("reminder worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// sendDueReminders emails each schedule whose last reminder is older
// than the interval, then marks it reminded. Fully completed schedules
// and schedules without a student email are marked without sending so
// they drop out of future scans.
func sendDueReminders(ctx context.Context, repo store.Repository, sender Sender, interval time.Duration) {
	due, err := repo.DueForReminder(ctx, time.Now().Add(-interval))
	if err != nil {
		slog.Error("reminder worker failed to list due schedules", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	slog.Info("reminder worker found due schedules", "count", len(due))

	sent := 0
	for _, schedule := range due {
		day := schedule.NextPendingDay()
		if day == nil || schedule.StudentEmail == "" {
			if err := repo.MarkReminded(ctx, schedule.ID, time.Now()); err != nil {
				slog.Warn("reminder worker failed to retire schedule", "schedule_id", schedule.ID, "error", err)
			}
			continue
		}

		subject := fmt.Sprintf("Study reminder: %s (day %d)", schedule.Topic, day.Day)
		if _, err := sender.Send(ctx, schedule.StudentEmail, subject, reminderBody(schedule, day)); err != nil {
			// Left unmarked so the next sweep retries.
			slog.Warn("reminder worker failed to send email", "schedule_id", schedule.ID, "error", err)
			continue
		}
		if err := repo.MarkReminded(ctx, schedule.ID, time.Now()); err != nil {
			slog.Warn("reminder worker failed to mark schedule reminded", "schedule_id", schedule.ID, "error", err)
		}
		sent++
	}

	if sent > 0 {
		slog.Info("reminder worker sent reminders", "sent", sent)
	}
}

func reminderBody(s *domain.StudySchedule, day *domain.ScheduleDay) string {
	done, total := s.Progress()

	var b strings.Builder
	fmt.Fprintf(&b, "Hi! Time to continue your %s study plan.\n\n", s.Topic)
	fmt.Fprintf(&b, "Day %d: %s (%s)\n", day.Day, day.Title, day.Duration)
	if len(day.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(day.Topics, ", "))
	}
	if day.Description != "" {
		fmt.Fprintf(&b, "%s\n", day.Description)
	}
	fmt.Fprintf(&b, "\nProgress so far: %d of %d days completed. Keep going!\n", done, total)
	return b.String()
}
