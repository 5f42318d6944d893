package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/log/level"

	"github.com/alertify/go-alertify-server/global"
	"github.com/alertify/go-alertify-server/repository"
	"github.com/alertify/go-alertify-server/types"
)

// Job is one due reminder resolved to a recipient and owner, ready to send.
type Job struct {
	Reminder  types.Reminder
	Recipient string
	DueAt     time.Time
	User      *types.User
}

type ScanStats struct {
	Scanned int `json:"scanned"`
	Due     int `json:"due"`
	Skipped int `json:"skipped"`
}

// Scanner loads all reminders and filters them down to dispatchable jobs.
type Scanner struct {
	store repository.Storage
}

func NewScanner(store repository.Storage) *Scanner {
	if store == nil {
		panic("store cannot be nil")
	}
	return &Scanner{store: store}
}

// Scan emits a job for every reminder that is due at now, not completed, has
// an existing owner with configured sender credentials. Malformed rows and
// orphaned reminders are skipped with a diagnostic; they never abort the scan.
// Ordering across jobs is unspecified.
func (s *Scanner) Scan(ctx context.Context, now time.Time) ([]Job, *ScanStats, error) {
	reminders, err := s.store.ListReminders(ctx)
	if err != nil {
		return nil, nil, err
	}

	stats := &ScanStats{Scanned: len(reminders)}
	jobs := make([]Job, 0, len(reminders))
	for _, reminder := range reminders {
		if reminder.IsCompleted {
			continue
		}
		dueAt, pErr := reminder.DueAt()
		if pErr != nil {
			level.Warn(global.Logger).Log("msg", "invalid reminder time, skipping",
				"reminder", reminder.ID, "time", reminder.ReminderTime)
			stats.Skipped++
			continue
		}
		if dueAt.After(now) {
			continue
		}
		user, uErr := s.store.GetUserByID(ctx, reminder.UserID)
		if uErr != nil {
			if errors.Is(uErr, types.ErrNotFound) {
				level.Warn(global.Logger).Log("msg", "reminder owner not found, skipping",
					"reminder", reminder.ID, "user", reminder.UserID)
			} else {
				level.Error(global.Logger).Log("msg", "failed to load reminder owner, skipping",
					"reminder", reminder.ID, "user", reminder.UserID, "error", uErr.Error())
			}
			stats.Skipped++
			continue
		}
		if !user.HasSenderCredentials() {
			level.Warn(global.Logger).Log("msg", "user has no email credentials, skipping reminder",
				"reminder", reminder.ID, "user", user.ID)
			stats.Skipped++
			continue
		}
		recipient := reminder.RecipientEmail
		if recipient == "" {
			recipient = user.Email
		}
		stats.Due++
		jobs = append(jobs, Job{
			Reminder:  reminder,
			Recipient: recipient,
			DueAt:     dueAt,
			User:      user,
		})
	}
	return jobs, stats, nil
}
