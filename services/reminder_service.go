package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/alertify/go-alertify-server/repository"
	"github.com/alertify/go-alertify-server/types"
)

type ReminderService struct {
	store repository.Storage
}

func NewReminderService(store repository.Storage) *ReminderService {
	if store == nil {
		panic("store cannot be nil")
	}
	return &ReminderService{store: store}
}

func (rs *ReminderService) Create(ctx context.Context, userID string, in *types.InputReminder) (*types.Reminder, error) {
	if _, err := time.Parse(types.ReminderTimeLayout, in.ReminderTime); err != nil {
		return nil, fmt.Errorf("%w: invalid reminder time %q", types.ErrBadRequest, in.ReminderTime)
	}
	reminder := &types.Reminder{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          in.Title,
		Description:    in.Description,
		ReminderTime:   in.ReminderTime,
		RecipientEmail: in.RecipientEmail,
		IsCompleted:    false,
	}
	if err := rs.store.CreateReminder(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

func (rs *ReminderService) ListForUser(ctx context.Context, userID string) ([]types.Reminder, error) {
	return rs.store.ListRemindersByUser(ctx, userID)
}

// GetOwned loads a reminder and hides it behind ErrNotFound when it belongs to
// another user.
func (rs *ReminderService) GetOwned(ctx context.Context, id, userID string) (*types.Reminder, error) {
	reminder, err := rs.store.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder.UserID != userID {
		return nil, types.ErrNotFound
	}
	return reminder, nil
}

func (rs *ReminderService) Update(ctx context.Context, id, userID string, update *types.ReminderUpdate) (*types.Reminder, error) {
	if _, err := rs.GetOwned(ctx, id, userID); err != nil {
		return nil, err
	}
	if update.ReminderTime != nil {
		if _, err := time.Parse(types.ReminderTimeLayout, *update.ReminderTime); err != nil {
			return nil, fmt.Errorf("%w: invalid reminder time %q", types.ErrBadRequest, *update.ReminderTime)
		}
	}
	if err := rs.store.UpdateReminder(ctx, id, update); err != nil {
		return nil, err
	}
	return rs.store.GetReminder(ctx, id)
}

func (rs *ReminderService) Delete(ctx context.Context, id, userID string) error {
	if _, err := rs.GetOwned(ctx, id, userID); err != nil {
		return err
	}
	return rs.store.DeleteReminder(ctx, id)
}

// ExportCsv writes the users reminders as a CSV download.
func (rs *ReminderService) ExportCsv(ctx context.Context, userID string, w io.Writer) error {
	reminders, err := rs.store.ListRemindersByUser(ctx, userID)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if hErr := cw.Write([]string{"id", "user_id", "title", "description", "reminder_time", "is_completed", "recipient_email"}); hErr != nil {
		return hErr
	}
	for _, r := range reminders {
		completed := "No"
		if r.IsCompleted {
			completed = "Yes"
		}
		if wErr := cw.Write([]string{r.ID, r.UserID, r.Title, r.Description, r.ReminderTime, completed, r.RecipientEmail}); wErr != nil {
			return wErr
		}
	}
	cw.Flush()
	return cw.Error()
}

type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// ImportCsv reads reminders from an uploaded CSV. Rows without a title or with
// an unparsable time are skipped; a row matching an existing reminder by title
// and time updates it instead of duplicating it.
func (rs *ReminderService) ImportCsv(ctx context.Context, userID string, r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrBadRequest, err.Error())
	}
	if len(rows) == 0 {
		return &ImportResult{}, nil
	}
	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	existing, lErr := rs.store.ListRemindersByUser(ctx, userID)
	if lErr != nil {
		return nil, lErr
	}

	result := &ImportResult{}
	for _, row := range rows[1:] {
		title := field(row, "title")
		reminderTime := field(row, "reminder_time")
		if title == "" || reminderTime == "" {
			result.Skipped++
			continue
		}
		if _, pErr := time.Parse(types.ReminderTimeLayout, reminderTime); pErr != nil {
			result.Skipped++
			continue
		}
		description := field(row, "description")
		recipient := field(row, "recipient_email")

		var match *types.Reminder
		for i := range existing {
			if existing[i].Title == title && existing[i].ReminderTime == reminderTime {
				match = &existing[i]
				break
			}
		}
		if match != nil {
			update := &types.ReminderUpdate{
				Title:          &title,
				Description:    &description,
				ReminderTime:   &reminderTime,
				RecipientEmail: &recipient,
			}
			if uErr := rs.store.UpdateReminder(ctx, match.ID, update); uErr != nil {
				if errors.Is(uErr, types.ErrNotFound) {
					result.Skipped++
					continue
				}
				return nil, uErr
			}
			result.Updated++
			continue
		}
		reminder := &types.Reminder{
			ID:             uuid.NewString(),
			UserID:         userID,
			Title:          title,
			Description:    description,
			ReminderTime:   reminderTime,
			RecipientEmail: recipient,
		}
		if cErr := rs.store.CreateReminder(ctx, reminder); cErr != nil {
			return nil, cErr
		}
		existing = append(existing, *reminder)
		result.Imported++
	}
	return result, nil
}
