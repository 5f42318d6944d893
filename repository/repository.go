package repository

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/alertify/go-alertify-server/types"
)

// storage backend names (selected by storage.type in the config)
const (
	BackendCsv      = "csv"
	BackendPostgres = "postgres"
)

type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*types.User, error)
	// CreateUser fails with types.ErrUserExists when the email is taken
	CreateUser(ctx context.Context, user *types.User) error
	// UpdateUser replaces the stored record matching user.ID
	UpdateUser(ctx context.Context, user *types.User) error
}

type ReminderStore interface {
	ListReminders(ctx context.Context) ([]types.Reminder, error)
	ListRemindersByUser(ctx context.Context, userID string) ([]types.Reminder, error)
	GetReminder(ctx context.Context, id string) (*types.Reminder, error)
	CreateReminder(ctx context.Context, reminder *types.Reminder) error
	UpdateReminder(ctx context.Context, id string, update *types.ReminderUpdate) error
	DeleteReminder(ctx context.Context, id string) error
	// MarkCompleted flips is_completed to true; the flag is never reset here
	MarkCompleted(ctx context.Context, id string) error
}

// Storage is the single logical persistence contract; callers never depend on
// backend specific details.
type Storage interface {
	UserStore
	ReminderStore
	Close()
}

var validate = validator.New()

// validateRecord guards the persistence boundary: only typed, valid records
// make it into a table.
func validateRecord(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", types.ErrBadRequest, err.Error())
	}
	return nil
}
