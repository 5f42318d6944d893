package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alertify/go-alertify-server/global"
	"github.com/alertify/go-alertify-server/types"
)

// PostgresStorage is the relational backend. Row level UPDATE statements give
// per-record atomicity, so concurrent writes to different ids both survive
// without table locking.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(ctx context.Context, conf global.PostgresConfig) (*PostgresStorage, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		conf.Username, conf.Password, conf.Host, conf.Port, conf.Database)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStorage{pool: pool}
	if sErr := s.ensureSchema(ctx); sErr != nil {
		pool.Close()
		return nil, sErr
	}
	return s, nil
}

func (s *PostgresStorage) Close() {
	s.pool.Close()
}

func (s *PostgresStorage) ensureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		is_email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		verification_token TEXT NOT NULL DEFAULT '',
		reset_token TEXT NOT NULL DEFAULT '',
		reset_token_expiry TEXT NOT NULL DEFAULT '',
		profile_picture TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		email_credentials TEXT NOT NULL DEFAULT '',
		app_password TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		reminder_time TIMESTAMP NOT NULL,
		recipient_email TEXT NOT NULL DEFAULT '',
		is_completed BOOLEAN NOT NULL DEFAULT FALSE
	);`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// --- users

const userSelect = `SELECT id, email, password_hash, is_email_confirmed, verification_token,
	reset_token, reset_token_expiry, profile_picture, bio, email_credentials, app_password
	FROM users`

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsEmailConfirmed,
		&u.VerificationToken, &u.ResetToken, &u.ResetTokenExpiry,
		&u.ProfilePicture, &u.Bio, &u.EmailCredentials, &u.AppPassword)
	if err != nil {
		return nil, handlePgError(err)
	}
	return &u, nil
}

func (s *PostgresStorage) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	return scanUser(s.pool.QueryRow(ctx, userSelect+` WHERE id = $1`, id))
}

func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return scanUser(s.pool.QueryRow(ctx, userSelect+` WHERE email = $1`, email))
}

func (s *PostgresStorage) GetUserByResetToken(ctx context.Context, token string) (*types.User, error) {
	if token == "" {
		return nil, types.ErrNotFound
	}
	return scanUser(s.pool.QueryRow(ctx, userSelect+` WHERE reset_token = $1`, token))
}

func (s *PostgresStorage) CreateUser(ctx context.Context, user *types.User) error {
	if err := validateRecord(user); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO users (id, email, password_hash, is_email_confirmed,
		verification_token, reset_token, reset_token_expiry, profile_picture, bio,
		email_credentials, app_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.Email, user.PasswordHash, user.IsEmailConfirmed,
		user.VerificationToken, user.ResetToken, user.ResetTokenExpiry,
		user.ProfilePicture, user.Bio, user.EmailCredentials, user.AppPassword)
	return handlePgError(err)
}

func (s *PostgresStorage) UpdateUser(ctx context.Context, user *types.User) error {
	if err := validateRecord(user); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE users SET email = $2, password_hash = $3,
		is_email_confirmed = $4, verification_token = $5, reset_token = $6,
		reset_token_expiry = $7, profile_picture = $8, bio = $9,
		email_credentials = $10, app_password = $11 WHERE id = $1`,
		user.ID, user.Email, user.PasswordHash, user.IsEmailConfirmed,
		user.VerificationToken, user.ResetToken, user.ResetTokenExpiry,
		user.ProfilePicture, user.Bio, user.EmailCredentials, user.AppPassword)
	if err != nil {
		return handlePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// --- reminders

const reminderSelect = `SELECT id, user_id, title, description, reminder_time,
	recipient_email, is_completed FROM reminders`

func scanReminder(row pgx.Row) (*types.Reminder, error) {
	var r types.Reminder
	var due time.Time
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &due,
		&r.RecipientEmail, &r.IsCompleted)
	if err != nil {
		return nil, handlePgError(err)
	}
	r.ReminderTime = due.Format(types.ReminderTimeLayout)
	return &r, nil
}

func (s *PostgresStorage) queryReminders(ctx context.Context, query string, args ...interface{}) ([]types.Reminder, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, handlePgError(err)
	}
	defer rows.Close()
	reminders := []types.Reminder{}
	for rows.Next() {
		r, sErr := scanReminder(rows)
		if sErr != nil {
			return nil, sErr
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

func (s *PostgresStorage) ListReminders(ctx context.Context) ([]types.Reminder, error) {
	return s.queryReminders(ctx, reminderSelect)
}

func (s *PostgresStorage) ListRemindersByUser(ctx context.Context, userID string) ([]types.Reminder, error) {
	return s.queryReminders(ctx, reminderSelect+` WHERE user_id = $1`, userID)
}

func (s *PostgresStorage) GetReminder(ctx context.Context, id string) (*types.Reminder, error) {
	return scanReminder(s.pool.QueryRow(ctx, reminderSelect+` WHERE id = $1`, id))
}

func (s *PostgresStorage) CreateReminder(ctx context.Context, reminder *types.Reminder) error {
	if err := validateRecord(reminder); err != nil {
		return err
	}
	due, dErr := reminder.DueAt()
	if dErr != nil {
		return fmt.Errorf("%w: %s", types.ErrBadRequest, dErr.Error())
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO reminders (id, user_id, title, description,
		reminder_time, recipient_email, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		reminder.ID, reminder.UserID, reminder.Title, reminder.Description,
		due, reminder.RecipientEmail, reminder.IsCompleted)
	return handlePgError(err)
}

func (s *PostgresStorage) UpdateReminder(ctx context.Context, id string, update *types.ReminderUpdate) error {
	current, err := s.GetReminder(ctx, id)
	if err != nil {
		return err
	}
	if update.Title != nil {
		current.Title = *update.Title
	}
	if update.Description != nil {
		current.Description = *update.Description
	}
	if update.ReminderTime != nil {
		current.ReminderTime = *update.ReminderTime
	}
	if update.RecipientEmail != nil {
		current.RecipientEmail = *update.RecipientEmail
	}
	if update.IsCompleted != nil {
		current.IsCompleted = *update.IsCompleted
	}
	due, dErr := current.DueAt()
	if dErr != nil {
		return fmt.Errorf("%w: %s", types.ErrBadRequest, dErr.Error())
	}
	tag, uErr := s.pool.Exec(ctx, `UPDATE reminders SET title = $2, description = $3,
		reminder_time = $4, recipient_email = $5, is_completed = $6 WHERE id = $1`,
		id, current.Title, current.Description, due, current.RecipientEmail, current.IsCompleted)
	if uErr != nil {
		return handlePgError(uErr)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) DeleteReminder(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return handlePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) MarkCompleted(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE reminders SET is_completed = TRUE WHERE id = $1`, id)
	if err != nil {
		return handlePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
