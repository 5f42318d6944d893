package repository

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"

	"github.com/alertify/go-alertify-server/types"
)

const (
	usersFile     = "users.csv"
	remindersFile = "reminders.csv"
)

var userColumns = []string{
	"id", "email", "password_hash", "is_email_confirmed", "verification_token",
	"reset_token", "reset_token_expiry", "profile_picture", "bio",
	"email_credentials", "app_password",
}

var reminderColumns = []string{
	"id", "user_id", "title", "description", "reminder_time",
	"recipient_email", "is_completed",
}

// CsvStorage keeps users and reminders in two flat CSV tables. Every read
// parses the whole table and every write rewrites it through a temp file and
// rename. All operations on one table are serialized behind its mutex, so two
// concurrent writes to different records both survive: the later writer
// re-reads the table after the earlier rename.
type CsvStorage struct {
	dir         string
	usersMu     sync.Mutex
	remindersMu sync.Mutex
}

func NewCsvStorage(dataDir string) (*CsvStorage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &CsvStorage{dir: dataDir}, nil
}

func (s *CsvStorage) Close() {}

// --- table codec

func readTable(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, rErr := r.ReadAll()
	if rErr != nil {
		return nil, rErr
	}
	if len(rows) < 2 {
		return nil, nil
	}
	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeTable(path string, columns []string, records []map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".csv-*")
	if err != nil {
		return err
	}
	w := csv.NewWriter(tmp)
	wErr := w.Write(columns)
	for _, rec := range records {
		if wErr != nil {
			break
		}
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = rec[col]
		}
		wErr = w.Write(row)
	}
	w.Flush()
	if wErr == nil {
		wErr = w.Error()
	}
	if cErr := tmp.Close(); wErr == nil {
		wErr = cErr
	}
	if wErr != nil {
		os.Remove(tmp.Name())
		return wErr
	}
	return os.Rename(tmp.Name(), path)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseBool(s string) bool {
	return s == "True" || s == "true" || s == "1"
}

func userToRecord(u *types.User) map[string]string {
	return map[string]string{
		"id":                 u.ID,
		"email":              u.Email,
		"password_hash":      u.PasswordHash,
		"is_email_confirmed": formatBool(u.IsEmailConfirmed),
		"verification_token": u.VerificationToken,
		"reset_token":        u.ResetToken,
		"reset_token_expiry": u.ResetTokenExpiry,
		"profile_picture":    u.ProfilePicture,
		"bio":                u.Bio,
		"email_credentials":  u.EmailCredentials,
		"app_password":       u.AppPassword,
	}
}

func recordToUser(rec map[string]string) types.User {
	return types.User{
		ID:                rec["id"],
		Email:             rec["email"],
		PasswordHash:      rec["password_hash"],
		IsEmailConfirmed:  parseBool(rec["is_email_confirmed"]),
		VerificationToken: rec["verification_token"],
		ResetToken:        rec["reset_token"],
		ResetTokenExpiry:  rec["reset_token_expiry"],
		ProfilePicture:    rec["profile_picture"],
		Bio:               rec["bio"],
		EmailCredentials:  rec["email_credentials"],
		AppPassword:       rec["app_password"],
	}
}

func reminderToRecord(r *types.Reminder) map[string]string {
	return map[string]string{
		"id":              r.ID,
		"user_id":         r.UserID,
		"title":           r.Title,
		"description":     r.Description,
		"reminder_time":   r.ReminderTime,
		"recipient_email": r.RecipientEmail,
		"is_completed":    formatBool(r.IsCompleted),
	}
}

func recordToReminder(rec map[string]string) types.Reminder {
	return types.Reminder{
		ID:             rec["id"],
		UserID:         rec["user_id"],
		Title:          rec["title"],
		Description:    rec["description"],
		ReminderTime:   rec["reminder_time"],
		RecipientEmail: rec["recipient_email"],
		IsCompleted:    parseBool(rec["is_completed"]),
	}
}

// --- users

func (s *CsvStorage) usersPath() string {
	return filepath.Join(s.dir, usersFile)
}

func (s *CsvStorage) remindersPath() string {
	return filepath.Join(s.dir, remindersFile)
}

func (s *CsvStorage) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	records, err := readTable(s.usersPath())
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec["id"] == id {
			u := recordToUser(rec)
			return &u, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *CsvStorage) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	records, err := readTable(s.usersPath())
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec["email"] == email {
			u := recordToUser(rec)
			return &u, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *CsvStorage) GetUserByResetToken(ctx context.Context, token string) (*types.User, error) {
	if token == "" {
		return nil, types.ErrNotFound
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	records, err := readTable(s.usersPath())
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec["reset_token"] == token {
			u := recordToUser(rec)
			return &u, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *CsvStorage) CreateUser(ctx context.Context, user *types.User) error {
	if err := validateRecord(user); err != nil {
		return err
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	records, err := readTable(s.usersPath())
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec["email"] == user.Email {
			return types.ErrUserExists
		}
	}
	records = append(records, userToRecord(user))
	return writeTable(s.usersPath(), userColumns, records)
}

func (s *CsvStorage) UpdateUser(ctx context.Context, user *types.User) error {
	if err := validateRecord(user); err != nil {
		return err
	}
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	records, err := readTable(s.usersPath())
	if err != nil {
		return err
	}
	updated := false
	for i, rec := range records {
		if rec["id"] == user.ID {
			records[i] = userToRecord(user)
			updated = true
			break
		}
	}
	if !updated {
		return types.ErrNotFound
	}
	return writeTable(s.usersPath(), userColumns, records)
}

// --- reminders

func (s *CsvStorage) ListReminders(ctx context.Context) ([]types.Reminder, error) {
	s.remindersMu.Lock()
	defer s.remindersMu.Unlock()

	records, err := readTable(s.remindersPath())
	if err != nil {
		return nil, err
	}
	reminders := make([]types.Reminder, 0, len(records))
	for _, rec := range records {
		reminders = append(reminders, recordToReminder(rec))
	}
	return reminders, nil
}

func (s *CsvStorage) ListRemindersByUser(ctx context.Context, userID string) ([]types.Reminder, error) {
	all, err := s.ListReminders(ctx)
	if err != nil {
		return nil, err
	}
	reminders := make([]types.Reminder, 0, len(all))
	for _, r := range all {
		if r.UserID == userID {
			reminders = append(reminders, r)
		}
	}
	return reminders, nil
}

func (s *CsvStorage) GetReminder(ctx context.Context, id string) (*types.Reminder, error) {
	s.remindersMu.Lock()
	defer s.remindersMu.Unlock()

	records, err := readTable(s.remindersPath())
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec["id"] == id {
			r := recordToReminder(rec)
			return &r, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *CsvStorage) CreateReminder(ctx context.Context, reminder *types.Reminder) error {
	if err := validateRecord(reminder); err != nil {
		return err
	}
	s.remindersMu.Lock()
	defer s.remindersMu.Unlock()

	records, err := readTable(s.remindersPath())
	if err != nil {
		return err
	}
	records = append(records, reminderToRecord(reminder))
	return writeTable(s.remindersPath(), reminderColumns, records)
}

func (s *CsvStorage) UpdateReminder(ctx context.Context, id string, update *types.ReminderUpdate) error {
	s.remindersMu.Lock()
	defer s.remindersMu.Unlock()

	records, err := readTable(s.remindersPath())
	if err != nil {
		return err
	}
	updated := false
	for _, rec := range records {
		if rec["id"] != id {
			continue
		}
		if update.Title != nil {
			rec["title"] = *update.Title
		}
		if update.Description != nil {
			rec["description"] = *update.Description
		}
		if update.ReminderTime != nil {
			rec["reminder_time"] = *update.ReminderTime
		}
		if update.RecipientEmail != nil {
			rec["recipient_email"] = *update.RecipientEmail
		}
		if update.IsCompleted != nil {
			rec["is_completed"] = formatBool(*update.IsCompleted)
		}
		updated = true
		break
	}
	if !updated {
		return types.ErrNotFound
	}
	return writeTable(s.remindersPath(), reminderColumns, records)
}

func (s *CsvStorage) DeleteReminder(ctx context.Context, id string) error {
	s.remindersMu.Lock()
	defer s.remindersMu.Unlock()

	records, err := readTable(s.remindersPath())
	if err != nil {
		return err
	}
	kept := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		if rec["id"] != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return types.ErrNotFound
	}
	return writeTable(s.remindersPath(), reminderColumns, kept)
}

func (s *CsvStorage) MarkCompleted(ctx context.Context, id string) error {
	s.remindersMu.Lock()
	defer s.remindersMu.Unlock()

	records, err := readTable(s.remindersPath())
	if err != nil {
		return err
	}
	updated := false
	for _, rec := range records {
		if rec["id"] == id {
			rec["is_completed"] = formatBool(true)
			updated = true
			break
		}
	}
	if !updated {
		return types.ErrNotFound
	}
	return writeTable(s.remindersPath(), reminderColumns, records)
}
