package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertify/go-alertify-server/types"
)

func setupCsvStorage(t *testing.T) *CsvStorage {
	store, err := NewCsvStorage(t.TempDir())
	require.NoError(t, err)
	return store
}

func testUser(email string) *types.User {
	return &types.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "x",
	}
}

func testReminder(userID, title, reminderTime string) *types.Reminder {
	return &types.Reminder{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        title,
		ReminderTime: reminderTime,
	}
}

func TestUserCreateAndGet(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	user := testUser("jane@example.com")
	user.Bio = "likes reminders"
	require.NoError(t, store.CreateUser(ctx, user))

	byID, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
	assert.Equal(t, user.Bio, byID.Bio)

	byEmail, err := store.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = store.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUserEmailUniqueness(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("dup@example.com")))
	err := store.CreateUser(ctx, testUser("dup@example.com"))
	assert.ErrorIs(t, err, types.ErrUserExists)
}

func TestUserUpdateCredentials(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	user := testUser("creds@example.com")
	require.NoError(t, store.CreateUser(ctx, user))

	user.EmailCredentials = "creds@example.com"
	user.AppPassword = "app-secret"
	require.NoError(t, store.UpdateUser(ctx, user))

	loaded, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.HasSenderCredentials())
	assert.Equal(t, "app-secret", loaded.AppPassword)
}

func TestUserGetByResetToken(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	user := testUser("reset@example.com")
	user.ResetToken = "token-123"
	require.NoError(t, store.CreateUser(ctx, user))

	loaded, err := store.GetUserByResetToken(ctx, "token-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)

	// empty token must never match users without a pending reset
	_, err = store.GetUserByResetToken(ctx, "")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestReminderRoundTrip(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	reminder := testReminder("user-1", "Pay bill", "2024-01-01 09:00:00")
	reminder.Description = "electricity"
	reminder.RecipientEmail = "other@example.com"
	require.NoError(t, store.CreateReminder(ctx, reminder))

	loaded, err := store.GetReminder(ctx, reminder.ID)
	require.NoError(t, err)
	assert.Equal(t, reminder.Title, loaded.Title)
	assert.Equal(t, reminder.Description, loaded.Description)
	assert.Equal(t, reminder.ReminderTime, loaded.ReminderTime)
	assert.Equal(t, reminder.RecipientEmail, loaded.RecipientEmail)
	assert.False(t, loaded.IsCompleted)
}

func TestReminderListByUser(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	require.NoError(t, store.CreateReminder(ctx, testReminder("user-1", "a", "2024-01-01 09:00:00")))
	require.NoError(t, store.CreateReminder(ctx, testReminder("user-1", "b", "2024-01-02 09:00:00")))
	require.NoError(t, store.CreateReminder(ctx, testReminder("user-2", "c", "2024-01-03 09:00:00")))

	all, err := store.ListReminders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := store.ListRemindersByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestReminderPartialUpdate(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	reminder := testReminder("user-1", "original", "2024-01-01 09:00:00")
	require.NoError(t, store.CreateReminder(ctx, reminder))

	newTitle := "renamed"
	require.NoError(t, store.UpdateReminder(ctx, reminder.ID, &types.ReminderUpdate{Title: &newTitle}))

	loaded, err := store.GetReminder(ctx, reminder.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", loaded.Title)
	// untouched fields survive
	assert.Equal(t, "2024-01-01 09:00:00", loaded.ReminderTime)

	err = store.UpdateReminder(ctx, "missing", &types.ReminderUpdate{Title: &newTitle})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestReminderDelete(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	reminder := testReminder("user-1", "gone", "2024-01-01 09:00:00")
	require.NoError(t, store.CreateReminder(ctx, reminder))
	require.NoError(t, store.DeleteReminder(ctx, reminder.ID))

	_, err := store.GetReminder(ctx, reminder.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, store.DeleteReminder(ctx, reminder.ID), types.ErrNotFound)
}

func TestMarkCompleted(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	first := testReminder("user-1", "first", "2024-01-01 09:00:00")
	second := testReminder("user-1", "second", "2024-01-01 10:00:00")
	require.NoError(t, store.CreateReminder(ctx, first))
	require.NoError(t, store.CreateReminder(ctx, second))

	require.NoError(t, store.MarkCompleted(ctx, first.ID))

	loadedFirst, err := store.GetReminder(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, loadedFirst.IsCompleted)

	// only the targeted reminder flips
	loadedSecond, err := store.GetReminder(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, loadedSecond.IsCompleted)
}

func TestConcurrentWritesBothSurvive(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	ids := make([]string, 20)
	for i := range ids {
		r := testReminder("user-1", fmt.Sprintf("r%d", i), "2024-01-01 09:00:00")
		require.NoError(t, store.CreateReminder(ctx, r))
		ids[i] = r.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, store.MarkCompleted(ctx, id))
		}(id)
	}
	wg.Wait()

	all, err := store.ListReminders(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(ids))
	for _, r := range all {
		assert.True(t, r.IsCompleted, "reminder %s lost its update", r.ID)
	}
}

func TestMissingFileReadsAsEmpty(t *testing.T) {
	store := setupCsvStorage(t)
	reminders, err := store.ListReminders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestMalformedTimeSurvivesRoundTrip(t *testing.T) {
	store := setupCsvStorage(t)
	ctx := context.Background()

	reminder := testReminder("user-1", "broken", "not-a-time")
	require.NoError(t, store.CreateReminder(ctx, reminder))

	loaded, err := store.GetReminder(ctx, reminder.ID)
	require.NoError(t, err)
	assert.Equal(t, "not-a-time", loaded.ReminderTime)
	_, pErr := loaded.DueAt()
	assert.Error(t, pErr)
}
