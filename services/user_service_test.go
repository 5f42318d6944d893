package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertify/go-alertify-server/email"
	"github.com/alertify/go-alertify-server/global"
	"github.com/alertify/go-alertify-server/repository"
	"github.com/alertify/go-alertify-server/types"
)

// captureSender collects outgoing messages instead of dialing SMTP.
type captureSender struct {
	mu   sync.Mutex
	msgs []email.Message
}

func (c *captureSender) Send(ctx context.Context, creds email.Credentials, msg *email.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, *msg)
	return nil
}

func (c *captureSender) last(t *testing.T) email.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.msgs)
	return c.msgs[len(c.msgs)-1]
}

func setupUserService(t *testing.T) (*UserService, *captureSender, repository.Storage) {
	store, err := repository.NewCsvStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	sender := &captureSender{}
	mailer := email.NewSystemMailer(sender, global.SystemConfig{
		SenderEmail: "system@alertify.test",
		AppPassword: "system-secret",
		BaseUrl:     "https://alertify.test",
	})
	return NewUserService(store, mailer), sender, store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	us, _, _ := setupUserService(t)
	ctx := context.Background()

	user, err := us.Register(ctx, "jane@example.com", "s3cret-pw")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret-pw", user.PasswordHash)

	authed, err := us.Authenticate(ctx, "jane@example.com", "s3cret-pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	us, _, _ := setupUserService(t)
	ctx := context.Background()

	_, err := us.Register(ctx, "jane@example.com", "s3cret-pw")
	require.NoError(t, err)

	_, err = us.Authenticate(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, types.ErrInvalidPassword)

	// unknown accounts fail the same way, so logins leak nothing
	_, err = us.Authenticate(ctx, "nobody@example.com", "s3cret-pw")
	assert.ErrorIs(t, err, types.ErrInvalidPassword)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	us, _, _ := setupUserService(t)
	ctx := context.Background()

	_, err := us.Register(ctx, "jane@example.com", "s3cret-pw")
	require.NoError(t, err)

	_, err = us.Register(ctx, "jane@example.com", "other-pw")
	assert.ErrorIs(t, err, types.ErrUserExists)
}

func TestSenderCredentials(t *testing.T) {
	us, _, _ := setupUserService(t)
	ctx := context.Background()

	user, err := us.Register(ctx, "jane@example.com", "s3cret-pw")
	require.NoError(t, err)

	_, err = us.SenderCredentials(ctx, user.ID)
	assert.ErrorIs(t, err, types.ErrNoCredentials)

	require.NoError(t, us.UpdateEmailCredentials(ctx, user.ID, "jane@gmail.com", "app-pw"))

	creds, err := us.SenderCredentials(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@gmail.com", creds.Address)
	assert.Equal(t, "app-pw", creds.AppPassword)
}

func TestPasswordResetFlow(t *testing.T) {
	us, sender, store := setupUserService(t)
	ctx := context.Background()

	user, err := us.Register(ctx, "jane@example.com", "old-pw")
	require.NoError(t, err)

	require.NoError(t, us.StartPasswordReset(ctx, "jane@example.com"))

	stored, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ResetToken)

	msg := sender.last(t)
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Contains(t, msg.Body, "https://alertify.test/reset-password?token="+stored.ResetToken)

	require.NoError(t, us.ResetPassword(ctx, stored.ResetToken, "new-pw"))

	_, err = us.Authenticate(ctx, "jane@example.com", "old-pw")
	assert.ErrorIs(t, err, types.ErrInvalidPassword)
	_, err = us.Authenticate(ctx, "jane@example.com", "new-pw")
	assert.NoError(t, err)

	// the token is single use
	err = us.ResetPassword(ctx, stored.ResetToken, "again-pw")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	us, _, store := setupUserService(t)
	ctx := context.Background()

	user, err := us.Register(ctx, "jane@example.com", "old-pw")
	require.NoError(t, err)

	user.ResetToken = "stale-token"
	user.ResetTokenExpiry = time.Now().UTC().Add(-time.Minute).Format(time.RFC3339)
	require.NoError(t, store.UpdateUser(ctx, user))

	err = us.ResetPassword(ctx, "stale-token", "new-pw")
	assert.ErrorIs(t, err, types.ErrTokenExpired)
}

func TestStartPasswordResetUnknownEmail(t *testing.T) {
	us, _, _ := setupUserService(t)

	err := us.StartPasswordReset(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestEmailConfirmationFlow(t *testing.T) {
	us, sender, store := setupUserService(t)
	ctx := context.Background()

	user, err := us.Register(ctx, "jane@example.com", "s3cret-pw")
	require.NoError(t, err)

	require.NoError(t, us.RequestEmailConfirmation(ctx, user.ID))

	stored, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored.VerificationToken, 6)
	assert.False(t, stored.IsEmailConfirmed)
	assert.Contains(t, sender.last(t).Body, stored.VerificationToken)

	assert.ErrorIs(t, us.ConfirmEmail(ctx, user.ID, "000000x"), types.ErrBadRequest)

	require.NoError(t, us.ConfirmEmail(ctx, user.ID, stored.VerificationToken))
	confirmed, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.IsEmailConfirmed)
	assert.Empty(t, confirmed.VerificationToken)
}

func TestUpdateProfile(t *testing.T) {
	us, _, _ := setupUserService(t)
	ctx := context.Background()

	user, err := us.Register(ctx, "jane@example.com", "s3cret-pw")
	require.NoError(t, err)

	updated, err := us.UpdateProfile(ctx, user.ID, "night owl", "avatars/jane.png")
	require.NoError(t, err)
	assert.Equal(t, "night owl", updated.Bio)
	assert.Equal(t, "avatars/jane.png", updated.ProfilePicture)

	loaded, err := us.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "night owl", loaded.Bio)
}

func TestGenerateOtpFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp, err := generateOtp()
		require.NoError(t, err)
		require.Len(t, otp, 6)
		assert.Equal(t, "", strings.TrimLeft(otp, "0123456789"))
	}
}
