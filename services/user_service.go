package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/alertify/go-alertify-server/email"
	"github.com/alertify/go-alertify-server/repository"
	"github.com/alertify/go-alertify-server/types"
)

const resetTokenTtl = time.Hour

type UserService struct {
	store        repository.Storage
	systemMailer *email.SystemMailer
}

func NewUserService(store repository.Storage, systemMailer *email.SystemMailer) *UserService {
	if store == nil {
		panic("store cannot be nil")
	}
	return &UserService{store: store, systemMailer: systemMailer}
}

// Register creates a new user with a unique email.
func (us *UserService) Register(ctx context.Context, userEmail, password string) (*types.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &types.User{
		ID:               uuid.NewString(),
		Email:            userEmail,
		PasswordHash:     string(hash),
		IsEmailConfirmed: true, // confirmed by default, OTP confirmation is optional
	}
	if cErr := us.store.CreateUser(ctx, user); cErr != nil {
		return nil, cErr
	}
	return user, nil
}

// Authenticate checks the login credentials. A missing user and a wrong
// password both come back as ErrInvalidPassword.
func (us *UserService) Authenticate(ctx context.Context, userEmail, password string) (*types.User, error) {
	user, err := us.store.GetUserByEmail(ctx, userEmail)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrInvalidPassword
		}
		return nil, err
	}
	if bErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); bErr != nil {
		return nil, types.ErrInvalidPassword
	}
	return user, nil
}

func (us *UserService) Get(ctx context.Context, userID string) (*types.User, error) {
	return us.store.GetUserByID(ctx, userID)
}

func (us *UserService) UpdateProfile(ctx context.Context, userID, bio, profilePicture string) (*types.User, error) {
	user, err := us.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Bio = bio
	user.ProfilePicture = profilePicture
	if uErr := us.store.UpdateUser(ctx, user); uErr != nil {
		return nil, uErr
	}
	return user, nil
}

// UpdateEmailCredentials stores the per-user sender address and app password
// used by the reminder dispatch path.
func (us *UserService) UpdateEmailCredentials(ctx context.Context, userID, senderEmail, appPassword string) error {
	user, err := us.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	user.EmailCredentials = senderEmail
	user.AppPassword = appPassword
	return us.store.UpdateUser(ctx, user)
}

// SenderCredentials resolves the outbound mail credentials for a user, fresh
// per call so settings changes take effect on the next cycle. Returns
// ErrNoCredentials when the user never configured them.
func (us *UserService) SenderCredentials(ctx context.Context, userID string) (email.Credentials, error) {
	user, err := us.store.GetUserByID(ctx, userID)
	if err != nil {
		return email.Credentials{}, err
	}
	if !user.HasSenderCredentials() {
		return email.Credentials{}, types.ErrNoCredentials
	}
	return email.Credentials{Address: user.EmailCredentials, AppPassword: user.AppPassword}, nil
}

// StartPasswordReset stores a fresh reset token with a one hour expiry and
// emails the reset link through the system sender.
func (us *UserService) StartPasswordReset(ctx context.Context, userEmail string) error {
	user, err := us.store.GetUserByEmail(ctx, userEmail)
	if err != nil {
		return err
	}
	token := uuid.NewString()
	user.ResetToken = token
	user.ResetTokenExpiry = time.Now().UTC().Add(resetTokenTtl).Format(time.RFC3339)
	if uErr := us.store.UpdateUser(ctx, user); uErr != nil {
		return uErr
	}
	return us.systemMailer.SendPasswordReset(ctx, user.Email, token)
}

// ResetPassword consumes a reset token and sets the new password.
func (us *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := us.store.GetUserByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if user.ResetTokenExpiry != "" {
		expiry, pErr := time.Parse(time.RFC3339, user.ResetTokenExpiry)
		if pErr != nil || time.Now().UTC().After(expiry) {
			return types.ErrTokenExpired
		}
	}
	hash, hErr := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if hErr != nil {
		return hErr
	}
	user.PasswordHash = string(hash)
	user.ResetToken = ""
	user.ResetTokenExpiry = ""
	return us.store.UpdateUser(ctx, user)
}

// RequestEmailConfirmation generates a 6 digit code, stores it and mails it
// through the system sender.
func (us *UserService) RequestEmailConfirmation(ctx context.Context, userID string) error {
	user, err := us.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	otp, oErr := generateOtp()
	if oErr != nil {
		return oErr
	}
	user.VerificationToken = otp
	user.IsEmailConfirmed = false
	if uErr := us.store.UpdateUser(ctx, user); uErr != nil {
		return uErr
	}
	return us.systemMailer.SendConfirmationOtp(ctx, user.Email, otp)
}

func (us *UserService) ConfirmEmail(ctx context.Context, userID, otp string) error {
	user, err := us.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.VerificationToken == "" || user.VerificationToken != otp {
		return types.ErrBadRequest
	}
	user.VerificationToken = ""
	user.IsEmailConfirmed = true
	return us.store.UpdateUser(ctx, user)
}

func generateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
