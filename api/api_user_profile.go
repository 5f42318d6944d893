package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/alertify/go-alertify-server/api/interceptors"
	"github.com/alertify/go-alertify-server/email"
	"github.com/alertify/go-alertify-server/services"
	"github.com/alertify/go-alertify-server/types"
)

type UserProfileApi struct {
	userService *services.UserService
	sender      email.Sender
	validate    *validator.Validate
}

func NewUserProfileApi(userService *services.UserService, sender email.Sender) *UserProfileApi {
	return &UserProfileApi{
		userService: userService,
		sender:      sender,
		validate:    validator.New(),
	}
}

func profileOutput(user *types.User) *types.OutputUserProfile {
	return &types.OutputUserProfile{
		ID:               user.ID,
		Email:            user.Email,
		Bio:              user.Bio,
		ProfilePicture:   user.ProfilePicture,
		EmailCredentials: user.EmailCredentials,
		HasAppPassword:   user.AppPassword != "",
	}
}

// Get logged in users profile
// @Security Bearer
// @Summary Get logged in users profile
// @Tags User Profile
// @Success 200 {object} types.OutputUserProfile
// @Produce json
// @Router /api/v1/user/me [get]
func (a *UserProfileApi) GetProfile(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	user, err := a.userService.Get(c.Request.Context(), userID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileOutput(user))
}

// Update bio and profile picture reference
// @Security Bearer
// @Summary Update bio and profile picture reference
// @Tags User Profile
// @Success 200 {object} types.OutputUserProfile
// @Accept json
// @Produce json
// @Router /api/v1/user/me [put]
func (a *UserProfileApi) UpdateProfile(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	var input types.InputProfile
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	user, err := a.userService.UpdateProfile(c.Request.Context(), userID, input.Bio, input.ProfilePicture)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileOutput(user))
}

// Set per-user sender credentials
// @Security Bearer
// @Summary Set per-user sender credentials
// @Description Verifies the submitted credentials with a test email before saving them
// @Tags User Profile
// @Success 200 {object} types.OutputMessage
// @Failure 400 {object} api.ApiError "credentials rejected by the mail server"
// @Accept json
// @Produce json
// @Router /api/v1/user/me/credentials [put]
func (a *UserProfileApi) UpdateEmailCredentials(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	var input types.InputEmailCredentials
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := a.validate.Struct(input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}

	// reject credentials the mail server doesn't accept
	recipient := input.TestRecipient
	if recipient == "" {
		recipient = input.SenderEmail
	}
	creds := email.Credentials{Address: input.SenderEmail, AppPassword: input.AppPassword}
	if sErr := a.sender.Send(c.Request.Context(), creds, email.NewTestMessage(recipient)); sErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "test email failed: check the sender address and app password")
		return
	}

	if err := a.userService.UpdateEmailCredentials(c.Request.Context(), userID, input.SenderEmail, input.AppPassword); err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputMessage{Message: "email credentials saved"})
}

// Send a test email with the saved credentials
// @Security Bearer
// @Summary Send a test email with the saved credentials
// @Tags User Profile
// @Success 200 {object} types.OutputMessage
// @Failure 400 {object} api.ApiError "credentials not set or rejected"
// @Produce json
// @Router /api/v1/user/me/credentials/test [post]
func (a *UserProfileApi) SendTestEmail(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	user, err := a.userService.Get(c.Request.Context(), userID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	if !user.HasSenderCredentials() {
		ServiceError(c, types.ErrNoCredentials)
		return
	}
	creds := email.Credentials{Address: user.EmailCredentials, AppPassword: user.AppPassword}
	if sErr := a.sender.Send(c.Request.Context(), creds, email.NewTestMessage(user.Email)); sErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "test email failed: check the sender address and app password")
		return
	}
	c.JSON(http.StatusOK, types.OutputMessage{Message: "test email sent"})
}

// Send an email confirmation code
// @Security Bearer
// @Summary Send an email confirmation code
// @Tags User Profile
// @Success 200 {object} types.OutputMessage
// @Produce json
// @Router /api/v1/user/me/confirm [post]
func (a *UserProfileApi) RequestEmailConfirmation(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	if err := a.userService.RequestEmailConfirmation(c.Request.Context(), userID); err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputMessage{Message: "confirmation code sent"})
}

// Confirm the account email with the mailed code
// @Security Bearer
// @Summary Confirm the account email with the mailed code
// @Tags User Profile
// @Success 200 {object} types.OutputMessage
// @Failure 400 {object} api.ApiError "wrong code"
// @Accept json
// @Produce json
// @Router /api/v1/user/me/confirm [put]
func (a *UserProfileApi) ConfirmEmail(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	var input types.InputConfirmEmail
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := a.userService.ConfirmEmail(c.Request.Context(), userID, input.Otp); err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputMessage{Message: "email confirmed"})
}
