package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/alertify/go-alertify-server/api/interceptors"
	"github.com/alertify/go-alertify-server/global"
	"github.com/alertify/go-alertify-server/services"
	"github.com/alertify/go-alertify-server/types"
)

type UserAccountApi struct {
	userService *services.UserService
	validate    *validator.Validate
}

func NewUserAccountApi(userService *services.UserService) *UserAccountApi {
	return &UserAccountApi{
		userService: userService,
		validate:    validator.New(),
	}
}

// Register a new account
// @Summary Register a new account
// @Description Creates a user with a unique email address
// @Tags User Account
// @Success 201 {object} types.OutputToken
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 409 {object} api.ApiError "email already registered"
// @Accept json
// @Produce json
// @Router /api/v1/register [post]
func (ua *UserAccountApi) Register(c *gin.Context) {
	var input types.InputEmailPassword
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := ua.validate.Struct(input); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			ApiErrorf(c, http.StatusBadRequest, "%s", ValidatorErrorToUser(vErrs))
			return
		}
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	user, rErr := ua.userService.Register(c.Request.Context(), input.Email, input.Password)
	if rErr != nil {
		ServiceError(c, rErr)
		return
	}
	token, tErr := interceptors.SignToken(user.ID)
	if tErr != nil {
		global.Logger.Log("msg", "failed to sign session token", "error", tErr.Error())
		ApiErrorf(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusCreated, types.OutputToken{Token: token})
}

// Login with email and password
// @Summary Login with email and password
// @Description Returns a session token
// @Tags User Account
// @Success 200 {object} types.OutputToken
// @Failure 401 {object} api.ApiError "invalid email or password"
// @Accept json
// @Produce json
// @Router /api/v1/login [post]
func (ua *UserAccountApi) Login(c *gin.Context) {
	var input types.InputEmailPassword
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	user, aErr := ua.userService.Authenticate(c.Request.Context(), input.Email, input.Password)
	if aErr != nil {
		ServiceError(c, aErr)
		return
	}
	token, tErr := interceptors.SignToken(user.ID)
	if tErr != nil {
		global.Logger.Log("msg", "failed to sign session token", "error", tErr.Error())
		ApiErrorf(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, types.OutputToken{Token: token})
}

// Request a password reset email
// @Summary Request a password reset email
// @Description Always answers 200 so account existence is not leaked
// @Tags User Account
// @Success 200 {object} types.OutputMessage
// @Accept json
// @Produce json
// @Router /api/v1/forgot-password [post]
func (ua *UserAccountApi) ForgotPassword(c *gin.Context) {
	var input types.InputForgotPassword
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := ua.userService.StartPasswordReset(c.Request.Context(), input.Email); err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			global.Logger.Log("msg", "failed to start password reset", "error", err.Error())
		}
	}
	c.JSON(http.StatusOK, types.OutputMessage{Message: "if the account exists, a reset email was sent"})
}

// Reset the password with a token from the reset email
// @Summary Reset the password
// @Tags User Account
// @Success 200 {object} types.OutputMessage
// @Failure 400 {object} api.ApiError "invalid or expired token"
// @Accept json
// @Produce json
// @Router /api/v1/reset-password [post]
func (ua *UserAccountApi) ResetPassword(c *gin.Context) {
	var input types.InputResetPassword
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := ua.validate.Struct(input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := ua.userService.ResetPassword(c.Request.Context(), input.Token, input.NewPassword); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			ApiErrorf(c, http.StatusBadRequest, "invalid reset token")
			return
		}
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputMessage{Message: "password updated"})
}
