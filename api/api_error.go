package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/alertify/go-alertify-server/types"
)

type ApiError struct {
	// Code is the HTTP status code
	Code int `json:"code"`
	// Message is the error message
	Message string `json:"message"`
}

func ApiErrorf(c *gin.Context, code int, format string, args ...interface{}) ApiError {
	ar := ApiError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
	c.AbortWithStatusJSON(code, ar)
	return ar
}

// ServiceError maps the shared sentinel errors onto HTTP statuses.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		ApiErrorf(c, http.StatusNotFound, "not found")
	case errors.Is(err, types.ErrUserExists):
		ApiErrorf(c, http.StatusConflict, "email already registered")
	case errors.Is(err, types.ErrInvalidPassword):
		ApiErrorf(c, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, types.ErrNoCredentials):
		ApiErrorf(c, http.StatusBadRequest, "email credentials not set")
	case errors.Is(err, types.ErrTokenExpired):
		ApiErrorf(c, http.StatusBadRequest, "token expired")
	case errors.Is(err, types.ErrBadRequest):
		ApiErrorf(c, http.StatusBadRequest, "%s", err.Error())
	default:
		ApiErrorf(c, http.StatusInternalServerError, "internal server error")
	}
}

func ValidatorErrorToUser(err validator.ValidationErrors) string {
	var errorMessages []string
	for _, err := range err {
		switch err.Tag() {
		case "required":
			errorMessages = append(errorMessages, fmt.Sprintf("%s is required", err.Field()))
		case "email":
			errorMessages = append(errorMessages, fmt.Sprintf("%s is not a valid email", err.Field()))
		case "min":
			errorMessages = append(errorMessages, fmt.Sprintf("%s is too short", err.Field()))
		default:
			errorMessages = append(errorMessages, fmt.Sprintf("validation failed on field %s", err.Field()))
		}
	}
	return strings.Join(errorMessages, ". ")
}
