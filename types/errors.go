package types

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrUserExists is returned on registration with an already taken email
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidEmail is returned when the email is invalid
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidPassword is returned when login credentials don't match
	ErrInvalidPassword = errors.New("invalid password")

	// ErrNoCredentials signals the user never configured sender credentials
	ErrNoCredentials = errors.New("email credentials not set")

	// ErrTokenExpired is returned for expired reset tokens
	ErrTokenExpired = errors.New("token expired")

	// ErrConflict is returned when the resource conflicts
	ErrConflict = errors.New("conflict")

	// ErrBadRequest for malformed input at the storage boundary
	ErrBadRequest = errors.New("bad request")

	// ErrInternal (for unhandled exceptions)
	ErrInternal = errors.New("internal error")
)
