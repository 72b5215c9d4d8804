package users

import "errors"

var (
	// ErrMissingUsername is returned when the username is blank.
	ErrMissingUsername = errors.New("username is required")

	// ErrMissingPassword is returned when the password is blank.
	ErrMissingPassword = errors.New("password is required")

	// ErrDuplicateUsername is returned when the handle is already taken.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when a user id has no row.
	ErrUserNotFound = errors.New("user not found")
)
