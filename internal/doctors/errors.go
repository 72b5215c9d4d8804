package doctors

import "errors"

var (
	// ErrMissingCredentials is returned when a create request lacks a
	// username or password.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrNotFound is returned when a doctor id has no row.
	ErrNotFound = errors.New("doctor not found")
)
