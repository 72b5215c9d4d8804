package users

import "strings"

// Role is the access level attached to a user account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// User is a login account. Doctors and patients own exactly one profile row
// in their respective tables; admins own none.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	ContactInfo  string `json:"contact_info"`
}

// RegisterRequest is the request body for patient self-registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Contact  string `json:"contact"`
}

// Validate validates the registration request.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrMissingUsername
	}
	if r.Password == "" {
		return ErrMissingPassword
	}
	return nil
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
