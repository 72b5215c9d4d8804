// Package doctors manages doctor accounts and profiles. Doctors are created
// by admins only; each profile hangs off a users row and optionally belongs
// to a department.
package doctors

// Doctor is a doctor profile joined with its user identity.
type Doctor struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	ContactInfo    string  `json:"contact_info"`
	Specialization string  `json:"specialization"`
	DepartmentID   *string `json:"department_id,omitempty"`
}

// Shift is a daily working window used to seed a new doctor's availability.
type Shift struct {
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

// CreateRequest is the admin request body for creating a doctor. When
// DefaultShift is set, the doctor's availability is seeded for the rolling
// horizon starting today.
type CreateRequest struct {
	Username       string  `json:"username"`
	Password       string  `json:"password"`
	Name           string  `json:"name"`
	Contact        string  `json:"contact_info"`
	Specialization string  `json:"specialization"`
	DepartmentID   *string `json:"department_id,omitempty"`
	DefaultShift   *Shift  `json:"default_shift,omitempty"`
}

// Validate checks the required fields.
func (r *CreateRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// UpdateRequest is the admin request body for editing a doctor.
type UpdateRequest struct {
	Name           string  `json:"name"`
	Contact        string  `json:"contact_info"`
	Specialization string  `json:"specialization"`
	DepartmentID   *string `json:"department_id,omitempty"`
}
