// Package patients manages patient profiles. Patient accounts are created
// through self-registration (internal/users); this package covers the admin
// roster and the patient's own profile.
package patients

// Patient is a patient profile joined with its user identity.
type Patient struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	ContactInfo    string `json:"contact_info"`
	MedicalHistory string `json:"medical_history"`
}

// UpdateRequest is the request body for editing a patient. Admins and the
// patient's own profile endpoint share it.
type UpdateRequest struct {
	Name           string `json:"name"`
	Contact        string `json:"contact_info"`
	MedicalHistory string `json:"medical_history"`
}
