// Package appointments implements booking, cancellation and status tracking
// for doctor/patient appointments. A slot is the (doctor, date, time) tuple;
// the store's uniqueness constraint on it is the only double-booking guard.
package appointments

// Status is the lifecycle state of an appointment. Scheduled transitions to
// Completed or Cancelled; both are terminal, though status writes are not
// validated against the current state.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a booked slot.
type Appointment struct {
	ID            string `json:"id"`
	PatientID     string `json:"patient_id"`
	DoctorID      string `json:"doctor_id"`
	Date          string `json:"date"` // YYYY-MM-DD
	Time          string `json:"time"` // HH:MM
	Status        Status `json:"status"`
	TreatmentType string `json:"treatment_type"`
}

// BookRequest is the request body for booking an appointment.
type BookRequest struct {
	PatientID     string `json:"-"`
	DoctorID      string `json:"doctor_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	TreatmentType string `json:"treatment_type"`
}

// Validate checks the required booking fields.
func (r *BookRequest) Validate() error {
	if r.PatientID == "" || r.DoctorID == "" || r.Date == "" || r.Time == "" {
		return ErrMissingFields
	}
	return nil
}

// DoctorView is an appointment row projected for doctor-facing lists,
// joined with the patient's identity.
type DoctorView struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        Status `json:"status"`
	TreatmentType string `json:"treatment_type"`
	PatientID     string `json:"patient_id"`
	PatientName   string `json:"patient_name"`
}

// PatientView is an appointment row projected for patient-facing lists,
// joined with the doctor's identity and any recorded treatment.
type PatientView struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	Status        Status  `json:"status"`
	DoctorName    string  `json:"doctor_name"`
	TreatmentName *string `json:"treatment_name,omitempty"`
	Diagnosis     *string `json:"diagnosis,omitempty"`
	Prescription  *string `json:"prescription,omitempty"`
}

// AdminView is an appointment row projected for the admin list.
type AdminView struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      Status `json:"status"`
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
}
