// Package treatments records treatment outcomes against appointments.
// Recording a treatment marks the appointment Completed in the same
// transaction; re-recording overwrites the existing row.
package treatments

// Treatment is the clinical record attached to one appointment. The
// appointment_id uniqueness means an appointment carries at most one row.
type Treatment struct {
	ID            string `json:"id"`
	AppointmentID string `json:"appointment_id"`
	TreatmentName string `json:"treatment_name"`
	Diagnosis     string `json:"diagnosis"`
	Prescription  string `json:"prescription"`
	Notes         string `json:"notes"`
}

// UpsertRequest is the request body for recording a treatment.
type UpsertRequest struct {
	TreatmentName string `json:"treatment_name"`
	Diagnosis     string `json:"diagnosis"`
	Prescription  string `json:"prescription"`
	Notes         string `json:"notes"`
}

// Validate checks the required treatment fields.
func (r *UpsertRequest) Validate() error {
	if r.TreatmentName == "" {
		return ErrMissingName
	}
	return nil
}

// Detail is a treatment joined with its appointment context for the doctor
// view.
type Detail struct {
	Treatment
	Date        string `json:"date"`
	Time        string `json:"time"`
	PatientName string `json:"patient_name"`
}

// HistoryEntry is one completed appointment with its treatment data, as seen
// in a doctor's view of a patient's history.
type HistoryEntry struct {
	AppointmentID string  `json:"appointment_id"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	DoctorName    string  `json:"doctor_name"`
	TreatmentName *string `json:"treatment_name,omitempty"`
	Diagnosis     *string `json:"diagnosis,omitempty"`
	Prescription  *string `json:"prescription,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}
