package treatments

import "errors"

var (
	// ErrMissingName is returned when a treatment record has no name.
	ErrMissingName = errors.New("treatment name is required")

	// ErrNotFound is returned when an appointment has no treatment record.
	ErrNotFound = errors.New("treatment not found")

	// ErrAppointmentNotFound is returned when the target appointment does not
	// exist.
	ErrAppointmentNotFound = errors.New("appointment not found")
)
