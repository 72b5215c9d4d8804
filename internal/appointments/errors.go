package appointments

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFields is returned when a booking request is incomplete.
	ErrMissingFields = errors.New("doctor, date and time are required")

	// ErrSlotTaken is returned when the (doctor, date, time) slot already has
	// an appointment row. Cancelled rows still occupy their slot.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrNotFound is returned when an appointment id has no row.
	ErrNotFound = errors.New("appointment not found")

	// ErrInvalidStatus is returned when a status write names an unknown state.
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// OutOfWindowError reports a booking time outside the doctor's declared
// window, carrying the valid range for user display.
type OutOfWindowError struct {
	Start string
	End   string
}

func (e *OutOfWindowError) Error() string {
	return fmt.Sprintf("doctor is only available between %s and %s", e.Start, e.End)
}
