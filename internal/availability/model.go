// Package availability manages the time windows doctors declare for
// accepting bookings, one window per doctor per calendar date. Re-declaring
// a date replaces its previous window outright.
package availability

import (
	"errors"
	"regexp"
)

// Window is a doctor's declared start/end time bound for one calendar date.
type Window struct {
	ID        string `json:"id,omitempty"`
	DoctorID  string `json:"doctor_id"`
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

var (
	// ErrInvalidWindow is returned when a window has malformed or reversed bounds.
	ErrInvalidWindow = errors.New("availability: invalid window")

	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Validate checks date/time formats and ordering. ISO dates and zero-padded
// HH:MM times compare correctly as strings, which the stores rely on.
func (w *Window) Validate() error {
	if !dateRe.MatchString(w.Date) {
		return ErrInvalidWindow
	}
	if !timeRe.MatchString(w.StartTime) || !timeRe.MatchString(w.EndTime) {
		return ErrInvalidWindow
	}
	if w.StartTime >= w.EndTime {
		return ErrInvalidWindow
	}
	return nil
}

// Contains reports whether a booking time falls inside the window,
// boundaries included.
func (w *Window) Contains(timeOfDay string) bool {
	return w.StartTime <= timeOfDay && timeOfDay <= w.EndTime
}
