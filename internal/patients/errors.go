package patients

import "errors"

// ErrNotFound is returned when a patient id has no row.
var ErrNotFound = errors.New("patient not found")
