package patients

import "errors"

var (
	// ErrNotFound is returned when no patient matches the lookup.
	ErrNotFound = errors.New("patient not found")

	// ErrEmailTaken is returned when the email belongs to another patient.
	ErrEmailTaken = errors.New("email is already in use")
)
