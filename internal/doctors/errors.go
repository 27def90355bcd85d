package doctors

import "errors"

var (
	// ErrNotFound is returned when no doctor matches the lookup.
	ErrNotFound = errors.New("doctor not found")

	// ErrEmailTaken is returned when the email belongs to another doctor.
	ErrEmailTaken = errors.New("email is already in use")

	// ErrInvalidStatus is returned for status values outside the known set.
	ErrInvalidStatus = errors.New("invalid doctor status")
)
