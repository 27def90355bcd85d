package appointments

import "errors"

var (
	// ErrNotFound is returned when no appointment matches the lookup.
	ErrNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned when the doctor already has an active
	// appointment at the requested date and time.
	ErrSlotTaken = errors.New("slot is already booked")

	// ErrPastTime is returned when the requested date and time is before now.
	ErrPastTime = errors.New("appointment time is in the past")

	// ErrInvalidStatus is returned for status values outside the known set.
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrTerminalStatus is returned when transitioning out of CANCELLED or
	// COMPLETED, or along any other disallowed edge.
	ErrTerminalStatus = errors.New("appointment status cannot change")

	// ErrForbidden is returned when the caller may not act on the appointment.
	ErrForbidden = errors.New("not allowed to modify this appointment")

	// ErrInvalidDate is returned for dates that do not parse as YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrDiagnosisRequired is returned when completing without a diagnosis.
	ErrDiagnosisRequired = errors.New("diagnosis is required to complete an appointment")
)
