package appointments

import "time"

// Status is the appointment lifecycle state.
type Status string

// Appointment statuses. CANCELLED and COMPLETED are terminal.
const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus validates a status value from the wire.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransition reports whether the move from s to target is allowed.
// PENDING -> {CONFIRMED, CANCELLED}; CONFIRMED -> {COMPLETED, CANCELLED}.
func (s Status) CanTransition(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCompleted || target == StatusCancelled
	}
	return false
}

// Appointment ties a patient to a doctor at a date and time. Date, time,
// doctor and patient are immutable once created; only status changes.
// Patient and doctor display fields are denormalized copies refreshed from
// the source rows when empty.
type Appointment struct {
	ID        int64  `json:"id"`
	PatientID int64  `json:"patientId"`
	DoctorID  string `json:"doctorId"`

	PatientName          string `json:"patientName,omitempty"`
	PatientEmail         string `json:"patientEmail,omitempty"`
	DoctorName           string `json:"doctorName,omitempty"`
	DoctorEmail          string `json:"doctorEmail,omitempty"`
	DoctorSpecialization string `json:"doctorSpecialization,omitempty"`

	Date   string `json:"date"` // YYYY-MM-DD
	Time   string `json:"time"` // HH:MM
	Type   string `json:"type,omitempty"`
	Notes  string `json:"notes,omitempty"`
	Status Status `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StartsAt combines the date and time fields into a wall-clock instant.
func (a *Appointment) StartsAt() (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, time.Local)
}
