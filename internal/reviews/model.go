package reviews

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no review matches the lookup.
	ErrNotFound = errors.New("review not found")

	// ErrInvalidRating is returned for ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Review is a patient's rating of a doctor. Anonymous reviews keep the
// patient id on the row but hide the name in projections.
type Review struct {
	ID          int64     `json:"id"`
	DoctorID    string    `json:"doctorId"`
	PatientID   int64     `json:"patientId"`
	PatientName string    `json:"patientName,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	Anonymous   bool      `json:"anonymous"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate checks the rating bounds.
func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
