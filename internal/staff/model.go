package staff

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no staff member matches the lookup.
	ErrNotFound = errors.New("staff member not found")
)

// Member statuses.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Member is a non-clinical staff record managed by administrators.
type Member struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
