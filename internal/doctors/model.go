package doctors

import (
	"github.com/medisched/medisched/internal/accounts"
)

// Doctor statuses. New registrations start PENDING until an admin approves.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusPending  = "PENDING"
)

// Doctor is a practitioner account with its public profile and fee settings.
type Doctor struct {
	ID string `json:"id"`
	accounts.Account
	Specialization       string `json:"specialization"`
	Qualification        string `json:"qualification"`
	Experience           string `json:"experience"`
	ClinicAddress        string `json:"clinicAddress"`
	Status               string `json:"status"`
	ProfilePicture       string `json:"profilePicture,omitempty"`
	CredentialsFile      string `json:"credentialsFile,omitempty"`
	ConsultationFeeCents int64  `json:"consultationFeeCents"`
	// Schedule is the raw availability schedule JSON as stored. Empty when
	// the doctor has never set one; may contain junk written by old clients.
	Schedule string `json:"availabilitySchedule,omitempty"`
}

// ValidStatus reports whether s is one of the known doctor statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}
