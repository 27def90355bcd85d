package payments

import "time"

// Payment statuses.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusRefunded  = "REFUNDED"
)

// Payment records money owed or collected for an appointment. Amounts are
// integer cents. At most one payment exists per appointment; enforced by an
// existence check before insert rather than a constraint.
type Payment struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointmentId"`
	PatientID     int64     `json:"patientId"`
	DoctorID      string    `json:"doctorId"`
	AmountCents   int64     `json:"amountCents"`
	Currency      string    `json:"currency"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId"`
	CreatedAt     time.Time `json:"createdAt"`
}
