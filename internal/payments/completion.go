package payments

import (
	"context"
	"fmt"
)

// CompletionWriter applies the flat consultation fee when an appointment is
// completed. Transaction ids are derived from the appointment id so the
// write is idempotent together with the existence check.
type CompletionWriter struct {
	repo     Repository
	feeCents int64
	currency string
}

// NewCompletionWriter creates the writer with the configured fee.
func NewCompletionWriter(repo Repository, feeCents int64, currency string) *CompletionWriter {
	if feeCents <= 0 {
		feeCents = 15000
	}
	if currency == "" {
		currency = "USD"
	}
	return &CompletionWriter{repo: repo, feeCents: feeCents, currency: currency}
}

// ExistsByAppointment reports whether the appointment already has a payment.
func (c *CompletionWriter) ExistsByAppointment(ctx context.Context, appointmentID int64) (bool, error) {
	return c.repo.ExistsByAppointment(ctx, appointmentID)
}

// CreateCompletion inserts the consultation fee for a completed appointment.
func (c *CompletionWriter) CreateCompletion(ctx context.Context, appointmentID, patientID int64, doctorID string) error {
	_, err := c.repo.Create(ctx, &Payment{
		AppointmentID: appointmentID,
		PatientID:     patientID,
		DoctorID:      doctorID,
		AmountCents:   c.feeCents,
		Currency:      c.currency,
		Method:        "CASH",
		Status:        StatusCompleted,
		TransactionID: fmt.Sprintf("TXN-%d", appointmentID),
	})
	return err
}
