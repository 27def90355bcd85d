package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/medisched/medisched/pkg/logging"
)

// AppointmentEvent carries the fields the notification templates need.
type AppointmentEvent struct {
	AppointmentID int64
	PatientID     int64
	PatientName   string
	PatientEmail  string
	DoctorID      string
	DoctorName    string
	DoctorEmail   string
	Date          string
	Time          string
}

// Service writes notification rows and sends optional emails around
// appointment lifecycle events. Every delivery is best-effort: failures are
// logged and never propagated to the caller.
type Service struct {
	store  Store
	email  EmailSender
	logger *logging.Logger
}

// NewService wires the notification store to an email sender. A nil sender
// disables email.
func NewService(store Store, email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, email: email, logger: logger}
}

// AppointmentBooked notifies the doctor of a new booking.
func (s *Service) AppointmentBooked(ctx context.Context, evt AppointmentEvent) {
	msg := fmt.Sprintf("New appointment with %s on %s at %s", evt.PatientName, evt.Date, evt.Time)
	s.record(ctx, evt.DoctorID, RecipientDoctor, msg, "APPOINTMENT_BOOKED")
	s.send(ctx, evt.DoctorEmail, evt.DoctorName, "New appointment booked", msg)
}

// AppointmentCancelled notifies the counterparty of a cancellation. The
// cancelling side is identified by cancelledByPatient.
func (s *Service) AppointmentCancelled(ctx context.Context, evt AppointmentEvent, cancelledByPatient bool) {
	msg := fmt.Sprintf("Appointment on %s at %s was cancelled", evt.Date, evt.Time)
	if cancelledByPatient {
		s.record(ctx, evt.DoctorID, RecipientDoctor, msg, "APPOINTMENT_CANCELLED")
		s.send(ctx, evt.DoctorEmail, evt.DoctorName, "Appointment cancelled", msg)
		return
	}
	s.record(ctx, strconv.FormatInt(evt.PatientID, 10), RecipientPatient, msg, "APPOINTMENT_CANCELLED")
	s.send(ctx, evt.PatientEmail, evt.PatientName, "Appointment cancelled", msg)
}

// AppointmentCompleted notifies the patient that their visit was closed out.
func (s *Service) AppointmentCompleted(ctx context.Context, evt AppointmentEvent) {
	msg := fmt.Sprintf("Your appointment with %s on %s has been completed", evt.DoctorName, evt.Date)
	s.record(ctx, strconv.FormatInt(evt.PatientID, 10), RecipientPatient, msg, "APPOINTMENT_COMPLETED")
	s.send(ctx, evt.PatientEmail, evt.PatientName, "Appointment completed", msg)
}

func (s *Service) record(ctx context.Context, recipientID, recipientType, msg, kind string) {
	if s.store == nil {
		return
	}
	_, err := s.store.Create(ctx, &Notification{
		RecipientID:   recipientID,
		RecipientType: recipientType,
		Message:       msg,
		Type:          kind,
	})
	if err != nil {
		s.logger.Error("failed to record notification", "error", err, "recipient", recipientID)
	}
}

func (s *Service) send(ctx context.Context, to, toName, subject, body string) {
	if s.email == nil || to == "" {
		return
	}
	if err := s.email.Send(ctx, EmailMessage{To: to, ToName: toName, Subject: subject, Body: body}); err != nil {
		s.logger.Error("failed to send notification email", "error", err, "to", to)
	}
}
