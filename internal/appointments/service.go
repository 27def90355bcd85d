package appointments

import (
	"context"
	"time"

	"github.com/medisched/medisched/internal/auth"
	"github.com/medisched/medisched/internal/doctors"
	"github.com/medisched/medisched/internal/medicalrecords"
	"github.com/medisched/medisched/internal/notify"
	"github.com/medisched/medisched/internal/observability/metrics"
	"github.com/medisched/medisched/internal/patients"
	"github.com/medisched/medisched/pkg/logging"
)

// DoctorDirectory is the slice of the doctor repository the service needs.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id string) (*doctors.Doctor, error)
}

// PatientDirectory is the slice of the patient repository the service needs.
type PatientDirectory interface {
	GetByID(ctx context.Context, id int64) (*patients.Patient, error)
}

// PaymentWriter creates completion payments.
type PaymentWriter interface {
	ExistsByAppointment(ctx context.Context, appointmentID int64) (bool, error)
	CreateCompletion(ctx context.Context, appointmentID, patientID int64, doctorID string) error
}

// RecordWriter creates completion medical records.
type RecordWriter interface {
	Create(ctx context.Context, rec *medicalrecords.MedicalRecord) (*medicalrecords.MedicalRecord, error)
}

// Notifier fans out appointment lifecycle notifications.
type Notifier interface {
	AppointmentBooked(ctx context.Context, evt notify.AppointmentEvent)
	AppointmentCancelled(ctx context.Context, evt notify.AppointmentEvent, cancelledByPatient bool)
	AppointmentCompleted(ctx context.Context, evt notify.AppointmentEvent)
}

// Config carries the booking policy knobs.
type Config struct {
	BookingFeeEnabled bool
	FeeCents          int64
	FeeCurrency       string
}

// Service implements booking, availability and the status state machine.
type Service struct {
	repo     Repository
	doctors  DoctorDirectory
	patients PatientDirectory
	payments PaymentWriter
	records  RecordWriter
	notifier Notifier
	cache    *SlotCache
	cfg      Config
	logger   *logging.Logger
	metrics  *metrics.AppointmentMetrics
	now      func() time.Time
}

// WithMetrics attaches booking metrics. A nil collector disables them.
func (s *Service) WithMetrics(m *metrics.AppointmentMetrics) *Service {
	s.metrics = m
	return s
}

// NewService wires the appointment service. Cache and notifier may be nil.
func NewService(
	repo Repository,
	doctorDir DoctorDirectory,
	patientDir PatientDirectory,
	payments PaymentWriter,
	records RecordWriter,
	notifier Notifier,
	cache *SlotCache,
	cfg Config,
	logger *logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FeeCents <= 0 {
		cfg.FeeCents = 15000
	}
	if cfg.FeeCurrency == "" {
		cfg.FeeCurrency = "USD"
	}
	return &Service{
		repo:     repo,
		doctors:  doctorDir,
		patients: patientDir,
		payments: payments,
		records:  records,
		notifier: notifier,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Availability computes the free slots for a doctor on a date.
func (s *Service) Availability(ctx context.Context, doctorID, date string) ([]string, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	started := time.Now()
	if s.cache != nil {
		if slots, ok := s.cache.Get(ctx, doctorID, date); ok {
			s.metrics.ObserveAvailabilityLatency(true, time.Since(started).Seconds())
			return slots, nil
		}
	}

	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.BookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	free := SubtractBooked(SlotsForDate(doctor.Schedule, day), booked)
	if s.cache != nil {
		s.cache.Put(ctx, doctorID, date, free)
	}
	s.metrics.ObserveAvailabilityLatency(false, time.Since(started).Seconds())
	return free, nil
}

// BookingRequest is the input to Book.
type BookingRequest struct {
	PatientID int64
	DoctorID  string
	Date      string
	Time      string
	Type      string
	Notes     string
}

// Book creates a PENDING appointment after validating the doctor, patient,
// time and slot. Two concurrent bookings can still race past the conflict
// check; there is no slot-level lock.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	doctor, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	patient, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		PatientID:            patient.ID,
		DoctorID:             doctor.ID,
		PatientName:          patient.Name,
		PatientEmail:         patient.Email,
		DoctorName:           doctor.Name,
		DoctorEmail:          doctor.Email,
		DoctorSpecialization: doctor.Specialization,
		Date:                 req.Date,
		Time:                 req.Time,
		Type:                 req.Type,
		Notes:                req.Notes,
		Status:               StatusPending,
	}

	startsAt, err := appt.StartsAt()
	if err != nil {
		return nil, ErrInvalidDate
	}
	if startsAt.Before(s.now()) {
		s.metrics.ObserveBooking("past_time")
		return nil, ErrPastTime
	}

	taken, err := s.repo.ExistsActiveAt(ctx, req.DoctorID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if taken {
		s.metrics.ObserveBooking("conflict")
		return nil, ErrSlotTaken
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		s.metrics.ObserveBooking("error")
		return nil, err
	}
	s.metrics.ObserveBooking("created")

	if s.cache != nil {
		s.cache.Invalidate(ctx, created.DoctorID, created.Date)
	}
	if s.cfg.BookingFeeEnabled && s.payments != nil {
		if err := s.payments.CreateCompletion(ctx, created.ID, created.PatientID, created.DoctorID); err != nil {
			s.logger.Error("booking fee creation failed", "error", err, "appointment_id", created.ID)
		}
	}
	if s.notifier != nil {
		s.notifier.AppointmentBooked(ctx, s.event(created))
	}

	s.logger.Info("appointment booked",
		"appointment_id", created.ID,
		"doctor_id", created.DoctorID,
		"patient_id", created.PatientID,
		"date", created.Date,
		"time", created.Time,
	)
	return created, nil
}

// Get loads one appointment, repairing empty denormalized display fields
// from the source rows.
func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.repairNames(ctx, appt)
	return appt, nil
}

// CompletionDetails carries the optional payload of a COMPLETED transition.
type CompletionDetails struct {
	Diagnosis    string
	Prescription string
	Notes        string
	FollowUpDate string
}

// Transition moves an appointment along the status graph with the caller's
// claims enforced. COMPLETED fires the medical record and payment side
// effects; both are best-effort and never fail the status write.
func (s *Service) Transition(ctx context.Context, claims *auth.Claims, id int64, target Status, details *CompletionDetails) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.mayTransition(claims, appt, target) {
		return nil, ErrForbidden
	}
	if !appt.Status.CanTransition(target) {
		s.metrics.ObserveTransition(string(target), "rejected")
		return nil, ErrTerminalStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, id, target)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition(string(target), "ok")
	s.repairNames(ctx, updated)
	if s.cache != nil {
		s.cache.Invalidate(ctx, updated.DoctorID, updated.Date)
	}

	switch target {
	case StatusCompleted:
		s.completionSideEffects(ctx, updated, details)
		if s.notifier != nil {
			s.notifier.AppointmentCompleted(ctx, s.event(updated))
		}
	case StatusCancelled:
		if s.notifier != nil {
			byPatient := claims != nil && claims.OwnsPatient(updated.PatientID)
			s.notifier.AppointmentCancelled(ctx, s.event(updated), byPatient)
		}
	}

	s.logger.Info("appointment status changed",
		"appointment_id", updated.ID, "status", updated.Status)
	return updated, nil
}

// Cancel is the soft-delete path: a transition to CANCELLED.
func (s *Service) Cancel(ctx context.Context, claims *auth.Claims, id int64) (*Appointment, error) {
	return s.Transition(ctx, claims, id, StatusCancelled, nil)
}

// mayTransition applies the role rules: admins always, the assigned doctor
// always, the assigned patient only to cancel their own appointment.
func (s *Service) mayTransition(claims *auth.Claims, appt *Appointment, target Status) bool {
	if claims == nil {
		return false
	}
	if claims.IsAdmin() || claims.OwnsDoctor(appt.DoctorID) {
		return true
	}
	return target == StatusCancelled && claims.OwnsPatient(appt.PatientID)
}

func (s *Service) completionSideEffects(ctx context.Context, appt *Appointment, details *CompletionDetails) {
	if details == nil {
		details = &CompletionDetails{}
	}
	diagnosis := details.Diagnosis
	if diagnosis == "" {
		diagnosis = appt.Notes
	}
	notes := details.Notes
	if notes == "" {
		notes = appt.Notes
	}

	if s.records != nil {
		_, err := s.records.Create(ctx, &medicalrecords.MedicalRecord{
			PatientID:    appt.PatientID,
			PatientName:  appt.PatientName,
			DoctorID:     appt.DoctorID,
			DoctorName:   appt.DoctorName,
			Diagnosis:    diagnosis,
			Prescription: details.Prescription,
			Notes:        notes,
			RecordDate:   appt.Date,
			FollowUpDate: details.FollowUpDate,
		})
		if err != nil {
			s.logger.Error("completion medical record failed", "error", err, "appointment_id", appt.ID)
		}
	}

	if s.payments != nil {
		exists, err := s.payments.ExistsByAppointment(ctx, appt.ID)
		if err != nil {
			s.logger.Error("completion payment check failed", "error", err, "appointment_id", appt.ID)
			return
		}
		if exists {
			return
		}
		if err := s.payments.CreateCompletion(ctx, appt.ID, appt.PatientID, appt.DoctorID); err != nil {
			s.logger.Error("completion payment failed", "error", err, "appointment_id", appt.ID)
		}
	}
}

// repairNames refreshes empty denormalized display fields from the source
// rows and persists the repair. Lookup failures leave the fields as-is.
func (s *Service) repairNames(ctx context.Context, appt *Appointment) {
	dirty := false
	if appt.PatientName == "" || appt.PatientEmail == "" {
		if p, err := s.patients.GetByID(ctx, appt.PatientID); err == nil {
			appt.PatientName = p.Name
			appt.PatientEmail = p.Email
			dirty = true
		}
	}
	if appt.DoctorName == "" || appt.DoctorEmail == "" {
		if d, err := s.doctors.GetByID(ctx, appt.DoctorID); err == nil {
			appt.DoctorName = d.Name
			appt.DoctorEmail = d.Email
			appt.DoctorSpecialization = d.Specialization
			dirty = true
		}
	}
	if dirty {
		if err := s.repo.RepairNames(ctx, appt); err != nil {
			s.logger.Error("name repair failed", "error", err, "appointment_id", appt.ID)
		}
	}
}

func (s *Service) event(appt *Appointment) notify.AppointmentEvent {
	return notify.AppointmentEvent{
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		PatientName:   appt.PatientName,
		PatientEmail:  appt.PatientEmail,
		DoctorID:      appt.DoctorID,
		DoctorName:    appt.DoctorName,
		DoctorEmail:   appt.DoctorEmail,
		Date:          appt.Date,
		Time:          appt.Time,
	}
}
