package payments

import (
	"context"
	"fmt"

	"github.com/medisched/medisched/pkg/logging"
)

// FinanceService answers revenue questions and backfills missing fees.
type FinanceService struct {
	repo     Repository
	feeCents int64
	currency string
	logger   *logging.Logger
}

// NewFinanceService creates the finance service with the flat consultation
// fee used for reconciliation.
func NewFinanceService(repo Repository, feeCents int64, currency string, logger *logging.Logger) *FinanceService {
	if feeCents <= 0 {
		feeCents = 15000
	}
	if currency == "" {
		currency = "USD"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FinanceService{repo: repo, feeCents: feeCents, currency: currency, logger: logger}
}

// Summary aggregates revenue for an inclusive date range.
type Summary struct {
	From         string `json:"from"`
	To           string `json:"to"`
	RevenueCents int64  `json:"revenueCents"`
	Currency     string `json:"currency"`
	PaymentCount int    `json:"paymentCount"`
}

// Summarize computes total COMPLETED revenue in [from, to].
func (s *FinanceService) Summarize(ctx context.Context, from, to string) (*Summary, error) {
	total, err := s.repo.SumCompletedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &Summary{
		From:         from,
		To:           to,
		RevenueCents: total,
		Currency:     s.currency,
		PaymentCount: len(list),
	}, nil
}

// Reconcile inserts the flat consultation fee for every appointment lacking
// a payment row. Transaction ids are derived from the appointment id, so a
// re-run creates nothing new. Per-appointment failures are logged and
// skipped; the pass continues.
func (s *FinanceService) Reconcile(ctx context.Context) (int, error) {
	unpaid, err := s.repo.AppointmentsWithoutPayment(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, u := range unpaid {
		exists, err := s.repo.ExistsByAppointment(ctx, u.AppointmentID)
		if err != nil {
			s.logger.Error("reconcile: exists check failed", "error", err, "appointment_id", u.AppointmentID)
			continue
		}
		if exists {
			continue
		}
		_, err = s.repo.Create(ctx, &Payment{
			AppointmentID: u.AppointmentID,
			PatientID:     u.PatientID,
			DoctorID:      u.DoctorID,
			AmountCents:   s.feeCents,
			Currency:      s.currency,
			Method:        "CASH",
			Status:        StatusCompleted,
			TransactionID: fmt.Sprintf("RECON-%d", u.AppointmentID),
		})
		if err != nil {
			s.logger.Error("reconcile: payment insert failed", "error", err, "appointment_id", u.AppointmentID)
			continue
		}
		created++
	}

	s.logger.Info("reconciliation pass finished", "created", created, "candidates", len(unpaid))
	return created, nil
}
