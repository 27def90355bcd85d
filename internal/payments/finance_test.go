package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPaymentRepo struct {
	payments  map[int64]*Payment
	byAppt    map[int64]int64
	unpaid    []*UnpaidAppointment
	nextID    int64
	failOn    map[int64]bool
	createErr error
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{
		payments: make(map[int64]*Payment),
		byAppt:   make(map[int64]int64),
		failOn:   make(map[int64]bool),
	}
}

func (m *memPaymentRepo) Create(_ context.Context, p *Payment) (*Payment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.failOn[p.AppointmentID] {
		return nil, fmt.Errorf("payments: insert: boom")
	}
	m.nextID++
	cp := *p
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	m.payments[cp.ID] = &cp
	m.byAppt[cp.AppointmentID] = cp.ID
	return &cp, nil
}

func (m *memPaymentRepo) ExistsByAppointment(_ context.Context, appointmentID int64) (bool, error) {
	_, ok := m.byAppt[appointmentID]
	return ok, nil
}

func (m *memPaymentRepo) ListBetween(_ context.Context, _, _ string) ([]*Payment, error) {
	var out []*Payment
	for _, p := range m.payments {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPaymentRepo) SumCompletedBetween(_ context.Context, _, _ string) (int64, error) {
	var total int64
	for _, p := range m.payments {
		if p.Status == StatusCompleted {
			total += p.AmountCents
		}
	}
	return total, nil
}

func (m *memPaymentRepo) AppointmentsWithoutPayment(_ context.Context) ([]*UnpaidAppointment, error) {
	var out []*UnpaidAppointment
	for _, u := range m.unpaid {
		if _, ok := m.byAppt[u.AppointmentID]; !ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestReconcileCreatesMissingPayments(t *testing.T) {
	repo := newMemPaymentRepo()
	repo.unpaid = []*UnpaidAppointment{
		{AppointmentID: 1, PatientID: 42, DoctorID: "DOC-1A2B3C4D"},
		{AppointmentID: 2, PatientID: 43, DoctorID: "DOC-1A2B3C4D"},
	}
	svc := NewFinanceService(repo, 0, "", nil)

	created, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	id, ok := repo.byAppt[1]
	require.True(t, ok)
	p := repo.payments[id]
	assert.Equal(t, "RECON-1", p.TransactionID)
	assert.Equal(t, int64(15000), p.AmountCents)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "CASH", p.Method)
	assert.Equal(t, StatusCompleted, p.Status)
}

func TestReconcileIsIdempotent(t *testing.T) {
	repo := newMemPaymentRepo()
	repo.unpaid = []*UnpaidAppointment{
		{AppointmentID: 7, PatientID: 42, DoctorID: "DOC-1A2B3C4D"},
	}
	svc := NewFinanceService(repo, 15000, "USD", nil)

	created, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	created, err = svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, repo.payments, 1)
}

func TestReconcileSkipsFailedInserts(t *testing.T) {
	repo := newMemPaymentRepo()
	repo.unpaid = []*UnpaidAppointment{
		{AppointmentID: 1, PatientID: 42, DoctorID: "DOC-1A2B3C4D"},
		{AppointmentID: 2, PatientID: 43, DoctorID: "DOC-1A2B3C4D"},
	}
	repo.failOn[1] = true
	svc := NewFinanceService(repo, 15000, "USD", nil)

	created, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	_, ok := repo.byAppt[2]
	assert.True(t, ok)
}

func TestSummarizeCountsCompletedOnly(t *testing.T) {
	repo := newMemPaymentRepo()
	ctx := context.Background()
	_, err := repo.Create(ctx, &Payment{AppointmentID: 1, AmountCents: 15000, Status: StatusCompleted})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &Payment{AppointmentID: 2, AmountCents: 9900, Status: StatusCompleted})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &Payment{AppointmentID: 3, AmountCents: 5000, Status: StatusPending})
	require.NoError(t, err)

	svc := NewFinanceService(repo, 15000, "USD", nil)
	sum, err := svc.Summarize(ctx, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, int64(24900), sum.RevenueCents)
	assert.Equal(t, 3, sum.PaymentCount)
	assert.Equal(t, "USD", sum.Currency)
	assert.Equal(t, "2025-01-01", sum.From)
	assert.Equal(t, "2025-01-31", sum.To)
}

func TestCompletionWriterDerivesTransactionID(t *testing.T) {
	repo := newMemPaymentRepo()
	w := NewCompletionWriter(repo, 0, "")

	require.NoError(t, w.CreateCompletion(context.Background(), 9, 42, "DOC-1A2B3C4D"))

	id := repo.byAppt[9]
	p := repo.payments[id]
	assert.Equal(t, "TXN-9", p.TransactionID)
	assert.Equal(t, int64(15000), p.AmountCents)
	assert.Equal(t, StatusCompleted, p.Status)
}

func TestReconcileListFailure(t *testing.T) {
	repo := newMemPaymentRepo()
	repo.createErr = errors.New("db down")
	repo.unpaid = []*UnpaidAppointment{{AppointmentID: 1}}
	svc := NewFinanceService(repo, 15000, "USD", nil)

	created, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}
