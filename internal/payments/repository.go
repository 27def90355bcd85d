package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no payment matches the lookup.
var ErrNotFound = errors.New("payment not found")

// Repository is the payment storage surface.
type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	ExistsByAppointment(ctx context.Context, appointmentID int64) (bool, error)
	ListBetween(ctx context.Context, from, to string) ([]*Payment, error)
	SumCompletedBetween(ctx context.Context, from, to string) (int64, error)
	AppointmentsWithoutPayment(ctx context.Context) ([]*UnpaidAppointment, error)
}

// UnpaidAppointment is the projection reconciliation works from.
type UnpaidAppointment struct {
	AppointmentID int64
	PatientID     int64
	DoctorID      string
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores payments in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("payments: db required")
	}
	return &PostgresRepository{db: db}
}

const paymentColumns = `id, appointment_id, patient_id, doctor_id, amount_cents,
	currency, method, status, transaction_id, created_at`

// Create inserts a payment row.
func (r *PostgresRepository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	query := `
		INSERT INTO payments (appointment_id, patient_id, doctor_id, amount_cents,
			currency, method, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	if err := r.db.QueryRow(ctx, query,
		p.AppointmentID, p.PatientID, p.DoctorID, p.AmountCents,
		p.Currency, p.Method, p.Status, p.TransactionID,
	).Scan(&p.ID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("payments: insert: %w", err)
	}
	return p, nil
}

// ExistsByAppointment reports whether the appointment already has a payment.
func (r *PostgresRepository) ExistsByAppointment(ctx context.Context, appointmentID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM payments WHERE appointment_id = $1)`, appointmentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("payments: exists check: %w", err)
	}
	return exists, nil
}

// ListBetween returns payments created in [from, to], inclusive dates.
func (r *PostgresRepository) ListBetween(ctx context.Context, from, to string) ([]*Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments
		WHERE created_at::date >= $1 AND created_at::date <= $2
		ORDER BY created_at DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("payments: list: %w", err)
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payments: list rows: %w", err)
	}
	return out, nil
}

// SumCompletedBetween returns total COMPLETED revenue in cents for the range.
func (r *PostgresRepository) SumCompletedBetween(ctx context.Context, from, to string) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments
		WHERE status = $1 AND created_at::date >= $2 AND created_at::date <= $3`,
		StatusCompleted, from, to,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("payments: sum: %w", err)
	}
	return total, nil
}

// AppointmentsWithoutPayment lists appointments that have no payment row.
// Cancelled appointments never owe a fee.
func (r *PostgresRepository) AppointmentsWithoutPayment(ctx context.Context) ([]*UnpaidAppointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.patient_id, a.doctor_id
		FROM appointments a
		LEFT JOIN payments p ON p.appointment_id = a.id
		WHERE p.id IS NULL AND a.status <> 'CANCELLED'
		ORDER BY a.id
	`)
	if err != nil {
		return nil, fmt.Errorf("payments: unpaid appointments: %w", err)
	}
	defer rows.Close()

	var out []*UnpaidAppointment
	for rows.Next() {
		var u UnpaidAppointment
		if err := rows.Scan(&u.AppointmentID, &u.PatientID, &u.DoctorID); err != nil {
			return nil, fmt.Errorf("payments: scan unpaid: %w", err)
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payments: unpaid rows: %w", err)
	}
	return out, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	if err := row.Scan(
		&p.ID, &p.AppointmentID, &p.PatientID, &p.DoctorID, &p.AmountCents,
		&p.Currency, &p.Method, &p.Status, &p.TransactionID, &p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("payments: scan: %w", err)
	}
	return &p, nil
}
