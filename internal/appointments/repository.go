package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ListFilter narrows appointment listings.
type ListFilter struct {
	Date   string
	Status Status
	Search string
}

// Repository is the appointment storage surface.
type Repository interface {
	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID int64, filter ListFilter) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string, filter ListFilter) ([]*Appointment, error)
	BookedTimes(ctx context.Context, doctorID, date string) ([]string, error)
	ExistsActiveAt(ctx context.Context, doctorID, date, timeOfDay string) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Appointment, error)
	RepairNames(ctx context.Context, a *Appointment) error
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("appointments: db required")
	}
	return &PostgresRepository{db: db}
}

const appointmentColumns = `id, patient_id, doctor_id, patient_name, patient_email,
	doctor_name, doctor_email, doctor_specialization, date, time, type, notes,
	status, created_at, updated_at`

// Create inserts an appointment row.
func (r *PostgresRepository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	query := `
		INSERT INTO appointments (patient_id, doctor_id, patient_name, patient_email,
			doctor_name, doctor_email, doctor_specialization, date, time, type, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		a.PatientID, a.DoctorID, a.PatientName, a.PatientEmail,
		a.DoctorName, a.DoctorEmail, a.DoctorSpecialization,
		a.Date, a.Time, a.Type, a.Notes, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}
	return a, nil
}

// GetByID fetches one appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

// List returns appointments matching the filter, newest date first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	where, args := filterClauses(filter, nil)
	return r.list(ctx, where, args)
}

// ListByPatient returns one patient's appointments.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID int64, filter ListFilter) ([]*Appointment, error) {
	where, args := filterClauses(filter, []whereArg{{"patient_id", patientID}})
	return r.list(ctx, where, args)
}

// ListByDoctor returns one doctor's appointments.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID string, filter ListFilter) ([]*Appointment, error) {
	where, args := filterClauses(filter, []whereArg{{"doctor_id", doctorID}})
	return r.list(ctx, where, args)
}

type whereArg struct {
	column string
	value  any
}

func filterClauses(filter ListFilter, fixed []whereArg) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	for _, fa := range fixed {
		add(fa.column+" = $%d", fa.value)
	}
	if filter.Date != "" {
		add("date = $%d", filter.Date)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(patient_name ILIKE $%d OR doctor_name ILIKE $%d)", n, n))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *PostgresRepository) list(ctx context.Context, where string, args []any) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments` + where + ` ORDER BY date DESC, time DESC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list rows: %w", err)
	}
	return out, nil
}

// BookedTimes returns the times already held by non-cancelled appointments
// for a doctor on a date.
func (r *PostgresRepository) BookedTimes(ctx context.Context, doctorID, date string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT time FROM appointments WHERE doctor_id = $1 AND date = $2 AND status <> $3`,
		doctorID, date, StatusCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("appointments: booked times: %w", err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("appointments: scan time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: booked times rows: %w", err)
	}
	return times, nil
}

// ExistsActiveAt reports whether a PENDING or CONFIRMED appointment already
// holds the doctor's slot at date+time.
func (r *PostgresRepository) ExistsActiveAt(ctx context.Context, doctorID, date, timeOfDay string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND date = $2 AND time = $3 AND status IN ($4, $5))`,
		doctorID, date, timeOfDay, StatusPending, StatusConfirmed,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("appointments: conflict check: %w", err)
	}
	return exists, nil
}

// UpdateStatus writes the new status and returns the refreshed row.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status Status) (*Appointment, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE appointments SET status = $2, updated_at = now() WHERE id = $1 RETURNING `+appointmentColumns,
		id, status,
	)
	return scanAppointment(row)
}

// RepairNames persists refreshed denormalized display fields.
func (r *PostgresRepository) RepairNames(ctx context.Context, a *Appointment) error {
	_, err := r.db.Exec(ctx,
		`UPDATE appointments
		SET patient_name = $2, patient_email = $3, doctor_name = $4,
			doctor_email = $5, doctor_specialization = $6, updated_at = now()
		WHERE id = $1`,
		a.ID, a.PatientName, a.PatientEmail, a.DoctorName, a.DoctorEmail, a.DoctorSpecialization,
	)
	if err != nil {
		return fmt.Errorf("appointments: repair names: %w", err)
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.PatientName, &a.PatientEmail,
		&a.DoctorName, &a.DoctorEmail, &a.DoctorSpecialization, &a.Date, &a.Time,
		&a.Type, &a.Notes, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: scan: %w", err)
	}
	return &a, nil
}
