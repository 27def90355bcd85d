package medicalrecords

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("medical record not found")

// Repository is the medical record storage surface.
type Repository interface {
	Create(ctx context.Context, rec *MedicalRecord) (*MedicalRecord, error)
	GetByID(ctx context.Context, id int64) (*MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*MedicalRecord, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*MedicalRecord, error)
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores medical records in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("medicalrecords: db required")
	}
	return &PostgresRepository{db: db}
}

const recordColumns = `id, patient_id, patient_name, doctor_id, doctor_name,
	diagnosis, prescription, notes, record_date, follow_up_date, created_at`

// Create inserts a record row.
func (r *PostgresRepository) Create(ctx context.Context, rec *MedicalRecord) (*MedicalRecord, error) {
	query := `
		INSERT INTO medical_records (patient_id, patient_name, doctor_id, doctor_name,
			diagnosis, prescription, notes, record_date, follow_up_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	if err := r.db.QueryRow(ctx, query,
		rec.PatientID, rec.PatientName, rec.DoctorID, rec.DoctorName,
		rec.Diagnosis, rec.Prescription, rec.Notes, rec.RecordDate, rec.FollowUpDate,
	).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("medicalrecords: insert: %w", err)
	}
	return rec, nil
}

// GetByID fetches one record.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*MedicalRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM medical_records WHERE id = $1`, id)
	return scanRecord(row)
}

// ListByPatient returns a patient's records, newest first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID int64) ([]*MedicalRecord, error) {
	return r.list(ctx,
		`SELECT `+recordColumns+` FROM medical_records WHERE patient_id = $1 ORDER BY record_date DESC`,
		patientID)
}

// ListByDoctor returns the records a doctor authored, newest first.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*MedicalRecord, error) {
	return r.list(ctx,
		`SELECT `+recordColumns+` FROM medical_records WHERE doctor_id = $1 ORDER BY record_date DESC`,
		doctorID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*MedicalRecord, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("medicalrecords: list: %w", err)
	}
	defer rows.Close()

	var out []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("medicalrecords: list rows: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var rec MedicalRecord
	if err := row.Scan(
		&rec.ID, &rec.PatientID, &rec.PatientName, &rec.DoctorID, &rec.DoctorName,
		&rec.Diagnosis, &rec.Prescription, &rec.Notes, &rec.RecordDate, &rec.FollowUpDate,
		&rec.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("medicalrecords: scan: %w", err)
	}
	return &rec, nil
}
