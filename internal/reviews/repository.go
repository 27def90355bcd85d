package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository is the review storage surface.
type Repository interface {
	Create(ctx context.Context, rev *Review) (*Review, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*Review, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Review, error)
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores reviews in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("reviews: db required")
	}
	return &PostgresRepository{db: db}
}

const reviewColumns = `id, doctor_id, patient_id, patient_name, rating, comment, anonymous, created_at`

// Create inserts a review row.
func (r *PostgresRepository) Create(ctx context.Context, rev *Review) (*Review, error) {
	if err := rev.Validate(); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO reviews (doctor_id, patient_id, patient_name, rating, comment, anonymous)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := r.db.QueryRow(ctx, query,
		rev.DoctorID, rev.PatientID, rev.PatientName, rev.Rating, rev.Comment, rev.Anonymous,
	).Scan(&rev.ID, &rev.CreatedAt); err != nil {
		return nil, fmt.Errorf("reviews: insert: %w", err)
	}
	return rev, nil
}

// ListByDoctor returns a doctor's reviews, newest first. Anonymous entries
// have their patient name blanked.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*Review, error) {
	reviews, err := r.list(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE doctor_id = $1 ORDER BY created_at DESC`,
		doctorID)
	if err != nil {
		return nil, err
	}
	for _, rev := range reviews {
		if rev.Anonymous {
			rev.PatientName = ""
		}
	}
	return reviews, nil
}

// ListByPatient returns the reviews a patient wrote.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID int64) ([]*Review, error) {
	return r.list(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE patient_id = $1 ORDER BY created_at DESC`,
		patientID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*Review, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("reviews: list: %w", err)
	}
	defer rows.Close()

	var out []*Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(
			&rev.ID, &rev.DoctorID, &rev.PatientID, &rev.PatientName,
			&rev.Rating, &rev.Comment, &rev.Anonymous, &rev.CreatedAt,
		); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("reviews: scan: %w", err)
		}
		out = append(out, &rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reviews: list rows: %w", err)
	}
	return out, nil
}
