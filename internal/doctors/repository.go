package doctors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medisched/medisched/internal/accounts"
)

// Repository is the doctor storage surface consumed by services and handlers.
type Repository interface {
	Create(ctx context.Context, d *Doctor) (*Doctor, error)
	GetByID(ctx context.Context, id string) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	List(ctx context.Context) ([]*Doctor, error)
	Update(ctx context.Context, d *Doctor) (*Doctor, error)
	UpdateStatus(ctx context.Context, id, status string) (*Doctor, error)
	UpdateSchedule(ctx context.Context, id, schedule string) error
	SetFile(ctx context.Context, id, column, key string) error
	Delete(ctx context.Context, id string) error
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores doctors in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("doctors: db required")
	}
	return &PostgresRepository{db: db}
}

const doctorColumns = `id, name, email, password_hash, specialization, qualification,
	experience, clinic_address, status, profile_picture, credentials_file,
	consultation_fee_cents, availability_schedule, created_at, updated_at`

// Create inserts a doctor row. A missing ID gets a generated DOC- identifier.
func (r *PostgresRepository) Create(ctx context.Context, d *Doctor) (*Doctor, error) {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM doctors WHERE email = $1)`, d.Email,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("doctors: check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	if d.ID == "" {
		d.ID = "DOC-" + strings.ToUpper(uuid.NewString()[:8])
	}
	if d.Status == "" {
		d.Status = StatusPending
	}
	d.Role = accounts.RoleDoctor

	query := `
		INSERT INTO doctors (id, name, email, password_hash, specialization, qualification,
			experience, clinic_address, status, consultation_fee_cents, availability_schedule)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		d.ID, d.Name, d.Email, d.PasswordHash, d.Specialization, d.Qualification,
		d.Experience, d.ClinicAddress, d.Status, d.ConsultationFeeCents, d.Schedule,
	).Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, fmt.Errorf("doctors: insert: %w", err)
	}
	return d, nil
}

// GetByID fetches one doctor.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
	return scanDoctor(row)
}

// GetByEmail fetches a doctor for credential checks.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE email = $1`, email)
	return scanDoctor(row)
}

// List returns all doctors ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*Doctor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+doctorColumns+` FROM doctors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: list rows: %w", err)
	}
	return out, nil
}

// Update writes the mutable profile fields. Email uniqueness is re-checked
// so an update cannot steal another doctor's address.
func (r *PostgresRepository) Update(ctx context.Context, d *Doctor) (*Doctor, error) {
	var takenBy string
	err := r.db.QueryRow(ctx,
		`SELECT id FROM doctors WHERE email = $1 AND id <> $2`, d.Email, d.ID,
	).Scan(&takenBy)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("doctors: check email: %w", err)
	}

	query := `
		UPDATE doctors
		SET name = $2, email = $3, specialization = $4, qualification = $5,
			experience = $6, clinic_address = $7, consultation_fee_cents = $8,
			availability_schedule = $9, updated_at = now()
		WHERE id = $1
		RETURNING ` + doctorColumns
	row := r.db.QueryRow(ctx, query,
		d.ID, d.Name, d.Email, d.Specialization, d.Qualification,
		d.Experience, d.ClinicAddress, d.ConsultationFeeCents, d.Schedule,
	)
	return scanDoctor(row)
}

// UpdateStatus sets the account status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) (*Doctor, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	row := r.db.QueryRow(ctx,
		`UPDATE doctors SET status = $2, updated_at = now() WHERE id = $1 RETURNING `+doctorColumns,
		id, status,
	)
	return scanDoctor(row)
}

// UpdateSchedule replaces the stored availability schedule JSON.
func (r *PostgresRepository) UpdateSchedule(ctx context.Context, id, schedule string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE doctors SET availability_schedule = $2, updated_at = now() WHERE id = $1`,
		id, schedule,
	)
	if err != nil {
		return fmt.Errorf("doctors: update schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFile records an uploaded object key on the doctor row. Column must be
// one of the two known upload columns; anything else is a programming error.
func (r *PostgresRepository) SetFile(ctx context.Context, id, column, key string) error {
	if column != "profile_picture" && column != "credentials_file" {
		return fmt.Errorf("doctors: unknown file column %q", column)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE doctors SET `+column+` = $2, updated_at = now() WHERE id = $1`,
		id, key,
	)
	if err != nil {
		return fmt.Errorf("doctors: set %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a doctor row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("doctors: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.Specialization, &d.Qualification,
		&d.Experience, &d.ClinicAddress, &d.Status, &d.ProfilePicture, &d.CredentialsFile,
		&d.ConsultationFeeCents, &d.Schedule, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("doctors: scan: %w", err)
	}
	d.Role = accounts.RoleDoctor
	return &d, nil
}
