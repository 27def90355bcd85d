package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medisched/medisched/internal/accounts"
)

// Repository is the patient storage surface consumed by services and handlers.
type Repository interface {
	Create(ctx context.Context, p *Patient) (*Patient, error)
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
	Update(ctx context.Context, p *Patient) (*Patient, error)
	SetFile(ctx context.Context, id int64, column, key string) error
	Delete(ctx context.Context, id int64) error
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores patients in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("patients: db required")
	}
	return &PostgresRepository{db: db}
}

const patientColumns = `id, name, email, password_hash, phone_number, address,
	blood_group, age, gender, profile_picture, documents_file, created_at, updated_at`

// Create inserts a patient row.
func (r *PostgresRepository) Create(ctx context.Context, p *Patient) (*Patient, error) {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM patients WHERE email = $1)`, p.Email,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("patients: check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	p.Role = accounts.RolePatient
	query := `
		INSERT INTO patients (name, email, password_hash, phone_number, address,
			blood_group, age, gender)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		p.Name, p.Email, p.PasswordHash, p.PhoneNumber, p.Address,
		p.BloodGroup, p.Age, p.Gender,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("patients: insert: %w", err)
	}
	return p, nil
}

// GetByID fetches one patient.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Patient, error) {
	row := r.db.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	return scanPatient(row)
}

// GetByEmail fetches a patient for credential checks.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	row := r.db.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE email = $1`, email)
	return scanPatient(row)
}

// List returns all patients ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.db.Query(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("patients: list: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: list rows: %w", err)
	}
	return out, nil
}

// Update writes the mutable profile fields.
func (r *PostgresRepository) Update(ctx context.Context, p *Patient) (*Patient, error) {
	var takenBy int64
	err := r.db.QueryRow(ctx,
		`SELECT id FROM patients WHERE email = $1 AND id <> $2`, p.Email, p.ID,
	).Scan(&takenBy)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("patients: check email: %w", err)
	}

	query := `
		UPDATE patients
		SET name = $2, email = $3, phone_number = $4, address = $5,
			blood_group = $6, age = $7, gender = $8, updated_at = now()
		WHERE id = $1
		RETURNING ` + patientColumns
	row := r.db.QueryRow(ctx, query,
		p.ID, p.Name, p.Email, p.PhoneNumber, p.Address,
		p.BloodGroup, p.Age, p.Gender,
	)
	return scanPatient(row)
}

// SetFile records an uploaded object key on the patient row.
func (r *PostgresRepository) SetFile(ctx context.Context, id int64, column, key string) error {
	if column != "profile_picture" && column != "documents_file" {
		return fmt.Errorf("patients: unknown file column %q", column)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE patients SET `+column+` = $2, updated_at = now() WHERE id = $1`,
		id, key,
	)
	if err != nil {
		return fmt.Errorf("patients: set %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a patient row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patients: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.PhoneNumber, &p.Address,
		&p.BloodGroup, &p.Age, &p.Gender, &p.ProfilePicture, &p.DocumentsFile,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("patients: scan: %w", err)
	}
	p.Role = accounts.RolePatient
	return &p, nil
}
