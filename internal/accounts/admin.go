package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Admin is an administrator account.
type Admin struct {
	ID int64 `json:"id"`
	Account
	Department    string `json:"department"`
	ContactNumber string `json:"contactNumber"`
}

var (
	// ErrAdminNotFound is returned when no admin matches the lookup.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email is already in use")
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AdminRepository persists administrator accounts.
type AdminRepository struct {
	db DB
}

// NewAdminRepository creates a repository backed by pgx.
func NewAdminRepository(db DB) *AdminRepository {
	if db == nil {
		panic("accounts: db required")
	}
	return &AdminRepository{db: db}
}

// Create inserts an admin row. The password must already be hashed.
func (r *AdminRepository) Create(ctx context.Context, a *Admin) (*Admin, error) {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1)`, a.Email,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("accounts: check admin email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	query := `
		INSERT INTO admins (name, email, password_hash, department, contact_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	a.Role = RoleAdmin
	if err := r.db.QueryRow(ctx, query,
		a.Name, a.Email, a.PasswordHash, a.Department, a.ContactNumber,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("accounts: insert admin: %w", err)
	}
	return a, nil
}

// GetByEmail fetches an admin for credential checks.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	query := `
		SELECT id, name, email, password_hash, department, contact_number, created_at, updated_at
		FROM admins
		WHERE email = $1
	`
	var a Admin
	if err := r.db.QueryRow(ctx, query, email).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash,
		&a.Department, &a.ContactNumber, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("accounts: select admin: %w", err)
	}
	a.Role = RoleAdmin
	return &a, nil
}
