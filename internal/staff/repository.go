package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository is the staff storage surface.
type Repository interface {
	Create(ctx context.Context, m *Member) (*Member, error)
	List(ctx context.Context) ([]*Member, error)
	Update(ctx context.Context, m *Member) (*Member, error)
	Delete(ctx context.Context, id int64) error
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores staff members in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("staff: db required")
	}
	return &PostgresRepository{db: db}
}

const memberColumns = `id, name, role, department, email, phone, status, created_at, updated_at`

// Create inserts a staff row.
func (r *PostgresRepository) Create(ctx context.Context, m *Member) (*Member, error) {
	if m.Status == "" {
		m.Status = StatusActive
	}
	query := `
		INSERT INTO staff (name, role, department, email, phone, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		m.Name, m.Role, m.Department, m.Email, m.Phone, m.Status,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, fmt.Errorf("staff: insert: %w", err)
	}
	return m, nil
}

// List returns all staff ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*Member, error) {
	rows, err := r.db.Query(ctx, `SELECT `+memberColumns+` FROM staff ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("staff: list: %w", err)
	}
	defer rows.Close()

	var out []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("staff: list rows: %w", err)
	}
	return out, nil
}

// Update writes the mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, m *Member) (*Member, error) {
	query := `
		UPDATE staff
		SET name = $2, role = $3, department = $4, email = $5, phone = $6,
			status = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + memberColumns
	row := r.db.QueryRow(ctx, query,
		m.ID, m.Name, m.Role, m.Department, m.Email, m.Phone, m.Status,
	)
	return scanMember(row)
}

// Delete removes a staff row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("staff: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	if err := row.Scan(
		&m.ID, &m.Name, &m.Role, &m.Department, &m.Email, &m.Phone,
		&m.Status, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("staff: scan: %w", err)
	}
	return &m, nil
}
