package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no notification matches the lookup.
var ErrNotFound = errors.New("notification not found")

// Recipient types.
const (
	RecipientPatient = "PATIENT"
	RecipientDoctor  = "DOCTOR"
)

// Notification is one in-app message for a patient or doctor.
type Notification struct {
	ID            int64      `json:"id"`
	RecipientID   string     `json:"recipientId"`
	RecipientType string     `json:"recipientType"`
	Message       string     `json:"message"`
	Type          string     `json:"type"`
	Read          bool       `json:"read"`
	CreatedAt     time.Time  `json:"createdAt"`
	ReadAt        *time.Time `json:"readAt,omitempty"`
}

// Store is the notification storage surface.
type Store interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	ListByRecipient(ctx context.Context, recipientID, recipientType string) ([]*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps notifications in the relational database.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by pgx.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("notify: db required")
	}
	return &PostgresStore{db: db}
}

const notificationColumns = `id, recipient_id, recipient_type, message, type, read, created_at, read_at`

// Create inserts a notification row.
func (s *PostgresStore) Create(ctx context.Context, n *Notification) (*Notification, error) {
	query := `
		INSERT INTO notifications (recipient_id, recipient_type, message, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := s.db.QueryRow(ctx, query,
		n.RecipientID, n.RecipientType, n.Message, n.Type,
	).Scan(&n.ID, &n.CreatedAt); err != nil {
		return nil, fmt.Errorf("notify: insert: %w", err)
	}
	return n, nil
}

// ListByRecipient returns a recipient's notifications, newest first.
func (s *PostgresStore) ListByRecipient(ctx context.Context, recipientID, recipientType string) ([]*Notification, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		WHERE recipient_id = $1 AND recipient_type = $2
		ORDER BY created_at DESC`,
		recipientID, recipientType,
	)
	if err != nil {
		return nil, fmt.Errorf("notify: list: %w", err)
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notify: list rows: %w", err)
	}
	return out, nil
}

// GetByID fetches one notification.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*Notification, error) {
	row := s.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

// MarkRead flags a notification as read.
func (s *PostgresStore) MarkRead(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE notifications SET read = true, read_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("notify: mark read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	if err := row.Scan(
		&n.ID, &n.RecipientID, &n.RecipientType, &n.Message, &n.Type,
		&n.Read, &n.CreatedAt, &n.ReadAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("notify: scan: %w", err)
	}
	return &n, nil
}
