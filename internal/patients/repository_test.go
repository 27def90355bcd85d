package patients

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/medisched/internal/accounts"
)

func TestCreateAssignsID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("jane@example.com").
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO patients").
		WithArgs("Jane Doe", "jane@example.com", "hash", "555-0100", "1 Main St", "O+", 30, "female").
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(42), time.Now(), time.Now()))

	repo := NewPostgresRepository(mock)
	created, err := repo.Create(context.Background(), &Patient{
		Account: accounts.Account{
			Name:         "Jane Doe",
			Email:        "jane@example.com",
			PasswordHash: "hash",
		},
		PhoneNumber: "555-0100",
		Address:     "1 Main St",
		BloodGroup:  "O+",
		Age:         30,
		Gender:      "female",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, accounts.RolePatient, created.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("jane@example.com").
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewPostgresRepository(mock)
	_, err = repo.Create(context.Background(), &Patient{
		Account: accounts.Account{Email: "jane@example.com"},
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestDeleteNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM patients").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresRepository(mock)
	err = repo.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}
