package doctors

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/medisched/internal/accounts"
)

func doctorRows(mock pgxmock.PgxPoolIface, docs ...*Doctor) *pgxmock.Rows {
	rows := mock.NewRows([]string{
		"id", "name", "email", "password_hash", "specialization", "qualification",
		"experience", "clinic_address", "status", "profile_picture", "credentials_file",
		"consultation_fee_cents", "availability_schedule", "created_at", "updated_at",
	})
	for _, d := range docs {
		rows.AddRow(
			d.ID, d.Name, d.Email, d.PasswordHash, d.Specialization, d.Qualification,
			d.Experience, d.ClinicAddress, d.Status, d.ProfilePicture, d.CredentialsFile,
			d.ConsultationFeeCents, d.Schedule, time.Now(), time.Now(),
		)
	}
	return rows
}

func TestCreateGeneratesID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("house@example.com").
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO doctors").
		WithArgs(pgxmock.AnyArg(), "Gregory House", "house@example.com", "hash",
			"Diagnostics", "MD", "20 years", "Princeton-Plainsboro", StatusPending,
			int64(15000), "").
		WillReturnRows(mock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	repo := NewPostgresRepository(mock)
	created, err := repo.Create(context.Background(), &Doctor{
		Account: accounts.Account{
			Name:         "Gregory House",
			Email:        "house@example.com",
			PasswordHash: "hash",
		},
		Specialization:       "Diagnostics",
		Qualification:        "MD",
		Experience:           "20 years",
		ClinicAddress:        "Princeton-Plainsboro",
		ConsultationFeeCents: 15000,
	})
	require.NoError(t, err)

	assert.Regexp(t, `^DOC-[0-9A-F]{8}$`, created.ID)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, accounts.RoleDoctor, created.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("house@example.com").
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewPostgresRepository(mock)
	_, err = repo.Create(context.Background(), &Doctor{
		Account: accounts.Account{Name: "X", Email: "house@example.com"},
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM doctors WHERE id").
		WithArgs("DOC-MISSING1").
		WillReturnRows(doctorRows(mock))

	repo := NewPostgresRepository(mock)
	_, err = repo.GetByID(context.Background(), "DOC-MISSING1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	want := &Doctor{
		ID: "DOC-1A2B3C4D",
		Account: accounts.Account{
			Name:  "Gregory House",
			Email: "house@example.com",
		},
		Specialization: "Diagnostics",
		Status:         StatusActive,
		Schedule:       `{"monday":{"isAvailable":true,"start":"09:00","end":"11:00"}}`,
	}
	mock.ExpectQuery("SELECT (.+) FROM doctors WHERE id").
		WithArgs("DOC-1A2B3C4D").
		WillReturnRows(doctorRows(mock, want))

	repo := NewPostgresRepository(mock)
	got, err := repo.GetByID(context.Background(), "DOC-1A2B3C4D")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Schedule, got.Schedule)
	assert.Equal(t, accounts.RoleDoctor, got.Role)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	_, err = repo.UpdateStatus(context.Background(), "DOC-1A2B3C4D", "RETIRED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateScheduleNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE doctors SET availability_schedule").
		WithArgs("DOC-MISSING1", "{}").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	err = repo.UpdateSchedule(context.Background(), "DOC-MISSING1", "{}")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetFileRejectsUnknownColumn(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	err = repo.SetFile(context.Background(), "DOC-1A2B3C4D", "password_hash", "x")
	assert.Error(t, err)
}
