package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/medisched/internal/accounts"
	"github.com/medisched/medisched/internal/admin"
	"github.com/medisched/medisched/internal/appointments"
	"github.com/medisched/medisched/internal/auth"
	"github.com/medisched/medisched/internal/doctors"
	"github.com/medisched/medisched/internal/medicalrecords"
	"github.com/medisched/medisched/internal/notify"
	"github.com/medisched/medisched/internal/patients"
	"github.com/medisched/medisched/internal/payments"
	"github.com/medisched/medisched/internal/reviews"
	"github.com/medisched/medisched/internal/staff"
)

const testSecret = "router-test-secret"

type fakeStaffRepo struct {
	members []*staff.Member
}

func (f *fakeStaffRepo) Create(_ context.Context, m *staff.Member) (*staff.Member, error) {
	f.members = append(f.members, m)
	return m, nil
}

func (f *fakeStaffRepo) List(_ context.Context) ([]*staff.Member, error) {
	return f.members, nil
}

func (f *fakeStaffRepo) Update(_ context.Context, m *staff.Member) (*staff.Member, error) {
	return m, nil
}

func (f *fakeStaffRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

func newTestRouter() http.Handler {
	return New(&Config{
		JWTSecret:      testSecret,
		Auth:           auth.NewHandler(nil, nil, nil, nil, nil),
		Doctors:        doctors.NewHandler(nil, nil),
		Patients:       patients.NewHandler(nil, nil),
		Appointments:   appointments.NewHandler(nil, nil, nil),
		Admin:          admin.NewHandler(nil, nil, nil, nil),
		Staff:          staff.NewHandler(&fakeStaffRepo{}, nil),
		MedicalRecords: medicalrecords.NewHandler(nil, nil),
		Reviews:        reviews.NewHandler(nil, nil),
		Notifications:  notify.NewHandler(nil, nil),
		Finance:        payments.NewHandler(nil, nil, nil),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	})
}

func bearerToken(t *testing.T, role accounts.Role, subject string) string {
	t.Helper()
	token, err := auth.NewTokenIssuer(testSecret, time.Hour).Issue(role, subject, "Test User")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()
	for _, path := range []string{"/appointments/1", "/staff", "/admin/doctors", "/patients/1/profile"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	router := newTestRouter()
	for _, path := range []string{"/staff", "/admin/doctors", "/finance/summary", "/appointments"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", bearerToken(t, accounts.RolePatient, "42"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, "path %s", path)
	}
}

func TestAdminTokenReachesStaffHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", bearerToken(t, accounts.RoleAdmin, "admin-1"))
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestAliasParamCopiesRouteParam(t *testing.T) {
	var got string
	handler := aliasParam("id", "doctorID", func(w http.ResponseWriter, r *http.Request) {
		got = chi.URLParam(r, "doctorID")
		w.WriteHeader(http.StatusOK)
	})

	r := chi.NewRouter()
	r.Get("/doctors/{id}/appointments", handler)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors/DOC-1A2B3C4D/appointments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DOC-1A2B3C4D", got)
}
