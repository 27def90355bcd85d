package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/medisched/internal/auth"
	"github.com/medisched/medisched/pkg/logging"
)

func newTestRouter(f *fixture) chi.Router {
	h := NewHandler(f.service, f.repo, logging.New("error"))
	r := chi.NewRouter()
	r.Post("/appointments/book", h.Book)
	r.Get("/appointments/{id}", h.Get)
	r.Get("/appointments/doctor/{doctorID}/availability", h.Availability)
	r.Put("/appointments/{id}/status", h.UpdateStatus)
	r.Post("/appointments/{id}/complete", h.Complete)
	r.Delete("/appointments/{id}", h.Cancel)
	return r
}

func doRequest(router chi.Router, method, path, body string, claims *auth.Claims) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if claims != nil {
		req = req.WithContext(auth.WithClaims(context.Background(), claims))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBookEndpoint(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)

	body := `{"patientId":42,"doctorId":"DOC-1A2B3C4D","date":"2025-01-01","time":"10:00","type":"checkup"}`
	rec := doRequest(router, http.MethodPost, "/appointments/book", body, patientClaims("42"))

	require.Equal(t, http.StatusCreated, rec.Code)
	var appt Appointment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&appt))
	assert.Equal(t, StatusPending, appt.Status)
}

func TestBookEndpointForbiddenForOtherPatient(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)

	body := `{"patientId":42,"doctorId":"DOC-1A2B3C4D","date":"2025-01-01","time":"10:00"}`
	rec := doRequest(router, http.MethodPost, "/appointments/book", body, patientClaims("7"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBookEndpointConflict(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)

	body := `{"patientId":42,"doctorId":"DOC-1A2B3C4D","date":"2025-01-01","time":"10:00"}`
	first := doRequest(router, http.MethodPost, "/appointments/book", body, patientClaims("42"))
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(router, http.MethodPost, "/appointments/book", body, patientClaims("42"))
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)

	rec := doRequest(router, http.MethodGet,
		"/appointments/doctor/DOC-1A2B3C4D/availability?date=2025-01-01", "", patientClaims("42"))
	require.Equal(t, http.StatusOK, rec.Code)

	var slots []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&slots))
	assert.Len(t, slots, 11)
}

func TestAvailabilityEndpointRequiresDate(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)

	rec := doRequest(router, http.MethodGet,
		"/appointments/doctor/DOC-1A2B3C4D/availability", "", patientClaims("42"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailabilityEndpointUnknownDoctor(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)

	rec := doRequest(router, http.MethodGet,
		"/appointments/doctor/DOC-MISSING1/availability?date=2025-01-01", "", patientClaims("42"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)
	appt := book(t, f)

	rec := doRequest(router, http.MethodPut,
		"/appointments/1/status?status=CONFIRMED", "", doctorClaims("DOC-1A2B3C4D"))
	require.Equal(t, http.StatusOK, rec.Code, "appointment %d", appt.ID)

	var got Appointment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, StatusConfirmed, got.Status)
}

func TestStatusEndpointInvalidValue(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)
	book(t, f)

	rec := doRequest(router, http.MethodPut,
		"/appointments/1/status?status=DONE", "", doctorClaims("DOC-1A2B3C4D"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusEndpointTerminalConflict(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)
	book(t, f)

	rec := doRequest(router, http.MethodDelete, "/appointments/1", "", doctorClaims("DOC-1A2B3C4D"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPut,
		"/appointments/1/status?status=CONFIRMED", "", doctorClaims("DOC-1A2B3C4D"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCompleteEndpointRequiresDiagnosis(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)
	book(t, f)

	rec := doRequest(router, http.MethodPost,
		"/appointments/1/complete", `{"notes":"fine"}`, doctorClaims("DOC-1A2B3C4D"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteEndpoint(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)
	book(t, f)

	rec := doRequest(router, http.MethodPut,
		"/appointments/1/status?status=CONFIRMED", "", doctorClaims("DOC-1A2B3C4D"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPost,
		"/appointments/1/complete", `{"diagnosis":"Lupus"}`, doctorClaims("DOC-1A2B3C4D"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.records.created, 1)
	assert.Equal(t, "Lupus", f.records.created[0].Diagnosis)
}

func TestGetEndpointHidesOthersAppointments(t *testing.T) {
	f := newFixture(t, Config{})
	router := newTestRouter(f)
	book(t, f)

	rec := doRequest(router, http.MethodGet, "/appointments/1", "", patientClaims("7"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(router, http.MethodGet, "/appointments/1", "", patientClaims("42"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
