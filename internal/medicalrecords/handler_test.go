package medicalrecords

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/medisched/internal/accounts"
	"github.com/medisched/medisched/internal/auth"
)

type memRepo struct {
	records []*MedicalRecord
	nextID  int64
}

func (m *memRepo) Create(_ context.Context, rec *MedicalRecord) (*MedicalRecord, error) {
	m.nextID++
	cp := *rec
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	m.records = append(m.records, &cp)
	return &cp, nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*MedicalRecord, error) {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) ListByPatient(_ context.Context, patientID int64) ([]*MedicalRecord, error) {
	var out []*MedicalRecord
	for _, rec := range m.records {
		if rec.PatientID == patientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memRepo) ListByDoctor(_ context.Context, doctorID string) ([]*MedicalRecord, error) {
	var out []*MedicalRecord
	for _, rec := range m.records {
		if rec.DoctorID == doctorID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func recordRequest(method, target string, body any, params map[string]string, claims *auth.Claims) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if claims != nil {
		ctx = auth.WithClaims(ctx, claims)
	}
	return req.WithContext(ctx)
}

func roleClaims(role accounts.Role, subject string) *auth.Claims {
	return &auth.Claims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}
}

func TestCreateRecordAsOwningDoctor(t *testing.T) {
	repo := &memRepo{}
	h := NewHandler(repo, nil)

	rec := httptest.NewRecorder()
	h.Create(rec, recordRequest(http.MethodPost, "/medical-records", createRequest{
		PatientID: 42,
		DoctorID:  "DOC-1A2B3C4D",
		Diagnosis: "Lupus",
	}, nil, roleClaims(accounts.RoleDoctor, "DOC-1A2B3C4D")))

	require.Equal(t, http.StatusCreated, rec.Code)
	var created MedicalRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Lupus", created.Diagnosis)
	assert.Equal(t, time.Now().Format("2006-01-02"), created.RecordDate)
}

func TestCreateRecordForbiddenForOtherDoctor(t *testing.T) {
	h := NewHandler(&memRepo{}, nil)
	rec := httptest.NewRecorder()
	h.Create(rec, recordRequest(http.MethodPost, "/medical-records", createRequest{
		PatientID: 42,
		DoctorID:  "DOC-1A2B3C4D",
		Diagnosis: "Lupus",
	}, nil, roleClaims(accounts.RoleDoctor, "DOC-FFFFFFFF")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateRecordRequiresDiagnosis(t *testing.T) {
	h := NewHandler(&memRepo{}, nil)
	rec := httptest.NewRecorder()
	h.Create(rec, recordRequest(http.MethodPost, "/medical-records", createRequest{
		PatientID: 42,
		DoctorID:  "DOC-1A2B3C4D",
	}, nil, roleClaims(accounts.RoleDoctor, "DOC-1A2B3C4D")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByPatientHidesOtherPatients(t *testing.T) {
	repo := &memRepo{}
	_, err := repo.Create(context.Background(), &MedicalRecord{
		PatientID: 42, DoctorID: "DOC-1A2B3C4D", Diagnosis: "Lupus", RecordDate: "2025-06-02",
	})
	require.NoError(t, err)
	h := NewHandler(repo, nil)

	rec := httptest.NewRecorder()
	h.ListByPatient(rec, recordRequest(http.MethodGet, "/medical-records/patient/42", nil,
		map[string]string{"patientID": "42"}, roleClaims(accounts.RolePatient, "99")))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ListByPatient(rec, recordRequest(http.MethodGet, "/medical-records/patient/42", nil,
		map[string]string{"patientID": "42"}, roleClaims(accounts.RolePatient, "42")))
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []*MedicalRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)
}

func TestListByDoctorOwnership(t *testing.T) {
	repo := &memRepo{}
	_, err := repo.Create(context.Background(), &MedicalRecord{
		PatientID: 42, DoctorID: "DOC-1A2B3C4D", Diagnosis: "Lupus", RecordDate: "2025-06-02",
	})
	require.NoError(t, err)
	h := NewHandler(repo, nil)

	rec := httptest.NewRecorder()
	h.ListByDoctor(rec, recordRequest(http.MethodGet, "/medical-records/doctor/DOC-1A2B3C4D", nil,
		map[string]string{"doctorID": "DOC-1A2B3C4D"}, roleClaims(accounts.RoleDoctor, "DOC-FFFFFFFF")))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ListByDoctor(rec, recordRequest(http.MethodGet, "/medical-records/doctor/DOC-1A2B3C4D", nil,
		map[string]string{"doctorID": "DOC-1A2B3C4D"}, roleClaims(accounts.RoleAdmin, "admin-1")))
	assert.Equal(t, http.StatusOK, rec.Code)
}
