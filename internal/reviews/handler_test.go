package reviews

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
	reviews []*Review
	nextID  int64
}

func (m *memRepo) Create(_ context.Context, rev *Review) (*Review, error) {
	if err := rev.Validate(); err != nil {
		return nil, err
	}
	m.nextID++
	cp := *rev
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	m.reviews = append(m.reviews, &cp)
	return &cp, nil
}

func (m *memRepo) ListByDoctor(_ context.Context, doctorID string) ([]*Review, error) {
	var out []*Review
	for _, rev := range m.reviews {
		if rev.DoctorID != doctorID {
			continue
		}
		cp := *rev
		if cp.Anonymous {
			cp.PatientName = ""
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) ListByPatient(_ context.Context, patientID int64) ([]*Review, error) {
	var out []*Review
	for _, rev := range m.reviews {
		if rev.PatientID == patientID {
			out = append(out, rev)
		}
	}
	return out, nil
}

func reviewRequest(method, target string, body any, params map[string]string, claims *auth.Claims) *http.Request {
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

func patientClaims(subject string) *auth.Claims {
	return &auth.Claims{
		Role:             accounts.RolePatient,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}
}

func TestCreateReview(t *testing.T) {
	repo := &memRepo{}
	h := NewHandler(repo, nil)

	rec := httptest.NewRecorder()
	h.Create(rec, reviewRequest(http.MethodPost, "/reviews", createRequest{
		DoctorID:    "DOC-1A2B3C4D",
		PatientID:   42,
		PatientName: "Jane Doe",
		Rating:      5,
		Comment:     "Great visit",
	}, nil, patientClaims("42")))

	require.Equal(t, http.StatusCreated, rec.Code)
	var created Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, 5, created.Rating)
}

func TestCreateReviewForbiddenForOtherPatient(t *testing.T) {
	h := NewHandler(&memRepo{}, nil)
	rec := httptest.NewRecorder()
	h.Create(rec, reviewRequest(http.MethodPost, "/reviews", createRequest{
		DoctorID:  "DOC-1A2B3C4D",
		PatientID: 42,
		Rating:    4,
	}, nil, patientClaims("99")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateReviewRatingBounds(t *testing.T) {
	h := NewHandler(&memRepo{}, nil)
	for _, rating := range []int{0, 6, -1} {
		rec := httptest.NewRecorder()
		h.Create(rec, reviewRequest(http.MethodPost, "/reviews", createRequest{
			DoctorID:  "DOC-1A2B3C4D",
			PatientID: 42,
			Rating:    rating,
		}, nil, patientClaims("42")))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "rating %d", rating)
	}
}

func TestListByDoctorBlanksAnonymousNames(t *testing.T) {
	repo := &memRepo{}
	_, err := repo.Create(context.Background(), &Review{
		DoctorID: "DOC-1A2B3C4D", PatientID: 42, PatientName: "Jane Doe", Rating: 5, Anonymous: true,
	})
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), &Review{
		DoctorID: "DOC-1A2B3C4D", PatientID: 43, PatientName: "John Roe", Rating: 3,
	})
	require.NoError(t, err)

	h := NewHandler(repo, nil)
	rec := httptest.NewRecorder()
	h.ListByDoctor(rec, reviewRequest(http.MethodGet, "/reviews/doctor/DOC-1A2B3C4D", nil,
		map[string]string{"doctorID": "DOC-1A2B3C4D"}, patientClaims("42")))

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []*Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].PatientName)
	assert.Equal(t, "John Roe", rows[1].PatientName)
}

func TestListByPatientOwnershipRequired(t *testing.T) {
	h := NewHandler(&memRepo{}, nil)
	rec := httptest.NewRecorder()
	h.ListByPatient(rec, reviewRequest(http.MethodGet, "/reviews/patient/42", nil,
		map[string]string{"patientID": "42"}, patientClaims("99")))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ListByPatient(rec, reviewRequest(http.MethodGet, "/reviews/patient/42", nil,
		map[string]string{"patientID": "42"}, patientClaims("42")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
