package patients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medisched/medisched/internal/authclaims"
	"github.com/medisched/medisched/pkg/logging"
)

// Handler exposes patient self-service endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates the patient handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

func patientIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func canAccess(r *http.Request, patientID int64) bool {
	claims, ok := authclaims.ClaimsFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.IsAdmin() || claims.OwnsPatient(patientID)
}

// GetProfile handles GET /patients/{id}/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := patientIDParam(r)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	if !canAccess(r, id) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	patient, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load patient", "error", err, "patient_id", id)
		http.Error(w, "failed to load patient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	BloodGroup  string `json:"bloodGroup"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
}

// UpdateProfile handles PUT /patients/{id}/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := patientIDParam(r)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	if !canAccess(r, id) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		http.Error(w, "name and email are required", http.StatusBadRequest)
		return
	}

	patient, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load patient", "error", err, "patient_id", id)
		http.Error(w, "failed to load patient", http.StatusInternalServerError)
		return
	}

	patient.Name = req.Name
	patient.Email = req.Email
	patient.PhoneNumber = req.PhoneNumber
	patient.Address = req.Address
	patient.BloodGroup = req.BloodGroup
	patient.Age = req.Age
	patient.Gender = req.Gender

	updated, err := h.repo.Update(r.Context(), patient)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			http.Error(w, "email is already in use", http.StatusConflict)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "patient not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to update patient", "error", err, "patient_id", id)
			http.Error(w, "failed to update patient", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("patient profile updated", "patient_id", id)
	writeJSON(w, http.StatusOK, updated)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
