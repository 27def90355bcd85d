package reviews

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medisched/medisched/internal/auth"
	"github.com/medisched/medisched/pkg/logging"
)

// Handler exposes review endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates the reviews handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

type createRequest struct {
	DoctorID    string `json:"doctorId"`
	PatientID   int64  `json:"patientId"`
	PatientName string `json:"patientName"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	Anonymous   bool   `json:"anonymous"`
}

// Create handles POST /reviews. Patients review under their own id only.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authorization", http.StatusUnauthorized)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DoctorID == "" || req.PatientID == 0 {
		http.Error(w, "doctorId and patientId are required", http.StatusBadRequest)
		return
	}
	if !claims.IsAdmin() && !claims.OwnsPatient(req.PatientID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	rev, err := h.repo.Create(r.Context(), &Review{
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Anonymous:   req.Anonymous,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRating) {
			http.Error(w, "rating must be between 1 and 5", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create review", "error", err)
		http.Error(w, "failed to create review", http.StatusInternalServerError)
		return
	}

	h.logger.Info("review created", "id", rev.ID, "doctor_id", rev.DoctorID, "rating", rev.Rating)
	writeJSON(w, http.StatusCreated, rev)
}

// ListByDoctor handles GET /reviews/doctor/{doctorID}. Open to all
// authenticated callers; anonymity is applied in the repository.
func (h *Handler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")

	reviews, err := h.repo.ListByDoctor(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to list reviews", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to list reviews", http.StatusInternalServerError)
		return
	}
	if reviews == nil {
		reviews = []*Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

// ListByPatient handles GET /reviews/patient/{patientID}.
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := strconv.ParseInt(chi.URLParam(r, "patientID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || (!claims.IsAdmin() && !claims.OwnsPatient(patientID)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	reviews, err := h.repo.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list reviews", "error", err, "patient_id", patientID)
		http.Error(w, "failed to list reviews", http.StatusInternalServerError)
		return
	}
	if reviews == nil {
		reviews = []*Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
