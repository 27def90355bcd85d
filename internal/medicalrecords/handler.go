package medicalrecords

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medisched/medisched/internal/accounts"
	"github.com/medisched/medisched/internal/auth"
	"github.com/medisched/medisched/pkg/logging"
)

// Handler exposes medical record endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates the medical records handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

type createRequest struct {
	PatientID    int64  `json:"patientId"`
	PatientName  string `json:"patientName"`
	DoctorID     string `json:"doctorId"`
	DoctorName   string `json:"doctorName"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
	RecordDate   string `json:"recordDate"`
	FollowUpDate string `json:"followUpDate"`
}

// Create handles POST /medical-records. Doctors may only create records
// under their own id; admins may create for any doctor.
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
	if req.PatientID == 0 || req.DoctorID == "" || req.Diagnosis == "" {
		http.Error(w, "patientId, doctorId and diagnosis are required", http.StatusBadRequest)
		return
	}
	if !claims.IsAdmin() && !claims.OwnsDoctor(req.DoctorID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if req.RecordDate == "" {
		req.RecordDate = time.Now().Format("2006-01-02")
	}

	rec, err := h.repo.Create(r.Context(), &MedicalRecord{
		PatientID:    req.PatientID,
		PatientName:  req.PatientName,
		DoctorID:     req.DoctorID,
		DoctorName:   req.DoctorName,
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		Notes:        req.Notes,
		RecordDate:   req.RecordDate,
		FollowUpDate: req.FollowUpDate,
	})
	if err != nil {
		h.logger.Error("failed to create medical record", "error", err)
		http.Error(w, "failed to create medical record", http.StatusInternalServerError)
		return
	}

	h.logger.Info("medical record created", "id", rec.ID, "patient_id", rec.PatientID)
	writeJSON(w, http.StatusCreated, rec)
}

// ListByPatient handles GET /medical-records/patient/{patientID}. Patients
// see only their own history.
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := strconv.ParseInt(chi.URLParam(r, "patientID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authorization", http.StatusUnauthorized)
		return
	}
	if !claims.IsAdmin() && !claims.OwnsPatient(patientID) && claims.Role != accounts.RoleDoctor {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	records, err := h.repo.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list medical records", "error", err, "patient_id", patientID)
		http.Error(w, "failed to list medical records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*MedicalRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ListByDoctor handles GET /medical-records/doctor/{doctorID}.
func (h *Handler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authorization", http.StatusUnauthorized)
		return
	}
	if !claims.IsAdmin() && !claims.OwnsDoctor(doctorID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	records, err := h.repo.ListByDoctor(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to list medical records", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to list medical records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*MedicalRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
