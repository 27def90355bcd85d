package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medisched/medisched/internal/accounts"
	"github.com/medisched/medisched/internal/auth"
	"github.com/medisched/medisched/internal/doctors"
	"github.com/medisched/medisched/internal/patients"
	"github.com/medisched/medisched/internal/storage"
	"github.com/medisched/medisched/pkg/logging"
)

const maxUploadBytes = 10 << 20

// Handler exposes the administrator account-management surface. Role checks
// happen in the router; everything here assumes an admin caller.
type Handler struct {
	doctors  doctors.Repository
	patients patients.Repository
	uploads  *storage.UploadStore
	logger   *logging.Logger
}

// NewHandler creates the admin handler. uploads may be nil when no object
// storage is configured; upload endpoints then return 503.
func NewHandler(doctorRepo doctors.Repository, patientRepo patients.Repository, uploads *storage.UploadStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{doctors: doctorRepo, patients: patientRepo, uploads: uploads, logger: logger}
}

// ListDoctors handles GET /admin/doctors.
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	list, err := h.doctors.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		http.Error(w, "failed to list doctors", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*doctors.Doctor{}
	}
	writeJSON(w, http.StatusOK, list)
}

type doctorRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	Specialization       string `json:"specialization"`
	Qualification        string `json:"qualification"`
	Experience           string `json:"experience"`
	ClinicAddress        string `json:"clinicAddress"`
	Status               string `json:"status"`
	ConsultationFeeCents int64  `json:"consultationFeeCents"`
}

// CreateDoctor handles POST /admin/doctors. Admin-created doctors start
// ACTIVE; there is no approval step for them.
func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req doctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "name, email and password are required", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}
	status := req.Status
	if status == "" {
		status = doctors.StatusActive
	}
	if !doctors.ValidStatus(status) {
		http.Error(w, "invalid doctor status", http.StatusBadRequest)
		return
	}

	created, err := h.doctors.Create(r.Context(), &doctors.Doctor{
		Account: accounts.Account{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
		},
		Specialization:       req.Specialization,
		Qualification:        req.Qualification,
		Experience:           req.Experience,
		ClinicAddress:        req.ClinicAddress,
		Status:               status,
		ConsultationFeeCents: req.ConsultationFeeCents,
	})
	if err != nil {
		if errors.Is(err, doctors.ErrEmailTaken) {
			http.Error(w, "email is already in use", http.StatusConflict)
			return
		}
		h.logger.Error("failed to create doctor", "error", err)
		http.Error(w, "failed to create doctor", http.StatusInternalServerError)
		return
	}

	h.logger.Info("doctor created by admin", "doctor_id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// GetDoctor handles GET /admin/doctors/{id}.
func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.doctors.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, doctors.ErrNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load doctor", "error", err)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doctor)
}

// UpdateDoctor handles PUT /admin/doctors/{id}.
func (h *Handler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req doctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		http.Error(w, "name and email are required", http.StatusBadRequest)
		return
	}

	doctor, err := h.doctors.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, doctors.ErrNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load doctor", "error", err, "doctor_id", id)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}

	doctor.Name = req.Name
	doctor.Email = req.Email
	doctor.Specialization = req.Specialization
	doctor.Qualification = req.Qualification
	doctor.Experience = req.Experience
	doctor.ClinicAddress = req.ClinicAddress
	if req.ConsultationFeeCents > 0 {
		doctor.ConsultationFeeCents = req.ConsultationFeeCents
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		doctor.PasswordHash = hash
	}

	updated, err := h.doctors.Update(r.Context(), doctor)
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrEmailTaken):
			http.Error(w, "email is already in use", http.StatusConflict)
		case errors.Is(err, doctors.ErrNotFound):
			http.Error(w, "doctor not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to update doctor", "error", err, "doctor_id", id)
			http.Error(w, "failed to update doctor", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// UpdateDoctorStatus handles PUT /admin/doctors/{id}/status?status=ACTIVE.
func (h *Handler) UpdateDoctorStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.URL.Query().Get("status")
	if status == "" {
		http.Error(w, "status query parameter is required", http.StatusBadRequest)
		return
	}

	updated, err := h.doctors.UpdateStatus(r.Context(), id, status)
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrInvalidStatus):
			http.Error(w, "invalid doctor status", http.StatusBadRequest)
		case errors.Is(err, doctors.ErrNotFound):
			http.Error(w, "doctor not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to update doctor status", "error", err, "doctor_id", id)
			http.Error(w, "failed to update doctor status", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("doctor status updated", "doctor_id", id, "status", status)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteDoctor handles DELETE /admin/doctors/{id}.
func (h *Handler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.doctors.Delete(r.Context(), id); err != nil {
		if errors.Is(err, doctors.ErrNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete doctor", "error", err, "doctor_id", id)
		http.Error(w, "failed to delete doctor", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadDoctorProfilePicture handles POST /admin/doctors/{id}/profile-picture.
func (h *Handler) UploadDoctorProfilePicture(w http.ResponseWriter, r *http.Request) {
	h.uploadDoctorFile(w, r, "profile_picture")
}

// UploadDoctorCredentials handles POST /admin/doctors/{id}/credentials.
func (h *Handler) UploadDoctorCredentials(w http.ResponseWriter, r *http.Request) {
	h.uploadDoctorFile(w, r, "credentials_file")
}

func (h *Handler) uploadDoctorFile(w http.ResponseWriter, r *http.Request, column string) {
	id := chi.URLParam(r, "id")
	if _, err := h.doctors.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, doctors.ErrNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load doctor", "error", err, "doctor_id", id)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}

	key, ok := h.storeUpload(w, r, "doctors", id)
	if !ok {
		return
	}
	if err := h.doctors.SetFile(r.Context(), id, column, key); err != nil {
		h.logger.Error("failed to record upload", "error", err, "doctor_id", id)
		http.Error(w, "failed to record upload", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// ListPatients handles GET /admin/patients.
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	list, err := h.patients.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list patients", "error", err)
		http.Error(w, "failed to list patients", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*patients.Patient{}
	}
	writeJSON(w, http.StatusOK, list)
}

type patientRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	BloodGroup  string `json:"bloodGroup"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
}

// CreatePatient handles POST /admin/patients.
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "name, email and password are required", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	created, err := h.patients.Create(r.Context(), &patients.Patient{
		Account: accounts.Account{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
		},
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		BloodGroup:  req.BloodGroup,
		Age:         req.Age,
		Gender:      req.Gender,
	})
	if err != nil {
		if errors.Is(err, patients.ErrEmailTaken) {
			http.Error(w, "email is already in use", http.StatusConflict)
			return
		}
		h.logger.Error("failed to create patient", "error", err)
		http.Error(w, "failed to create patient", http.StatusInternalServerError)
		return
	}

	h.logger.Info("patient created by admin", "patient_id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// GetPatient handles GET /admin/patients/{id}.
func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(w, r)
	if !ok {
		return
	}
	patient, err := h.patients.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load patient", "error", err, "patient_id", id)
		http.Error(w, "failed to load patient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

// UpdatePatient handles PUT /admin/patients/{id}.
func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(w, r)
	if !ok {
		return
	}
	var req patientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		http.Error(w, "name and email are required", http.StatusBadRequest)
		return
	}

	patient, err := h.patients.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, patients.ErrNotFound) {
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
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		patient.PasswordHash = hash
	}

	updated, err := h.patients.Update(r.Context(), patient)
	if err != nil {
		switch {
		case errors.Is(err, patients.ErrEmailTaken):
			http.Error(w, "email is already in use", http.StatusConflict)
		case errors.Is(err, patients.ErrNotFound):
			http.Error(w, "patient not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to update patient", "error", err, "patient_id", id)
			http.Error(w, "failed to update patient", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeletePatient handles DELETE /admin/patients/{id}.
func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(w, r)
	if !ok {
		return
	}
	if err := h.patients.Delete(r.Context(), id); err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete patient", "error", err, "patient_id", id)
		http.Error(w, "failed to delete patient", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPatientProfilePicture handles POST /admin/patients/{id}/profile-picture.
func (h *Handler) UploadPatientProfilePicture(w http.ResponseWriter, r *http.Request) {
	h.uploadPatientFile(w, r, "profile_picture")
}

// UploadPatientDocuments handles POST /admin/patients/{id}/documents.
func (h *Handler) UploadPatientDocuments(w http.ResponseWriter, r *http.Request) {
	h.uploadPatientFile(w, r, "documents_file")
}

func (h *Handler) uploadPatientFile(w http.ResponseWriter, r *http.Request, column string) {
	id, ok := patientID(w, r)
	if !ok {
		return
	}
	if _, err := h.patients.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load patient", "error", err, "patient_id", id)
		http.Error(w, "failed to load patient", http.StatusInternalServerError)
		return
	}

	key, ok := h.storeUpload(w, r, "patients", strconv.FormatInt(id, 10))
	if !ok {
		return
	}
	if err := h.patients.SetFile(r.Context(), id, column, key); err != nil {
		h.logger.Error("failed to record upload", "error", err, "patient_id", id)
		http.Error(w, "failed to record upload", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// storeUpload reads the multipart "file" field and writes it to object
// storage. It writes the error response itself and reports success.
func (h *Handler) storeUpload(w http.ResponseWriter, r *http.Request, kind, owner string) (string, bool) {
	if h.uploads == nil || !h.uploads.Enabled() {
		http.Error(w, "uploads are not configured", http.StatusServiceUnavailable)
		return "", false
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return "", false
	}
	defer file.Close()

	key, err := h.uploads.Put(r.Context(), kind, owner, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("upload failed", "error", err, "kind", kind, "owner", owner)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return "", false
	}
	return key, true
}

func patientID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
