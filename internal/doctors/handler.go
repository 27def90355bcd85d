package doctors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medisched/medisched/internal/authclaims"
	"github.com/medisched/medisched/pkg/logging"
)

// Handler exposes doctor self-service endpoints. Admin CRUD lives in the
// admin handler; this surface is profile and availability management.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates the doctor handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// canAccess allows the doctor themselves or an admin.
func canAccess(r *http.Request, doctorID string) bool {
	claims, ok := authclaims.ClaimsFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.IsAdmin() || claims.OwnsDoctor(doctorID)
}

// GetProfile handles GET /doctors/{id}/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canAccess(r, id) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	doctor, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load doctor", "error", err, "doctor_id", id)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doctor)
}

type updateProfileRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Specialization       string `json:"specialization"`
	Qualification        string `json:"qualification"`
	Experience           string `json:"experience"`
	ClinicAddress        string `json:"clinicAddress"`
	ConsultationFeeCents int64  `json:"consultationFeeCents"`
}

// UpdateProfile handles PUT /doctors/{id}/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
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

	doctor, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
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

	updated, err := h.repo.Update(r.Context(), doctor)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			http.Error(w, "email is already in use", http.StatusConflict)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "doctor not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to update doctor", "error", err, "doctor_id", id)
			http.Error(w, "failed to update doctor", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("doctor profile updated", "doctor_id", id)
	writeJSON(w, http.StatusOK, updated)
}

// GetAvailability handles GET /doctors/{id}/availability. Returns the stored
// weekly schedule, or an empty object when none is set.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canAccess(r, id) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	doctor, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load doctor", "error", err, "doctor_id", id)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}

	week, ok := ParseWeekSchedule(doctor.Schedule)
	if !ok {
		week = WeekSchedule{}
	}
	writeJSON(w, http.StatusOK, week)
}

// PutAvailability handles PUT /doctors/{id}/availability. The body is the
// weekly schedule map keyed by lowercase weekday name.
func (h *Handler) PutAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canAccess(r, id) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var raw WeekSchedule
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "invalid schedule body", http.StatusBadRequest)
		return
	}
	week := make(WeekSchedule, len(raw))
	for day, entry := range raw {
		week[strings.ToLower(strings.TrimSpace(day))] = entry
	}
	for day, sched := range week {
		if !validWeekday(day) {
			http.Error(w, "unknown weekday "+day, http.StatusBadRequest)
			return
		}
		if sched.IsAvailable && (sched.Start == "" || sched.End == "") {
			http.Error(w, "available days need start and end times", http.StatusBadRequest)
			return
		}
	}

	encoded, err := week.Encode()
	if err != nil {
		http.Error(w, "invalid schedule body", http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdateSchedule(r.Context(), id, encoded); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update schedule", "error", err, "doctor_id", id)
		http.Error(w, "failed to update schedule", http.StatusInternalServerError)
		return
	}

	h.logger.Info("doctor schedule updated", "doctor_id", id)
	writeJSON(w, http.StatusOK, week)
}

var weekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

func validWeekday(day string) bool {
	_, ok := weekdays[day]
	return ok
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
