package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medisched/medisched/internal/auth"
	"github.com/medisched/medisched/internal/doctors"
	"github.com/medisched/medisched/internal/patients"
	"github.com/medisched/medisched/pkg/logging"
)

// Handler exposes the appointment endpoints.
type Handler struct {
	service *Service
	repo    Repository
	logger  *logging.Logger
}

// NewHandler creates the appointments handler.
func NewHandler(service *Service, repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, repo: repo, logger: logger}
}

type bookRequest struct {
	PatientID int64  `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Type      string `json:"type"`
	Notes     string `json:"notes"`
}

// Book handles POST /appointments/book. Patients may only book for
// themselves; admins may book on behalf of any patient.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authorization", http.StatusUnauthorized)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientID == 0 || req.DoctorID == "" || req.Date == "" || req.Time == "" {
		http.Error(w, "patientId, doctorId, date and time are required", http.StatusBadRequest)
		return
	}
	if !claims.IsAdmin() && !claims.OwnsPatient(req.PatientID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	appt, err := h.service.Book(r.Context(), BookingRequest{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Type:      req.Type,
		Notes:     req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrNotFound), errors.Is(err, patients.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrSlotTaken):
			http.Error(w, "slot is already booked", http.StatusConflict)
		case errors.Is(err, ErrPastTime):
			http.Error(w, "appointment time is in the past", http.StatusBadRequest)
		case errors.Is(err, ErrInvalidDate):
			http.Error(w, "date must be YYYY-MM-DD and time HH:MM", http.StatusBadRequest)
		default:
			h.logger.Error("booking failed", "error", err)
			http.Error(w, "booking failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// Availability handles GET /appointments/doctor/{doctorID}/availability?date=.
// Public to any authenticated caller.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date query parameter is required", http.StatusBadRequest)
		return
	}

	slots, err := h.service.Availability(r.Context(), doctorID, date)
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrNotFound):
			http.Error(w, "doctor not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidDate):
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		default:
			h.logger.Error("availability failed", "error", err, "doctor_id", doctorID)
			http.Error(w, "availability failed", http.StatusInternalServerError)
		}
		return
	}
	if slots == nil {
		slots = []string{}
	}
	writeJSON(w, http.StatusOK, slots)
}

// Get handles GET /appointments/{id}. Only participants and admins may view.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authorization", http.StatusUnauthorized)
		return
	}

	appt, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment", "error", err, "id", id)
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if !claims.IsAdmin() && !claims.OwnsPatient(appt.PatientID) && !claims.OwnsDoctor(appt.DoctorID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// List handles GET /appointments (admin only; enforced by route middleware).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterFromQuery(r)
	if !ok {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}
	appts, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(appts))
}

// ListByPatient handles GET /appointments/patient/{patientID}.
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
	filter, ok := filterFromQuery(r)
	if !ok {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}

	appts, err := h.repo.ListByPatient(r.Context(), patientID, filter)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "patient_id", patientID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(appts))
}

// ListByDoctor handles GET /appointments/doctor/{doctorID} and
// GET /doctors/{doctorID}/appointments with date/status/search filters.
func (h *Handler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || (!claims.IsAdmin() && !claims.OwnsDoctor(doctorID)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	filter, ok := filterFromQuery(r)
	if !ok {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}

	appts, err := h.repo.ListByDoctor(r.Context(), doctorID, filter)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(appts))
}

type completionRequest struct {
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
	FollowUpDate string `json:"followUpDate"`
}

// UpdateStatus handles PUT /appointments/{id}/status?status=X. The body may
// carry a completion payload for COMPLETED transitions.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authorization", http.StatusUnauthorized)
		return
	}
	target, ok := ParseStatus(r.URL.Query().Get("status"))
	if !ok {
		http.Error(w, "status must be one of PENDING, CONFIRMED, CANCELLED, COMPLETED", http.StatusBadRequest)
		return
	}

	var details *CompletionDetails
	if target == StatusCompleted {
		var req completionRequest
		// The payload is optional; decode errors on an empty body are fine.
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			details = &CompletionDetails{
				Diagnosis:    req.Diagnosis,
				Prescription: req.Prescription,
				Notes:        req.Notes,
				FollowUpDate: req.FollowUpDate,
			}
		}
	}

	h.transition(w, r, claims, id, target, details)
}

// Complete handles POST /appointments/{id}/complete. Unlike the generic
// status route, the diagnosis is mandatory here.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authorization", http.StatusUnauthorized)
		return
	}

	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Diagnosis == "" {
		http.Error(w, "diagnosis is required", http.StatusBadRequest)
		return
	}

	h.transition(w, r, claims, id, StatusCompleted, &CompletionDetails{
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		Notes:        req.Notes,
		FollowUpDate: req.FollowUpDate,
	})
}

// Cancel handles DELETE /appointments/{id} as a soft cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authorization", http.StatusUnauthorized)
		return
	}

	h.transition(w, r, claims, id, StatusCancelled, nil)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, claims *auth.Claims, id int64, target Status, details *CompletionDetails) {
	appt, err := h.service.Transition(r.Context(), claims, id, target, details)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "appointment not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, ErrTerminalStatus):
			http.Error(w, "appointment status cannot change", http.StatusConflict)
		default:
			h.logger.Error("status change failed", "error", err, "id", id)
			http.Error(w, "status change failed", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func filterFromQuery(r *http.Request) (ListFilter, bool) {
	filter := ListFilter{
		Date:   r.URL.Query().Get("date"),
		Search: r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := ParseStatus(raw)
		if !ok {
			return ListFilter{}, false
		}
		filter.Status = status
	}
	return filter, true
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func emptyIfNil(appts []*Appointment) []*Appointment {
	if appts == nil {
		return []*Appointment{}
	}
	return appts
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
