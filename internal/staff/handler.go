package staff

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medisched/medisched/pkg/logging"
)

// Handler exposes the admin staff CRUD. Role checks happen in the router.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates the staff handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

type memberRequest struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Status     string `json:"status"`
}

// Create handles POST /staff.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Role == "" {
		http.Error(w, "name and role are required", http.StatusBadRequest)
		return
	}

	m, err := h.repo.Create(r.Context(), &Member{
		Name:       req.Name,
		Role:       req.Role,
		Department: req.Department,
		Email:      req.Email,
		Phone:      req.Phone,
		Status:     req.Status,
	})
	if err != nil {
		h.logger.Error("failed to create staff member", "error", err)
		http.Error(w, "failed to create staff member", http.StatusInternalServerError)
		return
	}

	h.logger.Info("staff member created", "id", m.ID)
	writeJSON(w, http.StatusCreated, m)
}

// List handles GET /staff.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list staff", "error", err)
		http.Error(w, "failed to list staff", http.StatusInternalServerError)
		return
	}
	if members == nil {
		members = []*Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

// Update handles PUT /staff/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid staff id", http.StatusBadRequest)
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Role == "" {
		http.Error(w, "name and role are required", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		req.Status = StatusActive
	}

	m, err := h.repo.Update(r.Context(), &Member{
		ID:         id,
		Name:       req.Name,
		Role:       req.Role,
		Department: req.Department,
		Email:      req.Email,
		Phone:      req.Phone,
		Status:     req.Status,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "staff member not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update staff member", "error", err, "id", id)
		http.Error(w, "failed to update staff member", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Delete handles DELETE /staff/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid staff id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "staff member not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete staff member", "error", err, "id", id)
		http.Error(w, "failed to delete staff member", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
