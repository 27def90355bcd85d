package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medisched/medisched/internal/auth"
	"github.com/medisched/medisched/pkg/logging"
)

// Handler exposes notification listing and read-marking.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates the notifications handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// ListForDoctor handles GET /doctors/{id}/notifications.
func (h *Handler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || (!claims.IsAdmin() && !claims.OwnsDoctor(id)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	h.list(w, r, id, RecipientDoctor)
}

// ListForPatient handles GET /patients/{id}/notifications.
func (h *Handler) ListForPatient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || (!claims.IsAdmin() && !claims.OwnsPatient(id)) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	h.list(w, r, strconv.FormatInt(id, 10), RecipientPatient)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, recipientID, recipientType string) {
	notifications, err := h.store.ListByRecipient(r.Context(), recipientID, recipientType)
	if err != nil {
		h.logger.Error("failed to list notifications", "error", err, "recipient", recipientID)
		http.Error(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []*Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead handles PUT /notifications/{id}/read. Only the recipient (or an
// admin) may mark a notification.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authorization", http.StatusUnauthorized)
		return
	}

	n, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load notification", "error", err, "id", id)
		http.Error(w, "failed to load notification", http.StatusInternalServerError)
		return
	}
	if !claims.IsAdmin() && n.RecipientID != claims.SubjectID() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.store.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to mark notification read", "error", err, "id", id)
		http.Error(w, "failed to mark notification read", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
