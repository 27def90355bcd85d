package payments

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/medisched/medisched/pkg/logging"
)

// Handler exposes the admin finance endpoints.
type Handler struct {
	repo    Repository
	finance *FinanceService
	logger  *logging.Logger
}

// NewHandler creates the finance handler.
func NewHandler(repo Repository, finance *FinanceService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, finance: finance, logger: logger}
}

// dateRange pulls from/to query params, defaulting to the current month.
func dateRange(r *http.Request) (string, string, bool) {
	now := time.Now()
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	}
	if to == "" {
		to = now.Format("2006-01-02")
	}
	for _, d := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return "", "", false
		}
	}
	return from, to, true
}

// ListPayments handles GET /finance/payments?from&to.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(r)
	if !ok {
		http.Error(w, "from and to must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	list, err := h.repo.ListBetween(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to list payments", "error", err)
		http.Error(w, "failed to list payments", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Payment{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Summary handles GET /finance/summary?from&to.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(r)
	if !ok {
		http.Error(w, "from and to must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	summary, err := h.finance.Summarize(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to compute summary", "error", err)
		http.Error(w, "failed to compute summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Reconcile handles POST /finance/reconcile-payments.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	created, err := h.finance.Reconcile(r.Context())
	if err != nil {
		h.logger.Error("reconciliation failed", "error", err)
		http.Error(w, "reconciliation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
