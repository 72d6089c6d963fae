package settings

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lumeno/accounts/internal/middleware"
	"github.com/lumeno/accounts/internal/store"
)

// BillingRequest carries the full card details. Everything but the last
// four digits is dropped after validation.
type BillingRequest struct {
	CardNumber     string `json:"card_number"`
	CardholderName string `json:"cardholder_name"`
	ExpiryMonth    string `json:"expiry_month"`
	ExpiryYear     string `json:"expiry_year"`
	CVV            string `json:"cvv"`
	InvoiceEmail   string `json:"invoice_email"`
}

// PlanRequest is the plan selection with the client-computed total. A
// positive total requires a card on file before the record is written;
// nothing re-checks the pairing afterwards.
type PlanRequest struct {
	Name                 string  `json:"plan_name"`
	AddonPrioritySupport bool    `json:"addon_priority_support"`
	AddonExtraStorage    bool    `json:"addon_extra_storage"`
	TotalPrice           float64 `json:"total_price"`
}

type Handler struct {
	repo *Repository
	log  *slog.Logger
}

func NewHandler(repo *Repository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, log: log}
}

// GetNotifications handles GET /settings/notifications.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromCtx(r.Context())
	n, err := h.repo.GetNotifications(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch notification settings", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// PutNotifications handles PUT /settings/notifications. All three switches
// are replaced as one merge; absent JSON fields become false.
func (h *Handler) PutNotifications(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromCtx(r.Context())
	var n Notifications
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeError(w, http.StatusBadRequest, "Expected JSON body")
		return
	}
	if err := h.repo.PutNotifications(r.Context(), email, &n); err != nil {
		h.storeError(w, "update notification settings", err)
		return
	}
	writeJSON(w, http.StatusOK, &n)
}

// GetBilling handles GET /settings/billing.
func (h *Handler) GetBilling(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromCtx(r.Context())
	b, err := h.repo.GetBilling(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch billing settings", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// PutBilling handles PUT /settings/billing.
func (h *Handler) PutBilling(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromCtx(r.Context())
	var req BillingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Expected JSON body")
		return
	}
	update := Billing{InvoiceEmail: strings.TrimSpace(req.InvoiceEmail)}
	if update.InvoiceEmail != "" && !strings.Contains(update.InvoiceEmail, "@") {
		writeError(w, http.StatusBadRequest, "invalid invoice email")
		return
	}
	if req.CardNumber != "" {
		digits := cardDigits(req.CardNumber)
		if digits == "" || len(digits) != 16 {
			writeError(w, http.StatusBadRequest, "card number must be 16 digits")
			return
		}
		if req.CardholderName == "" || req.ExpiryMonth == "" || req.ExpiryYear == "" {
			writeError(w, http.StatusBadRequest, "Missing required card fields")
			return
		}
		if len(req.CVV) < 3 {
			writeError(w, http.StatusBadRequest, "invalid CVV")
			return
		}
		update.CardLast4 = digits[len(digits)-4:]
		update.CardholderName = req.CardholderName
		update.ExpiryMonth = req.ExpiryMonth
		update.ExpiryYear = req.ExpiryYear
	}
	if err := h.repo.PutBilling(r.Context(), email, &update); err != nil {
		h.storeError(w, "update billing settings", err)
		return
	}
	b, err := h.repo.GetBilling(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch billing settings", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// GetPlan handles GET /settings/plans.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromCtx(r.Context())
	p, err := h.repo.GetPlan(r.Context(), email)
	if err != nil {
		h.storeError(w, "fetch plan settings", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PutPlan handles PUT /settings/plans.
func (h *Handler) PutPlan(w http.ResponseWriter, r *http.Request) {
	email := middleware.EmailFromCtx(r.Context())
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Expected JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.TotalPrice > 0 {
		onFile, err := h.repo.HasCardOnFile(r.Context(), email)
		if err != nil {
			h.storeError(w, "fetch billing settings", err)
			return
		}
		if !onFile {
			writeError(w, http.StatusBadRequest, "add billing method first")
			return
		}
	}
	p := Plan{
		Name:                 req.Name,
		AddonPrioritySupport: req.AddonPrioritySupport,
		AddonExtraStorage:    req.AddonExtraStorage,
		LastChargedPrice:     req.TotalPrice,
	}
	if err := h.repo.PutPlan(r.Context(), email, &p); err != nil {
		h.storeError(w, "update plan settings", err)
		return
	}
	writeJSON(w, http.StatusOK, &p)
}

// cardDigits strips spaces and hyphens; any other non-digit makes the
// number invalid.
func cardDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return ""
		}
	}
	return b.String()
}

func (h *Handler) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	h.log.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "failed to "+op+": "+err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
