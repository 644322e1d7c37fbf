package analytics

import (
	"net/http"
	"time"

	"github.com/kedai-dev/checkout-api/internal/common"
)

// Handler exposes voucher analytics read endpoints.
type Handler struct {
	Svc *Service
}

func (h *Handler) rangeBounds(r *http.Request) (time.Time, time.Time, bool) {
	query := r.URL.Query()
	fromStr := query.Get("from")
	toStr := query.Get("to")
	now := h.Svc.NowOrDefault()
	if fromStr != "" && toStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		return from, to, from.Before(to)
	}
	days := h.Svc.DefaultRange
	if days <= 0 {
		days = 30
	}
	if raw := query.Get("days"); raw != "" {
		if parsed := common.AtoiDefault(raw, days); parsed > 0 {
			days = parsed
		}
	}
	return now.AddDate(0, 0, -days), now, true
}

// Redemptions returns per-voucher redemption stats for the requested range.
func (h *Handler) Redemptions(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	from, to, ok := h.rangeBounds(r)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid date range", nil)
		return
	}
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 10)
	rows, err := h.Svc.Redemptions(r.Context(), from, to, int32(limit))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_ERROR", err.Error(), nil)
		return
	}
	common.JSONData(w, http.StatusOK, rows)
}

// DiscountGranted returns the total settled discount for the requested range.
func (h *Handler) DiscountGranted(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	from, to, ok := h.rangeBounds(r)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid date range", nil)
		return
	}
	total, err := h.Svc.DiscountGranted(r.Context(), from, to)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_ERROR", err.Error(), nil)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{
		"from":  from,
		"to":    to,
		"total": total,
	})
}
