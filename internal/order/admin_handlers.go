package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/kedai-dev/checkout-api/internal/cart"
	"github.com/kedai-dev/checkout-api/internal/common"
	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
)

// AdminHandler provides administrative order management endpoints.
type AdminHandler struct {
	Q *dbgen.Queries
}

type patchStatusRequest struct {
	Status string `json:"status"`
}

// allowedTransitions is the admin-facing order state machine.
var allowedTransitions = map[dbgen.OrderStatus][]dbgen.OrderStatus{
	dbgen.OrderStatusPENDINGPAYMENT: {dbgen.OrderStatusPAID, dbgen.OrderStatusCANCELED, dbgen.OrderStatusEXPIRED},
}

func transitionAllowed(from, to dbgen.OrderStatus) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// PatchStatus updates the order status with state-machine validation.
func (h *AdminHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order queries not configured", nil)
		return
	}
	oID, err := cart.ToUUID(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	var req patchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	target := dbgen.OrderStatus(req.Status)
	switch target {
	case dbgen.OrderStatusPAID, dbgen.OrderStatusCANCELED, dbgen.OrderStatusEXPIRED:
	default:
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unsupported status", nil)
		return
	}
	ord, err := h.Q.GetOrderByID(r.Context(), oID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	if !transitionAllowed(ord.Status, target) {
		common.JSONError(w, http.StatusConflict, "INVALID_STATE", "transition not allowed", nil)
		return
	}
	updated, err := h.Q.UpdateOrderStatus(r.Context(), dbgen.UpdateOrderStatusParams{ID: ord.ID, Status: target})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update order", nil)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"status": string(updated.Status)})
}
