package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/kedai-dev/checkout-api/internal/cart"
	"github.com/kedai-dev/checkout-api/internal/common"
	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
	"github.com/kedai-dev/checkout-api/internal/events"
	"github.com/kedai-dev/checkout-api/internal/obs"
)

// Handler serves the buyer-facing order endpoints.
type Handler struct {
	Q      *dbgen.Queries
	Events *events.Bus
}

// List returns the authenticated user's orders, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order queries not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok || userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	uID, err := cart.ToUUID(userID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return
	}
	limit, offset := common.ParseLimitOffset(r, 20, 100)
	total, err := h.Q.CountOrdersByUser(r.Context(), uID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to count orders", nil)
		return
	}
	orders, err := h.Q.ListOrdersByUser(r.Context(), dbgen.ListOrdersByUserParams{UserID: uID, Limit: limit, Offset: offset})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	response := make([]map[string]any, 0, len(orders))
	for _, ord := range orders {
		response = append(response, orderSummary(ord))
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       response,
		"pagination": common.Pagination{Limit: limit, Offset: offset, Total: total},
	})
}

// Get returns one order with its items and applied vouchers. Only the order's
// owner can read it.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ord, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	items, err := h.Q.ListOrderItems(r.Context(), ord.ID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order items", nil)
		return
	}
	vouchers, err := h.Q.ListOrderVouchers(r.Context(), ord.ID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order vouchers", nil)
		return
	}
	responseItems := make([]map[string]any, 0, len(items))
	for _, it := range items {
		responseItems = append(responseItems, map[string]any{
			"id":        cart.UUIDString(it.ID),
			"productId": cart.UUIDString(it.ProductID),
			"shopId":    cart.UUIDString(it.ShopID),
			"title":     it.Title,
			"qty":       it.Qty,
			"unitPrice": it.UnitPrice,
			"subtotal":  it.Subtotal,
		})
	}
	responseVouchers := make([]map[string]any, 0, len(vouchers))
	for _, v := range vouchers {
		responseVouchers = append(responseVouchers, map[string]any{
			"code":   v.Code,
			"amount": v.Amount,
		})
	}
	body := orderSummary(ord)
	body["items"] = responseItems
	body["vouchers"] = responseVouchers
	common.JSONData(w, http.StatusOK, body)
}

// Cancel moves a pending order to CANCELED. Paid and expired orders are
// immutable from this endpoint.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	ord, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	if ord.Status != dbgen.OrderStatusPENDINGPAYMENT {
		common.JSONError(w, http.StatusConflict, "INVALID_STATE", "only pending orders can be canceled", nil)
		return
	}
	updated, err := h.Q.UpdateOrderStatus(r.Context(), dbgen.UpdateOrderStatusParams{ID: ord.ID, Status: dbgen.OrderStatusCANCELED})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to cancel order", nil)
		return
	}
	if h.Events != nil {
		if _, err := h.Events.Emit(r.Context(), events.TopicOrderCanceled, updated.ID, map[string]any{
			"orderId": cart.UUIDString(updated.ID),
		}); err != nil {
			if obs.EventEmitFailureTotal != nil {
				obs.EventEmitFailureTotal.WithLabelValues(events.TopicOrderCanceled).Inc()
			}
			zerolog.Ctx(r.Context()).Error().Err(err).
				Str("order_id", cart.UUIDString(updated.ID)).
				Msg("order.canceled emit failed")
		}
	}
	common.JSONData(w, http.StatusOK, map[string]any{"status": string(updated.Status)})
}

func (h *Handler) loadOwned(w http.ResponseWriter, r *http.Request) (dbgen.Order, bool) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order queries not configured", nil)
		return dbgen.Order{}, false
	}
	userID, ok := common.UserID(r.Context())
	if !ok || userID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return dbgen.Order{}, false
	}
	oID, err := cart.ToUUID(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return dbgen.Order{}, false
	}
	uID, err := cart.ToUUID(userID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return dbgen.Order{}, false
	}
	ord, err := h.Q.GetOrderByID(r.Context(), oID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return dbgen.Order{}, false
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return dbgen.Order{}, false
	}
	if ord.UserID != uID {
		// hide existence from non-owners
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		return dbgen.Order{}, false
	}
	return ord, true
}

func orderSummary(ord dbgen.Order) map[string]any {
	return map[string]any{
		"id":               cart.UUIDString(ord.ID),
		"status":           ord.Status,
		"currency":         ord.Currency,
		"subtotal":         ord.PricingSubtotal,
		"shipping":         ord.PricingShipping,
		"productDiscount":  ord.ProductDiscount,
		"shippingDiscount": ord.ShippingDiscount,
		"total":            ord.PricingTotal,
		"createdAt":        ord.CreatedAt,
	}
}
