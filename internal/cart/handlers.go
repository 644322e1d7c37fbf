package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kedai-dev/checkout-api/internal/common"
	"github.com/kedai-dev/checkout-api/internal/shipping"
	"github.com/kedai-dev/checkout-api/internal/voucher"
)

// Handler wires cart services to HTTP.
type Handler struct {
	Svc            *Service
	ShippingClient shipping.Client
	ShippingOrigin string
	Currency       string
}

// Create creates or returns a guest cart identifier.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		AnonID string `json:"anonId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	anonID := strings.TrimSpace(payload.AnonID)
	if anonID == "" {
		anonID = uuid.NewString()
	}
	cart, err := h.Svc.EnsureCart(r.Context(), nil, &anonID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, map[string]any{
		"cartId": UUIDString(cart.ID),
		"anonId": anonID,
	})
}

// GetActive resolves the current active cart for the user or anon ID.
func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	ctx := r.Context()

	var userID *string
	if uID, ok := common.UserID(ctx); ok && strings.TrimSpace(uID) != "" {
		userID = &uID
	}
	var anonID *string
	if aID := r.URL.Query().Get("anonId"); strings.TrimSpace(aID) != "" {
		anonID = &aID
	}
	if userID == nil && anonID == nil {
		common.JSONError(w, http.StatusOK, "NO_CONTENT", "no active cart context", nil)
		return
	}

	cart, err := h.Svc.EnsureCart(ctx, userID, anonID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{
		"id":     UUIDString(cart.ID),
		"anonId": nullableText(cart.AnonID),
	})
}

// Get returns cart contents with a live pricing summary. Vouchers that no
// longer apply to the current contents are dropped before pricing.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil || h.Svc.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	cID, err := toUUID(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return
	}
	cart, err := h.Svc.Q.GetCartByID(r.Context(), cID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load cart", nil)
		return
	}
	now := time.Now()
	if h.Svc != nil {
		now = h.Svc.now()
	}
	if cart.ExpiresAt.Valid && cart.ExpiresAt.Time.Before(now) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart expired", nil)
		return
	}
	items, err := h.Svc.Q.ListCartItems(r.Context(), cID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load cart items", nil)
		return
	}

	shippingCost := shippingCostParam(r)
	summary, breakdown, applied, err := h.Svc.Quote(r.Context(), cID, shippingCost)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to price cart", nil)
		return
	}

	responseItems := make([]map[string]any, 0, len(items))
	for _, it := range items {
		responseItems = append(responseItems, map[string]any{
			"id":        UUIDString(it.ID),
			"productId": UUIDString(it.ProductID),
			"shopId":    UUIDString(it.ShopID),
			"title":     it.Title,
			"qty":       it.Qty,
			"unitPrice": it.UnitPrice,
			"subtotal":  it.Subtotal,
		})
	}
	codes := make([]string, 0, len(applied))
	for _, v := range applied {
		codes = append(codes, v.Code)
	}
	common.JSONData(w, http.StatusOK, map[string]any{
		"id":       UUIDString(cart.ID),
		"anonId":   nullableText(cart.AnonID),
		"items":    responseItems,
		"vouchers": codes,
		"pricing": map[string]any{
			"subtotal":         summary.Subtotal,
			"shippingFee":      summary.ShippingFee,
			"productDiscount":  breakdown.Product,
			"shippingDiscount": breakdown.Shipping,
			"discount":         summary.Discount,
			"total":            summary.Total,
		},
		"currency": h.Currency,
	})
}

// AddItem adds or increments a cart line item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	var payload struct {
		ProductID string `json:"productId"`
		Qty       int    `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if payload.ProductID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "productId is required", nil)
		return
	}
	if payload.Qty <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "qty must be positive", nil)
		return
	}
	if err := h.Svc.AddItem(r.Context(), cartID, payload.ProductID, payload.Qty); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// UpdateItem updates the quantity for a cart line item.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	itemID := chi.URLParam(r, "itemId")
	var payload struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if payload.Qty <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "qty must be positive", nil)
		return
	}
	if err := h.Svc.UpdateQty(r.Context(), itemID, payload.Qty); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// RemoveItem deletes a cart item.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	if err := h.Svc.RemoveItem(r.Context(), cartID, itemID); err != nil {
		h.writeError(w, err)
		return
	}
	h.Get(w, r)
}

// ApplyVoucher applies a voucher to the cart. A voucher of the same scope as
// one already applied replaces it.
func (h *Handler) ApplyVoucher(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	var payload struct {
		Code         string `json:"code"`
		ShippingCost int64  `json:"shippingCost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	payload.Code = strings.TrimSpace(payload.Code)
	if payload.Code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	discount, err := h.Svc.ApplyVoucher(r.Context(), cartID, payload.Code, payload.ShippingCost)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"code": voucher.NormalizeCode(payload.Code), "discount": discount})
}

// RemoveVoucher removes one applied voucher from the cart.
func (h *Handler) RemoveVoucher(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	code := chi.URLParam(r, "code")
	if err := h.Svc.RemoveVoucher(r.Context(), cartID, code); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"removed": voucher.NormalizeCode(code)})
}

// QuoteShipping returns shipping rates from the configured provider.
func (h *Handler) QuoteShipping(w http.ResponseWriter, r *http.Request) {
	if h.ShippingClient == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "shipping provider not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	var payload struct {
		Destination string `json:"destination"`
		Courier     string `json:"courier"`
		WeightGram  int    `json:"weightGram"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if payload.Destination == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "destination is required", nil)
		return
	}
	if payload.WeightGram <= 0 {
		payload.WeightGram = 1000
	}
	cID, err := toUUID(cartID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return
	}
	if h.Svc != nil && h.Svc.Q != nil {
		if _, err := h.Svc.Q.GetCartByID(r.Context(), cID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
				return
			}
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load cart", nil)
			return
		}
	}
	rates, err := h.ShippingClient.Rates(r.Context(), shipping.RateReq{
		Origin:      h.ShippingOrigin,
		Destination: payload.Destination,
		WeightGram:  payload.WeightGram,
		Courier:     payload.Courier,
	})
	if err != nil {
		common.JSONError(w, http.StatusBadGateway, "SHIPPING_ERROR", "failed to fetch rates", nil)
		return
	}
	common.JSONData(w, http.StatusOK, rates)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if err == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		code := appErr.Code
		if code == "" {
			code = "BAD_REQUEST"
		}
		common.JSONError(w, status, code, err.Error(), appErr.Details)
	case errors.Is(err, voucher.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case voucher.IsRejection(err):
		common.JSONError(w, http.StatusUnprocessableEntity, "NOT_APPLICABLE", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}

func shippingCostParam(r *http.Request) int64 {
	cost := int64(common.AtoiDefault(r.URL.Query().Get("shippingCost"), 0))
	if cost < 0 {
		return 0
	}
	return cost
}

func nullableText(v pgtype.Text) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
