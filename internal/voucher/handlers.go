package voucher

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kedai-dev/checkout-api/internal/common"
	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
	"github.com/kedai-dev/checkout-api/internal/obs"
)

// Handler exposes voucher catalog and administrative endpoints.
type Handler struct {
	Q        dbgen.Querier
	Svc      *Service
	Validate *validator.Validate
}

type voucherPayload struct {
	Code              string     `json:"code" validate:"required,min=3,max=32"`
	Type              string     `json:"type" validate:"required,oneof=SYSTEM SHOP SHIPPING"`
	DiscountType      string     `json:"discountType" validate:"required,oneof=PERCENTAGE FIXED_AMOUNT"`
	DiscountValue     int64      `json:"discountValue" validate:"gte=0"`
	MaxDiscountAmount *int64     `json:"maxDiscountAmount" validate:"omitempty,gte=0"`
	MinOrderValue     *int64     `json:"minOrderValue" validate:"omitempty,gte=0"`
	UsageLimit        *int32     `json:"usageLimit" validate:"omitempty,gte=0"`
	Active            *bool      `json:"active"`
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	ShopID            *string    `json:"shopId" validate:"omitempty,uuid4"`
}

type previewRequest struct {
	Code         string               `json:"code" validate:"required"`
	ShippingCost int64                `json:"shippingCost" validate:"gte=0"`
	Items        []previewRequestItem `json:"items" validate:"required,min=1,dive"`
}

type previewRequestItem struct {
	ShopID   string `json:"shopId" validate:"required,uuid4"`
	Subtotal int64  `json:"subtotal" validate:"gte=0"`
}

// List returns the active voucher catalog.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher service not configured", nil)
		return
	}
	vouchers, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list vouchers", nil)
		return
	}
	common.JSONData(w, http.StatusOK, vouchers)
}

// GetByCode resolves a single voucher by its code.
func (h *Handler) GetByCode(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher service not configured", nil)
		return
	}
	code := chi.URLParam(r, "code")
	v, err := h.Svc.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "voucher not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load voucher", nil)
		return
	}
	common.JSONData(w, http.StatusOK, v)
}

// Create inserts a new voucher.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher queries not configured", nil)
		return
	}
	var payload voucherPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	params, err := buildVoucherParams(payload)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	row, err := h.Q.CreateVoucher(r.Context(), params)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "voucher code already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create voucher", nil)
		return
	}
	h.invalidate(r, row.Code)
	common.JSONData(w, http.StatusCreated, FromModel(row))
}

// Update mutates an existing voucher identified by code.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher queries not configured", nil)
		return
	}
	code := NormalizeCode(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	var payload voucherPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	payload.Code = code
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	params, err := buildVoucherParams(payload)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	row, err := h.Q.UpdateVoucher(r.Context(), dbgen.UpdateVoucherParams{
		Code:              code,
		Type:              params.Type,
		DiscountType:      params.DiscountType,
		DiscountValue:     params.DiscountValue,
		MaxDiscountAmount: params.MaxDiscountAmount,
		MinOrderValue:     params.MinOrderValue,
		UsageLimit:        params.UsageLimit,
		Active:            params.Active,
		StartDate:         params.StartDate,
		EndDate:           params.EndDate,
		ShopID:            params.ShopID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "voucher not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update voucher", nil)
		return
	}
	h.invalidate(r, row.Code)
	common.JSONData(w, http.StatusOK, FromModel(row))
}

// Preview returns the simulated discount for a voucher without persisting state.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher service not configured", nil)
		return
	}
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	order, err := toOrderContext(req)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	result, err := h.Svc.Preview(r.Context(), req.Code, order)
	if err != nil {
		obs.VoucherPreviewTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "voucher not found", nil)
			return
		}
		common.JSONError(w, http.StatusUnprocessableEntity, "NOT_APPLICABLE", err.Error(), nil)
		return
	}
	obs.VoucherPreviewTotal.WithLabelValues("ok").Inc()
	common.JSONData(w, http.StatusOK, result)
}

func (h *Handler) validate(v any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(v)
}

func (h *Handler) invalidate(r *http.Request, code string) {
	if h.Svc == nil || h.Svc.Cache == nil {
		return
	}
	_ = h.Svc.Cache.Invalidate(r.Context(), code)
}

func buildVoucherParams(payload voucherPayload) (dbgen.CreateVoucherParams, error) {
	code := NormalizeCode(payload.Code)
	if code == "" {
		return dbgen.CreateVoucherParams{}, errors.New("code is required")
	}
	vType := dbgen.VoucherType(strings.ToUpper(strings.TrimSpace(payload.Type)))
	if vType == dbgen.VoucherTypeSHOP && payload.ShopID == nil {
		return dbgen.CreateVoucherParams{}, errors.New("shop vouchers require shopId")
	}
	if dbgen.DiscountType(payload.DiscountType) == dbgen.DiscountTypePERCENTAGE && payload.DiscountValue > 100 {
		return dbgen.CreateVoucherParams{}, errors.New("percentage discount must be within [0,100]")
	}
	if payload.StartDate != nil && payload.EndDate != nil && payload.EndDate.Before(*payload.StartDate) {
		return dbgen.CreateVoucherParams{}, errors.New("endDate must not precede startDate")
	}
	params := dbgen.CreateVoucherParams{
		Code:          code,
		Type:          vType,
		DiscountType:  dbgen.DiscountType(payload.DiscountType),
		DiscountValue: payload.DiscountValue,
		Active:        true,
		StartDate:     timeToNullable(payload.StartDate),
		EndDate:       timeToNullable(payload.EndDate),
	}
	if payload.Active != nil {
		params.Active = *payload.Active
	}
	if payload.MaxDiscountAmount != nil {
		params.MaxDiscountAmount = pgtype.Int8{Int64: *payload.MaxDiscountAmount, Valid: true}
	}
	if payload.MinOrderValue != nil {
		params.MinOrderValue = pgtype.Int8{Int64: *payload.MinOrderValue, Valid: true}
	}
	if payload.UsageLimit != nil {
		params.UsageLimit = pgtype.Int4{Int32: *payload.UsageLimit, Valid: true}
	}
	if payload.ShopID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*payload.ShopID))
		if err != nil {
			return dbgen.CreateVoucherParams{}, errors.New("invalid shopId")
		}
		params.ShopID = pgtype.UUID{Bytes: parsed, Valid: true}
	}
	return params, nil
}

func toOrderContext(req previewRequest) (OrderContext, error) {
	items := make([]Item, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Subtotal < 0 {
			return OrderContext{}, errors.New("item subtotal must not be negative")
		}
		shopID, err := uuid.Parse(strings.TrimSpace(it.ShopID))
		if err != nil {
			return OrderContext{}, errors.New("invalid item shopId")
		}
		items = append(items, Item{ShopID: shopID, Subtotal: it.Subtotal})
	}
	return OrderContext{Items: items, ShippingCost: req.ShippingCost}, nil
}

func timeToNullable(v *time.Time) pgtype.Timestamptz {
	if v == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *v, Valid: true}
}
