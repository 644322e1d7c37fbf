package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/kedai-dev/checkout-api/internal/cart"
	"github.com/kedai-dev/checkout-api/internal/common"
	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
	"github.com/kedai-dev/checkout-api/internal/events"
	"github.com/kedai-dev/checkout-api/internal/obs"
	"github.com/kedai-dev/checkout-api/internal/pricing"
	"github.com/kedai-dev/checkout-api/internal/voucher"
)

// ErrEmptyCart is returned when checkout is attempted on a cart with no items.
var ErrEmptyCart = common.NewAppError("UNPROCESSABLE", "cart is empty", http.StatusUnprocessableEntity, nil)

// ErrCartOwnership is returned when the cart belongs to a different user.
var ErrCartOwnership = common.NewAppError("FORBIDDEN", "cart does not belong to user", http.StatusForbidden, nil)

// ShipOpt is the shipping option chosen at checkout.
type ShipOpt struct {
	Courier string `json:"courier"`
	Service string `json:"service"`
	Price   int64  `json:"price"`
	ETD     string `json:"etd"`
}

// Input is the checkout request payload.
type Input struct {
	CartID   string  `json:"cartId"`
	Shipping ShipOpt `json:"shipping"`
}

// Output is the placed-order response.
type Output struct {
	OrderID  string          `json:"orderId"`
	Status   string          `json:"status"`
	Currency string          `json:"currency"`
	Summary  pricing.Summary `json:"summary"`
	Vouchers []AppliedRow    `json:"vouchers"`
}

// AppliedRow reports one voucher and the amount it contributed.
type AppliedRow struct {
	Code   string `json:"code"`
	Amount int64  `json:"amount"`
}

// Service places orders from carts. Pricing is computed once, inside the
// order transaction, from the frozen cart snapshot.
type Service struct {
	Q        *dbgen.Queries
	Pool     *pgxpool.Pool
	Cart     *cart.Service
	Events   *events.Bus
	Log      zerolog.Logger
	Currency string
}

// Create turns the cart into a PENDING_PAYMENT order. Applied vouchers are
// re-checked against the final snapshot; any that fail are dropped rather
// than blocking the checkout.
func (s *Service) Create(ctx context.Context, userID string, in Input) (Output, error) {
	if s == nil || s.Q == nil || s.Pool == nil || s.Cart == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if userID == "" {
		return Output{}, errors.New("user is required for checkout")
	}
	if in.CartID == "" {
		return Output{}, errors.New("cartId is required")
	}
	cID, err := cart.ToUUID(in.CartID)
	if err != nil {
		return Output{}, fmt.Errorf("invalid cart id: %w", err)
	}
	uID, err := cart.ToUUID(userID)
	if err != nil {
		return Output{}, fmt.Errorf("invalid user id: %w", err)
	}
	shippingCost := in.Shipping.Price
	if shippingCost < 0 {
		shippingCost = 0
	}

	cartRow, err := s.Q.GetCartByID(ctx, cID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Output{}, cart.ErrNotFound
		}
		return Output{}, err
	}
	if cartRow.UserID.Valid && cartRow.UserID != uID {
		return Output{}, ErrCartOwnership
	}

	order, err := s.Cart.Snapshot(ctx, cID, shippingCost)
	if err != nil {
		return Output{}, err
	}
	if len(order.Items) == 0 {
		return Output{}, ErrEmptyCart
	}
	selection, err := s.Cart.Reconcile(ctx, cID, order)
	if err != nil {
		return Output{}, err
	}
	selected := selection.Vouchers()

	summary := pricing.Summarize(order, selected)
	breakdown := pricing.Allocate(selected, order)

	items, err := s.Q.ListCartItems(ctx, cID)
	if err != nil {
		return Output{}, err
	}
	orderCtx := order.Context()

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Output{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := s.Q.WithTx(tx)

	created, err := qtx.CreateOrder(ctx, dbgen.CreateOrderParams{
		UserID:           uID,
		CartID:           cID,
		Status:           dbgen.OrderStatusPENDINGPAYMENT,
		Currency:         s.Currency,
		PricingSubtotal:  summary.Subtotal,
		PricingShipping:  summary.ShippingFee,
		ProductDiscount:  breakdown.Product,
		ShippingDiscount: breakdown.Shipping,
		PricingTotal:     summary.Total,
	})
	if err != nil {
		obs.CheckoutTotal.WithLabelValues("error").Inc()
		return Output{}, err
	}
	for _, it := range items {
		if err := qtx.CreateOrderItem(ctx, dbgen.CreateOrderItemParams{
			OrderID:   created.ID,
			ProductID: it.ProductID,
			ShopID:    it.ShopID,
			Title:     it.Title,
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}); err != nil {
			obs.CheckoutTotal.WithLabelValues("error").Inc()
			return Output{}, err
		}
	}
	applied := make([]AppliedRow, 0, len(selected))
	for _, v := range selected {
		amount := voucher.ComputeDiscount(v, voucher.ScopeAmount(v, orderCtx))
		if err := qtx.CreateOrderVoucher(ctx, dbgen.CreateOrderVoucherParams{
			OrderID:   created.ID,
			VoucherID: pgtype.UUID{Bytes: v.ID, Valid: true},
			Code:      v.Code,
			Amount:    amount,
		}); err != nil {
			obs.CheckoutTotal.WithLabelValues("error").Inc()
			return Output{}, err
		}
		applied = append(applied, AppliedRow{Code: v.Code, Amount: amount})
	}
	if err := qtx.ClearCartVouchers(ctx, cID); err != nil {
		obs.CheckoutTotal.WithLabelValues("error").Inc()
		return Output{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		obs.CheckoutTotal.WithLabelValues("error").Inc()
		return Output{}, err
	}

	obs.CheckoutTotal.WithLabelValues("ok").Inc()
	obs.DiscountGrantedTotal.WithLabelValues("product").Add(float64(breakdown.Product))
	obs.DiscountGrantedTotal.WithLabelValues("shipping").Add(float64(breakdown.Shipping))

	s.emitOrderCreated(ctx, created.ID, userID, summary.Total)

	return Output{
		OrderID:  cart.UUIDString(created.ID),
		Status:   string(created.Status),
		Currency: created.Currency,
		Summary:  summary,
		Vouchers: applied,
	}, nil
}

// emitOrderCreated records the order.created event that drives voucher
// settlement and the expiry timer. The order is already committed, so a
// failure here is surfaced in logs and metrics instead of failing the
// checkout.
func (s *Service) emitOrderCreated(ctx context.Context, orderID pgtype.UUID, userID string, total int64) {
	if s.Events == nil {
		return
	}
	_, err := s.Events.Emit(ctx, events.TopicOrderCreated, orderID, map[string]any{
		"orderId": cart.UUIDString(orderID),
		"userId":  userID,
		"total":   total,
	})
	if err != nil {
		if obs.EventEmitFailureTotal != nil {
			obs.EventEmitFailureTotal.WithLabelValues(events.TopicOrderCreated).Inc()
		}
		s.Log.Error().Err(err).
			Str("order_id", cart.UUIDString(orderID)).
			Msg("order.created emit failed; voucher settlement and expiry not scheduled")
	}
}
