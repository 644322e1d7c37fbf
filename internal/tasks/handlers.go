package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
	"github.com/kedai-dev/checkout-api/internal/events"
	"github.com/kedai-dev/checkout-api/internal/lock"
	"github.com/kedai-dev/checkout-api/internal/obs"
	"github.com/kedai-dev/checkout-api/internal/voucher"
)

// Querier is the subset of generated queries the task handlers rely on.
type Querier interface {
	GetOrderByID(ctx context.Context, id pgtype.UUID) (dbgen.Order, error)
	ListOrderVouchers(ctx context.Context, orderID pgtype.UUID) ([]dbgen.OrderVoucher, error)
	UpdateOrderStatus(ctx context.Context, arg dbgen.UpdateOrderStatusParams) (dbgen.Order, error)
	ListExpiredPendingOrders(ctx context.Context, createdAt pgtype.Timestamptz) ([]dbgen.Order, error)
}

// Handlers processes background jobs for the checkout pipeline.
type Handlers struct {
	Q             Querier
	Vouchers      *voucher.Service
	Events        *events.Bus
	Locker        *lock.Locker
	Log           zerolog.Logger
	PaymentWindow time.Duration
	Now           func() time.Time
}

func (h *Handlers) now() time.Time {
	if h != nil && h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Register attaches all task handlers to the mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeVoucherSettle, h.HandleVoucherSettle)
	mux.HandleFunc(TypeOrderExpire, h.HandleOrderExpire)
	mux.HandleFunc(TypeOrderExpireSweep, h.HandleOrderExpireSweep)
}

// HandleVoucherSettle records voucher usage for every voucher attached to the
// order. Settling is idempotent per (voucher, order), so retries are safe.
func (h *Handlers) HandleVoucherSettle(ctx context.Context, t *asynq.Task) error {
	var payload VoucherSettlePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode settle payload: %w: %w", err, asynq.SkipRetry)
	}
	oID := pgtype.UUID{Bytes: payload.OrderID, Valid: true}
	rows, err := h.Q.ListOrderVouchers(ctx, oID)
	if err != nil {
		obs.VoucherSettleTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("list order vouchers: %w", err)
	}
	for _, row := range rows {
		voucherID := uuid.UUID(row.VoucherID.Bytes)
		if err := h.Vouchers.Settle(ctx, voucherID, payload.OrderID, payload.UserID, row.Code, row.Amount); err != nil {
			obs.VoucherSettleTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("settle voucher %s: %w", row.Code, err)
		}
		if h.Events != nil {
			if _, err := h.Events.Emit(ctx, events.TopicVoucherRedeemed, row.VoucherID, map[string]any{
				"orderId": payload.OrderID.String(),
				"code":    row.Code,
				"amount":  row.Amount,
			}); err != nil {
				h.recordEmitFailure(events.TopicVoucherRedeemed, err)
			}
		}
	}
	obs.VoucherSettleTotal.WithLabelValues("ok").Inc()
	h.Log.Info().Str("order_id", payload.OrderID.String()).Int("vouchers", len(rows)).Msg("voucher usage settled")
	return nil
}

// HandleOrderExpire expires one pending order whose payment window lapsed.
func (h *Handlers) HandleOrderExpire(ctx context.Context, t *asynq.Task) error {
	var payload OrderExpirePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode expire payload: %w: %w", err, asynq.SkipRetry)
	}
	oID := pgtype.UUID{Bytes: payload.OrderID, Valid: true}
	order, err := h.Q.GetOrderByID(ctx, oID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("load order: %w", err)
	}
	return h.expire(ctx, order)
}

// HandleOrderExpireSweep expires every pending order older than the payment
// window. It backstops per-order expiry tasks.
func (h *Handlers) HandleOrderExpireSweep(ctx context.Context, _ *asynq.Task) error {
	if h.Locker != nil {
		err := h.Locker.TryWithLock(ctx, "sweep:order-expire", 5*time.Minute, h.sweep)
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil
		}
		return err
	}
	return h.sweep(ctx)
}

func (h *Handlers) sweep(ctx context.Context) error {
	window := h.PaymentWindow
	if window <= 0 {
		window = 24 * time.Hour
	}
	cutoff := pgtype.Timestamptz{Time: h.now().Add(-window), Valid: true}
	orders, err := h.Q.ListExpiredPendingOrders(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list expired orders: %w", err)
	}
	for _, order := range orders {
		if err := h.expire(ctx, order); err != nil {
			return err
		}
	}
	if len(orders) > 0 {
		h.Log.Info().Int("count", len(orders)).Msg("expired stale pending orders")
	}
	return nil
}

func (h *Handlers) expire(ctx context.Context, order dbgen.Order) error {
	if order.Status != dbgen.OrderStatusPENDINGPAYMENT {
		return nil
	}
	updated, err := h.Q.UpdateOrderStatus(ctx, dbgen.UpdateOrderStatusParams{
		ID:     order.ID,
		Status: dbgen.OrderStatusEXPIRED,
	})
	if err != nil {
		return fmt.Errorf("expire order: %w", err)
	}
	obs.OrderExpiredTotal.Inc()
	if h.Events != nil {
		if _, err := h.Events.Emit(ctx, events.TopicOrderExpired, updated.ID, map[string]any{
			"orderId": uuid.UUID(updated.ID.Bytes).String(),
		}); err != nil {
			h.recordEmitFailure(events.TopicOrderExpired, err)
		}
	}
	return nil
}

func (h *Handlers) recordEmitFailure(topic string, err error) {
	if obs.EventEmitFailureTotal != nil {
		obs.EventEmitFailureTotal.WithLabelValues(topic).Inc()
	}
	h.Log.Error().Err(err).Str("topic", topic).Msg("domain event emit failed")
}
