package tasks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names registered with the asynq mux.
const (
	TypeVoucherSettle    = "voucher:settle"
	TypeOrderExpire      = "order:expire"
	TypeOrderExpireSweep = "order:expire:sweep"
)

// VoucherSettlePayload identifies the order whose vouchers need settling.
type VoucherSettlePayload struct {
	OrderID uuid.UUID `json:"orderId"`
	UserID  uuid.UUID `json:"userId"`
}

// OrderExpirePayload identifies a single order to expire once its payment
// window lapses.
type OrderExpirePayload struct {
	OrderID uuid.UUID `json:"orderId"`
}

// NewVoucherSettleTask builds the settle task for an order. The task id pins
// one settle run per order so asynq drops duplicate enqueues.
func NewVoucherSettleTask(orderID, userID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(VoucherSettlePayload{OrderID: orderID, UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeVoucherSettle, payload,
		asynq.TaskID("voucher-settle:"+orderID.String()),
		asynq.MaxRetry(5),
	), nil
}

// NewOrderExpireTask builds the delayed expiry task for an order.
func NewOrderExpireTask(orderID uuid.UUID, after time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(OrderExpirePayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOrderExpire, payload,
		asynq.TaskID("order-expire:"+orderID.String()),
		asynq.ProcessIn(after),
		asynq.MaxRetry(3),
	), nil
}

// NewOrderExpireSweepTask builds the periodic sweep that catches orders whose
// per-order expiry task was lost.
func NewOrderExpireSweepTask() *asynq.Task {
	return asynq.NewTask(TypeOrderExpireSweep, nil, asynq.MaxRetry(1))
}
