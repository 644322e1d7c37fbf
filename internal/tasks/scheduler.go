package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
	"github.com/kedai-dev/checkout-api/internal/events"
)

// Enqueuer matches the asynq client surface the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EventScheduler translates emitted domain events into background tasks. It
// plugs into the event bus so that checkout only has to emit order.created
// for settlement and expiry to be queued.
type EventScheduler struct {
	Client        Enqueuer
	PaymentWindow time.Duration
}

var _ events.Scheduler = (*EventScheduler)(nil)

// Schedule enqueues the follow-up work for the given event.
func (s *EventScheduler) Schedule(ctx context.Context, event dbgen.DomainEvent) error {
	if s == nil || s.Client == nil {
		return errors.New("tasks: enqueuer not configured")
	}
	if event.Topic != events.TopicOrderCreated {
		return nil
	}
	orderID := uuid.UUID(event.AggregateID.Bytes)

	var payload struct {
		UserID string `json:"userId"`
	}
	_ = json.Unmarshal(event.Payload, &payload)
	userID, _ := uuid.Parse(payload.UserID)

	settle, err := NewVoucherSettleTask(orderID, userID)
	if err != nil {
		return err
	}
	if _, err := s.Client.EnqueueContext(ctx, settle); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}

	window := s.PaymentWindow
	if window <= 0 {
		window = 24 * time.Hour
	}
	expire, err := NewOrderExpireTask(orderID, window)
	if err != nil {
		return err
	}
	if _, err := s.Client.EnqueueContext(ctx, expire); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	return nil
}
