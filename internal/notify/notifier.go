package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
)

// TypeWebhookDeliver is the task type for a single endpoint delivery.
const TypeWebhookDeliver = "webhook:deliver"

// DeliverPayload is the asynq payload for a webhook delivery.
type DeliverPayload struct {
	Endpoint Endpoint `json:"endpoint"`
	Envelope Envelope `json:"envelope"`
}

// Enqueuer abstracts the asynq client for tests.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskNotifier fans emitted domain events out to webhook endpoints by
// enqueueing one delivery task per subscribed endpoint. Delivery itself
// happens in the worker so HTTP latency never blocks the request path.
type TaskNotifier struct {
	Client    Enqueuer
	Endpoints []Endpoint
}

// Notify implements the event bus notifier contract.
func (n *TaskNotifier) Notify(ctx context.Context, event dbgen.DomainEvent) error {
	if n == nil || n.Client == nil || len(n.Endpoints) == 0 {
		return nil
	}
	envelope := Envelope{
		Topic:   event.Topic,
		Payload: json.RawMessage(event.Payload),
	}
	if event.ID.Valid {
		envelope.ID = uuid.UUID(event.ID.Bytes).String()
	}
	if event.OccurredAt.Valid {
		envelope.OccurredAt = event.OccurredAt.Time
	} else {
		envelope.OccurredAt = time.Now().UTC()
	}

	var joined error
	for _, endpoint := range n.Endpoints {
		if !endpoint.Subscribed(event.Topic) {
			continue
		}
		payload, err := json.Marshal(DeliverPayload{Endpoint: endpoint, Envelope: envelope})
		if err != nil {
			joined = errors.Join(joined, fmt.Errorf("encode delivery for %s: %w", endpoint.URL, err))
			continue
		}
		task := asynq.NewTask(TypeWebhookDeliver, payload, asynq.MaxRetry(6))
		if _, err := n.Client.EnqueueContext(ctx, task); err != nil {
			joined = errors.Join(joined, fmt.Errorf("enqueue delivery for %s: %w", endpoint.URL, err))
		}
	}
	return joined
}

// RegisterHandlers attaches the delivery handler to the worker mux.
func (w *Webhook) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeWebhookDeliver, w.HandleDeliver)
}

// HandleDeliver processes a queued webhook delivery.
func (w *Webhook) HandleDeliver(ctx context.Context, t *asynq.Task) error {
	var payload DeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode delivery payload: %w: %w", err, asynq.SkipRetry)
	}
	return w.Deliver(ctx, payload.Endpoint, payload.Envelope)
}
