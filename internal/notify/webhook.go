package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kedai-dev/checkout-api/internal/resilience"
)

// Endpoint is a webhook subscriber. An empty topic list subscribes to
// every topic.
type Endpoint struct {
	URL    string
	Secret string
	Topics []string
}

// Subscribed reports whether the endpoint wants events for the topic.
func (e Endpoint) Subscribed(topic string) bool {
	if len(e.Topics) == 0 {
		return true
	}
	for _, t := range e.Topics {
		if strings.EqualFold(t, topic) {
			return true
		}
	}
	return false
}

// Envelope is the JSON document posted to webhook endpoints.
type Envelope struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Sign computes the hex HMAC-SHA256 signature for a webhook body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Webhook delivers event envelopes to a single endpoint with retry and
// circuit breaking around the outbound HTTP call.
type Webhook struct {
	HTTP resilience.HTTPClient
	Log  zerolog.Logger
}

// Deliver posts the envelope to the endpoint. A non-2xx response is an error
// so the task queue retries with backoff.
func (w *Webhook) Deliver(ctx context.Context, endpoint Endpoint, envelope Envelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode webhook envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Id", envelope.ID)
	req.Header.Set("X-Webhook-Topic", envelope.Topic)
	if endpoint.Secret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(endpoint.Secret, body))
	}

	resp, err := w.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("deliver webhook to %s: %w", endpoint.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s responded %d", endpoint.URL, resp.StatusCode)
	}
	w.Log.Debug().Str("topic", envelope.Topic).Str("url", endpoint.URL).Msg("webhook delivered")
	return nil
}
