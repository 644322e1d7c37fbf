package checkout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/kedai-dev/checkout-api/internal/common"
	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
	"github.com/kedai-dev/checkout-api/internal/events"
	"github.com/kedai-dev/checkout-api/internal/obs"
)

func init() {
	obs.MustRegisterDomainMetrics("test", prometheus.NewRegistry())
}

func TestCheckoutRequiresAuth(t *testing.T) {
	h := &Handler{Svc: &Service{}}
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.Checkout(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCheckoutRejectsBadPayload(t *testing.T) {
	h := &Handler{Svc: &Service{}}
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{not-json`))
	req = req.WithContext(common.WithUserID(req.Context(), "8e5a1c3f-0000-4000-8000-000000000001"))
	rec := httptest.NewRecorder()

	h.Checkout(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCheckoutServiceUnconfigured(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Checkout(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

type failingEventStore struct{}

func (failingEventStore) InsertDomainEvent(context.Context, dbgen.InsertDomainEventParams) (dbgen.DomainEvent, error) {
	return dbgen.DomainEvent{}, errors.New("insert domain event: connection refused")
}

func TestOrderCreatedEmitFailureIsCounted(t *testing.T) {
	before := testutil.ToFloat64(obs.EventEmitFailureTotal.WithLabelValues(events.TopicOrderCreated))

	svc := &Service{Events: &events.Bus{Store: failingEventStore{}}, Log: zerolog.Nop()}
	svc.emitOrderCreated(context.Background(), pgtype.UUID{Bytes: uuid.New(), Valid: true}, uuid.NewString(), 10_000)

	after := testutil.ToFloat64(obs.EventEmitFailureTotal.WithLabelValues(events.TopicOrderCreated))
	if after != before+1 {
		t.Fatalf("emit failure counter = %v, want %v", after, before+1)
	}
}
