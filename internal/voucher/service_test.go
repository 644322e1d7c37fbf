package voucher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"

	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
)

type stubQueries struct {
	byCode    map[string]dbgen.Voucher
	usages    map[[2]uuid.UUID]int64
	increased []uuid.UUID
	recordErr error // consumed by the next RecordVoucherUsage call
}

func newStubQueries() *stubQueries {
	return &stubQueries{
		byCode: map[string]dbgen.Voucher{},
		usages: map[[2]uuid.UUID]int64{},
	}
}

func (s *stubQueries) GetVoucherByCode(_ context.Context, code string) (dbgen.Voucher, error) {
	v, ok := s.byCode[code]
	if !ok {
		return dbgen.Voucher{}, pgx.ErrNoRows
	}
	return v, nil
}

func (s *stubQueries) ListActiveVouchers(_ context.Context) ([]dbgen.Voucher, error) {
	out := make([]dbgen.Voucher, 0, len(s.byCode))
	for _, v := range s.byCode {
		if v.Active {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubQueries) ListVouchersByIDs(_ context.Context, ids []pgtype.UUID) ([]dbgen.Voucher, error) {
	out := make([]dbgen.Voucher, 0, len(ids))
	for _, id := range ids {
		for _, v := range s.byCode {
			if v.ID == id {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func (s *stubQueries) RecordVoucherUsage(_ context.Context, arg dbgen.RecordVoucherUsageParams) (int64, error) {
	if s.recordErr != nil {
		err := s.recordErr
		s.recordErr = nil
		return 0, err
	}
	key := [2]uuid.UUID{uuid.UUID(arg.VoucherID.Bytes), uuid.UUID(arg.OrderID.Bytes)}
	if _, ok := s.usages[key]; ok {
		return 0, nil
	}
	s.usages[key] = arg.Amount
	s.increased = append(s.increased, uuid.UUID(arg.VoucherID.Bytes))
	return 1, nil
}

func stubVoucherRow(code string) dbgen.Voucher {
	return dbgen.Voucher{
		ID:            pgtype.UUID{Bytes: uuid.New(), Valid: true},
		Code:          code,
		Type:          dbgen.VoucherTypeSYSTEM,
		DiscountType:  dbgen.DiscountTypePERCENTAGE,
		DiscountValue: 10,
		Active:        true,
	}
}

func TestServiceGetByCodeNormalizes(t *testing.T) {
	q := newStubQueries()
	q.byCode["HEMAT10"] = stubVoucherRow("HEMAT10")
	svc := &Service{Q: q}

	v, err := svc.GetByCode(context.Background(), "  hemat10 ")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if v.Code != "HEMAT10" {
		t.Fatalf("code = %q, want HEMAT10", v.Code)
	}
}

func TestServiceGetByCodeNotFound(t *testing.T) {
	svc := &Service{Q: newStubQueries()}
	if _, err := svc.GetByCode(context.Background(), "MISSING"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestServicePreviewComputesDiscount(t *testing.T) {
	q := newStubQueries()
	row := stubVoucherRow("HEMAT10")
	row.MaxDiscountAmount = pgtype.Int8{Int64: 15_000, Valid: true}
	q.byCode["HEMAT10"] = row
	svc := &Service{Q: q, Now: func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }}

	order := OrderContext{
		Items:        []Item{{ShopID: uuid.New(), Subtotal: 200_000}},
		ShippingCost: 30_000,
	}
	res, err := svc.Preview(context.Background(), "hemat10", order)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if res.ScopeAmount != 200_000 {
		t.Fatalf("scope = %d, want 200000", res.ScopeAmount)
	}
	if res.Discount != 15_000 {
		t.Fatalf("discount = %d, want capped 15000", res.Discount)
	}
}

func TestServicePreviewRejectsInactive(t *testing.T) {
	q := newStubQueries()
	row := stubVoucherRow("PAUSED")
	row.Active = false
	q.byCode["PAUSED"] = row
	svc := &Service{Q: q}

	order := OrderContext{Items: []Item{{ShopID: uuid.New(), Subtotal: 50_000}}}
	if _, err := svc.Preview(context.Background(), "PAUSED", order); err != ErrVoucherInactive {
		t.Fatalf("err = %v, want ErrVoucherInactive", err)
	}
}

func TestServiceSettleRecordsUsageOnce(t *testing.T) {
	q := newStubQueries()
	svc := &Service{Q: q}
	voucherID, orderID, userID := uuid.New(), uuid.New(), uuid.New()

	if err := svc.Settle(context.Background(), voucherID, orderID, userID, "HEMAT10", 15_000); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if err := svc.Settle(context.Background(), voucherID, orderID, userID, "HEMAT10", 15_000); err != nil {
		t.Fatalf("Settle replay: %v", err)
	}
	if len(q.usages) != 1 {
		t.Fatalf("usage rows = %d, want 1", len(q.usages))
	}
	if len(q.increased) != 1 || q.increased[0] != voucherID {
		t.Fatalf("used-count increments = %v, want one for %s", q.increased, voucherID)
	}
	if got := q.usages[[2]uuid.UUID{voucherID, orderID}]; got != 15_000 {
		t.Fatalf("amount = %d, want 15000", got)
	}
}

func TestServiceSettleRetryKeepsCountExact(t *testing.T) {
	q := newStubQueries()
	q.recordErr = errors.New("connection reset")
	svc := &Service{Q: q}
	voucherID, orderID, userID := uuid.New(), uuid.New(), uuid.New()

	if err := svc.Settle(context.Background(), voucherID, orderID, userID, "HEMAT10", 15_000); err == nil {
		t.Fatal("Settle should surface the transient failure")
	}
	if len(q.usages) != 0 || len(q.increased) != 0 {
		t.Fatal("failed settle must leave no partial state")
	}
	if err := svc.Settle(context.Background(), voucherID, orderID, userID, "HEMAT10", 15_000); err != nil {
		t.Fatalf("Settle retry: %v", err)
	}
	if len(q.usages) != 1 {
		t.Fatalf("usage rows = %d, want 1", len(q.usages))
	}
	if len(q.increased) != 1 {
		t.Fatalf("used-count increments = %d, want 1", len(q.increased))
	}
}

func TestServiceSettleInvalidatesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := newStubQueries()
	row := stubVoucherRow("HEMAT10")
	q.byCode["HEMAT10"] = row
	svc := &Service{Q: q, Cache: NewCache(client, time.Minute)}

	if _, err := svc.GetByCode(context.Background(), "HEMAT10"); err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if !mr.Exists("vouchers:code:HEMAT10") {
		t.Fatal("voucher not cached after read")
	}

	voucherID := uuid.UUID(row.ID.Bytes)
	if err := svc.Settle(context.Background(), voucherID, uuid.New(), uuid.New(), "HEMAT10", 5_000); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if mr.Exists("vouchers:code:HEMAT10") {
		t.Fatal("settle must drop the cached voucher so UsedCount stays fresh")
	}
	if mr.Exists("vouchers:active") {
		t.Fatal("settle must drop the cached active list")
	}
}

func TestServiceSettleIgnoresNilIDs(t *testing.T) {
	q := newStubQueries()
	svc := &Service{Q: q}
	if err := svc.Settle(context.Background(), uuid.Nil, uuid.New(), uuid.Nil, "HEMAT10", 1_000); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if len(q.usages) != 0 {
		t.Fatalf("usage rows = %d, want 0", len(q.usages))
	}
}
