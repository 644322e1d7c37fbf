package voucher

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func activeVoucher() Voucher {
	start := testNow.Add(-24 * time.Hour)
	end := testNow.Add(24 * time.Hour)
	return Voucher{
		ID:            uuid.New(),
		Code:          "PROMO",
		Type:          TypeSystem,
		DiscountType:  DiscountFixedAmount,
		DiscountValue: 10_000,
		Active:        true,
		StartDate:     &start,
		EndDate:       &end,
	}
}

func testOrder(subtotal, shipping int64) OrderContext {
	return OrderContext{
		Items:        []Item{{ShopID: uuid.New(), Subtotal: subtotal}},
		ShippingCost: shipping,
	}
}

func TestCheckInactive(t *testing.T) {
	v := activeVoucher()
	v.Active = false
	if err := Check(v, testOrder(200_000, 30_000), testNow); !errors.Is(err, ErrVoucherInactive) {
		t.Fatalf("expected ErrVoucherInactive, got %v", err)
	}
}

func TestCheckWindow(t *testing.T) {
	v := activeVoucher()
	order := testOrder(200_000, 30_000)

	if err := Check(v, order, v.StartDate.Add(-time.Second)); !errors.Is(err, ErrVoucherNotStarted) {
		t.Fatalf("expected ErrVoucherNotStarted, got %v", err)
	}
	if err := Check(v, order, v.EndDate.Add(time.Second)); !errors.Is(err, ErrVoucherExpired) {
		t.Fatalf("expected ErrVoucherExpired, got %v", err)
	}
	// Both bounds are inclusive.
	if err := Check(v, order, *v.StartDate); err != nil {
		t.Fatalf("start boundary should be applicable, got %v", err)
	}
	if err := Check(v, order, *v.EndDate); err != nil {
		t.Fatalf("end boundary should be applicable, got %v", err)
	}
}

func TestCheckExpiryBeatsOtherFields(t *testing.T) {
	v := activeVoucher()
	min := int64(500_000)
	v.MinOrderValue = &min
	if err := Check(v, testOrder(200_000, 0), v.EndDate.Add(time.Hour)); !errors.Is(err, ErrVoucherExpired) {
		t.Fatalf("expected ErrVoucherExpired regardless of other fields, got %v", err)
	}
}

func TestCheckUsageLimit(t *testing.T) {
	v := activeVoucher()
	limit := int32(5)
	v.UsageLimit = &limit
	v.UsedCount = 5
	if err := Check(v, testOrder(200_000, 30_000), testNow); !errors.Is(err, ErrUsageLimitReached) {
		t.Fatalf("expected ErrUsageLimitReached, got %v", err)
	}
	v.UsedCount = 4
	if err := Check(v, testOrder(200_000, 30_000), testNow); err != nil {
		t.Fatalf("one redemption left should be applicable, got %v", err)
	}
}

func TestCheckMinOrderValue(t *testing.T) {
	v := activeVoucher()
	min := int64(500_000)
	v.MinOrderValue = &min
	if err := Check(v, testOrder(200_000, 30_000), testNow); !errors.Is(err, ErrMinimumOrderUnmet) {
		t.Fatalf("expected ErrMinimumOrderUnmet, got %v", err)
	}
	if err := Check(v, testOrder(500_000, 30_000), testNow); err != nil {
		t.Fatalf("threshold met should be applicable, got %v", err)
	}
}

func TestCheckMinOrderValueShippingScope(t *testing.T) {
	v := activeVoucher()
	v.Type = TypeShipping
	min := int64(25_000)
	v.MinOrderValue = &min
	// The relevant amount for SHIPPING vouchers is the shipping cost, not the
	// order subtotal.
	if err := Check(v, testOrder(1_000_000, 20_000), testNow); !errors.Is(err, ErrMinimumOrderUnmet) {
		t.Fatalf("expected ErrMinimumOrderUnmet against shipping cost, got %v", err)
	}
	if err := Check(v, testOrder(0, 30_000), testNow); err != nil {
		t.Fatalf("shipping threshold met should be applicable, got %v", err)
	}
}

func TestCheckShopScope(t *testing.T) {
	shopA := uuid.New()
	shopB := uuid.New()
	v := activeVoucher()
	v.Type = TypeShop
	v.ShopID = &shopA

	order := OrderContext{Items: []Item{{ShopID: shopB, Subtotal: 200_000}}, ShippingCost: 30_000}
	if err := Check(v, order, testNow); !errors.Is(err, ErrShopMismatch) {
		t.Fatalf("expected ErrShopMismatch, got %v", err)
	}

	order.Items = append(order.Items, Item{ShopID: shopA, Subtotal: 50_000})
	if err := Check(v, order, testNow); err != nil {
		t.Fatalf("matching shop item should be applicable, got %v", err)
	}
}

func TestCheckEmptyOrderNeverApplicable(t *testing.T) {
	shopA := uuid.New()
	v := activeVoucher()
	v.Type = TypeShop
	v.ShopID = &shopA
	if IsApplicable(v, OrderContext{}, testNow) {
		t.Fatal("shop voucher must not be applicable to an empty order")
	}
}

func TestComputeDiscountPercentage(t *testing.T) {
	v := activeVoucher()
	v.DiscountType = DiscountPercentage
	v.DiscountValue = 10
	if got := ComputeDiscount(v, 200_000); got != 20_000 {
		t.Fatalf("expected 20000, got %d", got)
	}
}

func TestComputeDiscountCap(t *testing.T) {
	v := activeVoucher()
	v.DiscountType = DiscountPercentage
	v.DiscountValue = 10
	cap := int64(15_000)
	v.MaxDiscountAmount = &cap
	if got := ComputeDiscount(v, 200_000); got != 15_000 {
		t.Fatalf("expected capped 15000, got %d", got)
	}
}

func TestComputeDiscountScopeCeiling(t *testing.T) {
	v := activeVoucher()
	v.DiscountValue = 50_000
	if got := ComputeDiscount(v, 30_000); got != 30_000 {
		t.Fatalf("discount must not exceed its scope, got %d", got)
	}
}

func TestComputeDiscountZeroScope(t *testing.T) {
	v := activeVoucher()
	if got := ComputeDiscount(v, 0); got != 0 {
		t.Fatalf("expected 0 for zero scope, got %d", got)
	}
	if got := ComputeDiscount(v, -100); got != 0 {
		t.Fatalf("expected 0 for negative scope, got %d", got)
	}
}

func TestScopeAmountShop(t *testing.T) {
	shopA := uuid.New()
	shopB := uuid.New()
	v := activeVoucher()
	v.Type = TypeShop
	v.ShopID = &shopA
	order := OrderContext{
		Items: []Item{
			{ShopID: shopA, Subtotal: 50_000},
			{ShopID: shopB, Subtotal: 70_000},
			{ShopID: shopA, Subtotal: 25_000},
		},
		ShippingCost: 30_000,
	}
	if got := ScopeAmount(v, order); got != 75_000 {
		t.Fatalf("expected shop-scoped 75000, got %d", got)
	}
}

func TestValidateRejectsBadRecords(t *testing.T) {
	cases := map[string]func(v *Voucher){
		"negative value":       func(v *Voucher) { v.DiscountValue = -1 },
		"percent above 100":    func(v *Voucher) { v.DiscountType = DiscountPercentage; v.DiscountValue = 150 },
		"shop without shop id": func(v *Voucher) { v.Type = TypeShop; v.ShopID = nil },
		"negative cap": func(v *Voucher) {
			cap := int64(-1)
			v.MaxDiscountAmount = &cap
		},
		"unknown type": func(v *Voucher) { v.Type = Type("MYSTERY") },
	}
	for name, mutate := range cases {
		v := activeVoucher()
		mutate(&v)
		if err := v.Validate(); !errors.Is(err, ErrInvalidVoucher) {
			t.Fatalf("%s: expected ErrInvalidVoucher, got %v", name, err)
		}
	}
	if err := activeVoucher().Validate(); err != nil {
		t.Fatalf("valid voucher should pass, got %v", err)
	}
}
