package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kedai-dev/checkout-api/internal/voucher"
)

var (
	testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	shopS1  = uuid.New()
	shopS2  = uuid.New()
)

func baseOrder() Order {
	return Order{
		Items:        []LineItem{NewLineItem(uuid.New(), shopS1, 100_000, 2)},
		ShippingCost: 30_000,
	}
}

func systemPercentVoucher() voucher.Voucher {
	cap := int64(15_000)
	return voucher.Voucher{
		ID:                uuid.New(),
		Code:              "HEMAT10",
		Type:              voucher.TypeSystem,
		DiscountType:      voucher.DiscountPercentage,
		DiscountValue:     10,
		MaxDiscountAmount: &cap,
		Active:            true,
	}
}

func freeShippingVoucher() voucher.Voucher {
	return voucher.Voucher{
		ID:            uuid.New(),
		Code:          "ONGKIRGRATIS",
		Type:          voucher.TypeShipping,
		DiscountType:  voucher.DiscountFixedAmount,
		DiscountValue: 50_000,
		Active:        true,
	}
}

func TestSummarizeNoVouchers(t *testing.T) {
	got := Summarize(baseOrder(), nil)
	want := Summary{Subtotal: 200_000, ShippingFee: 30_000, Total: 230_000}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSummarizeCappedPercentage(t *testing.T) {
	got := Summarize(baseOrder(), []voucher.Voucher{systemPercentVoucher()})
	if got.Discount.Product != 15_000 {
		t.Fatalf("expected raw 20000 capped to 15000, got %d", got.Discount.Product)
	}
	if got.Total != 215_000 {
		t.Fatalf("expected total 215000, got %d", got.Total)
	}
}

func TestSummarizeShippingCeiling(t *testing.T) {
	got := Summarize(baseOrder(), []voucher.Voucher{freeShippingVoucher()})
	if got.Discount.Shipping != 30_000 {
		t.Fatalf("shipping discount must not exceed shipping cost, got %d", got.Discount.Shipping)
	}
	if got.Total != 200_000 {
		t.Fatalf("expected total 200000, got %d", got.Total)
	}
}

func TestSummarizeCombined(t *testing.T) {
	got := Summarize(baseOrder(), []voucher.Voucher{systemPercentVoucher(), freeShippingVoucher()})
	if got.Discount.Product != 15_000 || got.Discount.Shipping != 30_000 || got.Discount.Total != 45_000 {
		t.Fatalf("unexpected breakdown %+v", got.Discount)
	}
	if got.Total != 185_000 {
		t.Fatalf("expected total 185000, got %d", got.Total)
	}
}

func TestAllocateOrderIndependent(t *testing.T) {
	v1 := systemPercentVoucher()
	v2 := freeShippingVoucher()
	order := baseOrder()
	a := Allocate([]voucher.Voucher{v1, v2}, order)
	b := Allocate([]voucher.Voucher{v2, v1}, order)
	if a != b {
		t.Fatalf("allocation must be order independent: %+v vs %+v", a, b)
	}
}

func TestAllocateJointlyExceedsScope(t *testing.T) {
	// Two fixed vouchers, each within the subtotal, together above it.
	v1 := systemPercentVoucher()
	v1.DiscountType = voucher.DiscountFixedAmount
	v1.DiscountValue = 150_000
	v1.MaxDiscountAmount = nil
	v2 := v1
	v2.ID = uuid.New()
	got := Allocate([]voucher.Voucher{v1, v2}, baseOrder())
	if got.Product != 200_000 {
		t.Fatalf("product bucket must clamp to the subtotal, got %d", got.Product)
	}
}

func TestAllocateForeignShopContributesZero(t *testing.T) {
	v := voucher.Voucher{
		ID:            uuid.New(),
		Code:          "TOKOS2",
		Type:          voucher.TypeShop,
		DiscountType:  voucher.DiscountFixedAmount,
		DiscountValue: 10_000,
		Active:        true,
		ShopID:        &shopS2,
	}
	order := baseOrder() // only shopS1 items
	if !errors.Is(voucher.Check(v, order.Context(), testNow), voucher.ErrShopMismatch) {
		t.Fatal("expected shop mismatch for foreign shop voucher")
	}
	got := Allocate([]voucher.Voucher{v}, order)
	if got.Total != 0 {
		t.Fatalf("forced foreign shop voucher must contribute 0, got %d", got.Total)
	}
}

func TestSummarizeTotalNeverNegative(t *testing.T) {
	v := freeShippingVoucher()
	v.Type = voucher.TypeSystem
	v.DiscountValue = 10_000_000
	got := Summarize(baseOrder(), []voucher.Voucher{v})
	if got.Total < 0 {
		t.Fatalf("total must never be negative, got %d", got.Total)
	}
}

func TestOrderValidate(t *testing.T) {
	order := baseOrder()
	order.Items[0].UnitPrice = -1
	if err := order.Validate(); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for negative price, got %v", err)
	}
	order = baseOrder()
	order.Items[0].Qty = -2
	if err := order.Validate(); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for negative qty, got %v", err)
	}
	if err := baseOrder().Validate(); err != nil {
		t.Fatalf("valid order should pass, got %v", err)
	}
}

func TestSelectionToggleRestoresSummary(t *testing.T) {
	order := baseOrder()
	sel := NewSelection(systemPercentVoucher())
	before := Summarize(order, sel.Vouchers())

	extra := freeShippingVoucher()
	sel.Add(extra)
	sel.Remove(extra.ID)

	after := Summarize(order, sel.Vouchers())
	if before != after {
		t.Fatalf("add-then-remove must restore the summary: %+v vs %+v", before, after)
	}
}

func TestSelectionOnePerScope(t *testing.T) {
	first := systemPercentVoucher()
	second := systemPercentVoucher()
	sel := NewSelection(first, second)
	if sel.Len() != 1 {
		t.Fatalf("expected second SYSTEM voucher to replace the first, len=%d", sel.Len())
	}
	if sel.Has(first.ID) || !sel.Has(second.ID) {
		t.Fatal("replacement should keep the most recent voucher")
	}
}

func TestSelectionShopScopedPerShop(t *testing.T) {
	a := voucher.Voucher{ID: uuid.New(), Type: voucher.TypeShop, ShopID: &shopS1, DiscountType: voucher.DiscountFixedAmount, Active: true}
	b := voucher.Voucher{ID: uuid.New(), Type: voucher.TypeShop, ShopID: &shopS2, DiscountType: voucher.DiscountFixedAmount, Active: true}
	sel := NewSelection(a, b)
	if sel.Len() != 2 {
		t.Fatalf("shop vouchers for distinct shops must coexist, len=%d", sel.Len())
	}
}
