package voucher

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotApplicable is the generic failure for vouchers that cannot be
	// applied to the provided order context.
	ErrNotApplicable = errors.New("voucher not applicable")
	// ErrVoucherInactive is returned when the voucher kill-switch is off.
	ErrVoucherInactive = errors.New("voucher not active")
	// ErrVoucherNotStarted is returned before the validity window opens.
	ErrVoucherNotStarted = errors.New("voucher not started")
	// ErrVoucherExpired is returned after the validity window closes.
	ErrVoucherExpired = errors.New("voucher expired")
	// ErrUsageLimitReached indicates the voucher exhausted its redemption quota.
	ErrUsageLimitReached = errors.New("voucher usage limit reached")
	// ErrMinimumOrderUnmet indicates the relevant amount is below the threshold.
	ErrMinimumOrderUnmet = errors.New("voucher minimum order value not met")
	// ErrShopMismatch indicates no item in the order belongs to the voucher's shop.
	ErrShopMismatch = errors.New("voucher does not match any shop in the order")
)

// IsRejection reports whether the error is one of the applicability
// failures returned by Check, as opposed to an infrastructure error.
func IsRejection(err error) bool {
	for _, sentinel := range []error{
		ErrNotApplicable,
		ErrVoucherInactive,
		ErrVoucherNotStarted,
		ErrVoucherExpired,
		ErrUsageLimitReached,
		ErrMinimumOrderUnmet,
		ErrShopMismatch,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Item is the slice of an order a voucher evaluation needs to see.
type Item struct {
	ShopID   uuid.UUID
	Subtotal int64
}

// OrderContext is the cart snapshot vouchers are evaluated against. It is
// supplied by the caller and never persisted by the engine.
type OrderContext struct {
	Items        []Item
	ShippingCost int64
}

// Subtotal sums the item subtotals.
func (o OrderContext) Subtotal() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.Subtotal
	}
	return total
}

// Check reports whether the voucher may be applied to the order at the given
// instant. It is a pure predicate: no side effects, no UsedCount mutation.
// The first failing condition is returned so callers can surface a reason.
func Check(v Voucher, order OrderContext, now time.Time) error {
	if !v.Active {
		return ErrVoucherInactive
	}
	// Both window bounds are inclusive.
	if v.StartDate != nil && now.Before(*v.StartDate) {
		return ErrVoucherNotStarted
	}
	if v.EndDate != nil && now.After(*v.EndDate) {
		return ErrVoucherExpired
	}
	if v.UsageLimit != nil && v.UsedCount >= *v.UsageLimit {
		return ErrUsageLimitReached
	}
	if v.MinOrderValue != nil {
		relevant := order.Subtotal()
		if v.Type == TypeShipping {
			relevant = order.ShippingCost
		}
		if relevant < *v.MinOrderValue {
			return ErrMinimumOrderUnmet
		}
	}
	if v.Type == TypeShop {
		if v.ShopID == nil {
			return ErrNotApplicable
		}
		matched := false
		for _, it := range order.Items {
			if it.ShopID == *v.ShopID {
				matched = true
				break
			}
		}
		// An empty order never defaults to applicable.
		if !matched {
			return ErrShopMismatch
		}
	}
	return nil
}

// IsApplicable is the boolean form of Check.
func IsApplicable(v Voucher, order OrderContext, now time.Time) bool {
	return Check(v, order, now) == nil
}

// ScopeAmount resolves the amount the voucher's discount is computed against:
// the matching shop's item subtotal for SHOP, the shipping cost for SHIPPING
// and the whole-order subtotal otherwise.
func ScopeAmount(v Voucher, order OrderContext) int64 {
	switch v.Type {
	case TypeShop:
		if v.ShopID == nil {
			return 0
		}
		var total int64
		for _, it := range order.Items {
			if it.ShopID == *v.ShopID {
				total += it.Subtotal
			}
		}
		return total
	case TypeShipping:
		return order.ShippingCost
	default:
		return order.Subtotal()
	}
}

// SameScope reports whether two vouchers compete for the same discount slot:
// equal types, and for SHOP vouchers the same shop.
func SameScope(a, b Voucher) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type != TypeShop {
		return true
	}
	if a.ShopID == nil || b.ShopID == nil {
		return a.ShopID == b.ShopID
	}
	return *a.ShopID == *b.ShopID
}

// ComputeDiscount determines the discount the voucher yields against the
// resolved scope amount. The result is capped by MaxDiscountAmount and can
// never exceed the amount it discounts.
func ComputeDiscount(v Voucher, scopeAmount int64) int64 {
	if scopeAmount <= 0 {
		return 0
	}
	var raw int64
	switch v.DiscountType {
	case DiscountPercentage:
		if v.DiscountValue <= 0 {
			return 0
		}
		raw = scopeAmount * v.DiscountValue / 100
	default:
		raw = v.DiscountValue
	}
	if v.MaxDiscountAmount != nil && raw > *v.MaxDiscountAmount {
		raw = *v.MaxDiscountAmount
	}
	if raw > scopeAmount {
		raw = scopeAmount
	}
	if raw < 0 {
		return 0
	}
	return raw
}
