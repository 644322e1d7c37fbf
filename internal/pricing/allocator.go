package pricing

import (
	"github.com/kedai-dev/checkout-api/internal/voucher"
)

// Context converts the order into the snapshot shape voucher evaluation
// consumes.
func (o Order) Context() voucher.OrderContext {
	items := make([]voucher.Item, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, voucher.Item{ShopID: it.ShopID, Subtotal: it.Subtotal})
	}
	return voucher.OrderContext{Items: items, ShippingCost: o.ShippingCost}
}

// Allocate combines the selected vouchers into a single discount breakdown.
//
// Every contribution is computed against the original scope amount, not a
// shrinking remainder, and the bucket totals are clamped once at the end.
// This keeps the result independent of selection order: allocating
// [v1, v2] and [v2, v1] always produces the same breakdown.
func Allocate(selected []voucher.Voucher, order Order) Breakdown {
	ctx := order.Context()
	var bd Breakdown
	for _, v := range selected {
		contribution := voucher.ComputeDiscount(v, voucher.ScopeAmount(v, ctx))
		if contribution <= 0 {
			continue
		}
		if v.Type == voucher.TypeShipping {
			bd.Shipping += contribution
		} else {
			bd.Product += contribution
		}
	}
	// Individually capped contributions may still jointly exceed the scope.
	if subtotal := order.Subtotal(); bd.Product > subtotal {
		bd.Product = subtotal
	}
	if order.ShippingCost >= 0 && bd.Shipping > order.ShippingCost {
		bd.Shipping = order.ShippingCost
	}
	bd.Total = bd.Product + bd.Shipping
	return bd
}
