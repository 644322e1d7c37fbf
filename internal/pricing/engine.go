package pricing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kedai-dev/checkout-api/internal/voucher"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// ErrInvalidOrder is returned when an order snapshot carries values that
// indicate an upstream data-integrity problem.
var ErrInvalidOrder = errors.New("invalid order")

// LineItem describes a single cart line used for pricing calculation.
type LineItem struct {
	ID        uuid.UUID
	ShopID    uuid.UUID
	UnitPrice Money
	Qty       int
	Subtotal  Money
}

// Order is the immutable snapshot the pricing engine operates on.
type Order struct {
	Items        []LineItem
	ShippingCost Money
}

// Breakdown splits the total discount into product and shipping buckets.
type Breakdown struct {
	Product  Money `json:"productDiscount"`
	Shipping Money `json:"shippingDiscount"`
	Total    Money `json:"totalDiscount"`
}

// Summary aggregates the computed pricing components for an order.
type Summary struct {
	Subtotal    Money     `json:"subtotal"`
	ShippingFee Money     `json:"shippingFee"`
	Discount    Breakdown `json:"discount"`
	Total       Money     `json:"total"`
}

// NewLineItem derives the subtotal from unit price and quantity.
func NewLineItem(id, shopID uuid.UUID, unitPrice Money, qty int) LineItem {
	return LineItem{
		ID:        id,
		ShopID:    shopID,
		UnitPrice: unitPrice,
		Qty:       qty,
		Subtotal:  unitPrice * Money(qty),
	}
}

// Subtotal sums the line item subtotals.
func (o Order) Subtotal() Money {
	var total Money
	for _, it := range o.Items {
		total += it.Subtotal
	}
	return total
}

// Validate rejects order snapshots with negative prices or quantities rather
// than silently clamping, so backend bugs surface at the boundary.
func (o Order) Validate() error {
	if o.ShippingCost < 0 {
		return fmt.Errorf("shipping cost must not be negative: %w", ErrInvalidOrder)
	}
	for _, it := range o.Items {
		if it.UnitPrice < 0 {
			return fmt.Errorf("item %s: unit price must not be negative: %w", it.ID, ErrInvalidOrder)
		}
		if it.Qty < 0 {
			return fmt.Errorf("item %s: quantity must not be negative: %w", it.ID, ErrInvalidOrder)
		}
	}
	return nil
}

// Summarize computes the full order summary for the given voucher selection.
// It is a pure function: re-evaluating it on every cart or selection change
// yields the same numbers for the same inputs.
func Summarize(order Order, selected []voucher.Voucher) Summary {
	subtotal := order.Subtotal()
	shipping := order.ShippingCost
	if shipping < 0 {
		shipping = 0
	}
	discount := Allocate(selected, order)
	total := subtotal + shipping - discount.Total
	if total < 0 {
		total = 0
	}
	return Summary{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Discount:    discount,
		Total:       total,
	}
}
