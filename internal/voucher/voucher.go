package voucher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type determines the scope a voucher discounts.
type Type string

const (
	// TypeSystem applies to the whole order subtotal.
	TypeSystem Type = "SYSTEM"
	// TypeShop applies only to items belonging to one shop.
	TypeShop Type = "SHOP"
	// TypeShipping applies to the shipping cost only.
	TypeShipping Type = "SHIPPING"
)

// DiscountType determines how the discount value is interpreted.
type DiscountType string

const (
	// DiscountPercentage interprets the value as a percentage in [0, 100].
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountFixedAmount interprets the value as minor currency units.
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

// ErrInvalidVoucher indicates a voucher record that violates its own
// invariants. Such records point at an upstream data problem and are
// rejected outright instead of being clamped into shape.
var ErrInvalidVoucher = errors.New("invalid voucher")

// Voucher is a discount grant with a scope, a discount formula and validity
// constraints. Records are read-only to the pricing core; UsedCount is only
// ever advanced by the settlement path after an order is placed.
type Voucher struct {
	ID                uuid.UUID
	Code              string
	Type              Type
	DiscountType      DiscountType
	DiscountValue     int64
	MaxDiscountAmount *int64
	MinOrderValue     *int64
	UsageLimit        *int32
	UsedCount         int32
	Active            bool
	StartDate         *time.Time
	EndDate           *time.Time
	ShopID            *uuid.UUID
}

// NormalizeCode canonicalises a human-entered voucher code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the record's internal consistency.
func (v Voucher) Validate() error {
	switch v.Type {
	case TypeSystem, TypeShop, TypeShipping:
	default:
		return fmt.Errorf("unknown type %q: %w", v.Type, ErrInvalidVoucher)
	}
	switch v.DiscountType {
	case DiscountPercentage, DiscountFixedAmount:
	default:
		return fmt.Errorf("unknown discount type %q: %w", v.DiscountType, ErrInvalidVoucher)
	}
	if v.DiscountValue < 0 {
		return fmt.Errorf("discount value must not be negative: %w", ErrInvalidVoucher)
	}
	if v.DiscountType == DiscountPercentage && v.DiscountValue > 100 {
		return fmt.Errorf("percentage discount must be within [0,100]: %w", ErrInvalidVoucher)
	}
	if v.MaxDiscountAmount != nil && *v.MaxDiscountAmount < 0 {
		return fmt.Errorf("max discount amount must not be negative: %w", ErrInvalidVoucher)
	}
	if v.MinOrderValue != nil && *v.MinOrderValue < 0 {
		return fmt.Errorf("min order value must not be negative: %w", ErrInvalidVoucher)
	}
	if v.Type == TypeShop && v.ShopID == nil {
		return fmt.Errorf("shop voucher requires a shop id: %w", ErrInvalidVoucher)
	}
	return nil
}
