package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kedai-dev/checkout-api/internal/common"
	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
	"github.com/kedai-dev/checkout-api/internal/pricing"
	"github.com/kedai-dev/checkout-api/internal/voucher"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = common.NewAppError("NOT_FOUND", "cart not found", http.StatusNotFound, nil)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = common.NewAppError("BAD_REQUEST", "invalid input", http.StatusBadRequest, nil)

// ErrOutOfStock is returned when the requested quantity exceeds product stock.
var ErrOutOfStock = common.NewAppError("OUT_OF_STOCK", "product out of stock", http.StatusConflict, nil)

// Querier is the subset of generated queries the cart service relies on.
type Querier interface {
	CreateCart(ctx context.Context, arg dbgen.CreateCartParams) (dbgen.Cart, error)
	GetActiveCartByUser(ctx context.Context, userID pgtype.UUID) (dbgen.Cart, error)
	GetActiveCartByAnon(ctx context.Context, anonID pgtype.Text) (dbgen.Cart, error)
	GetCartByID(ctx context.Context, id pgtype.UUID) (dbgen.Cart, error)
	TouchCart(ctx context.Context, arg dbgen.TouchCartParams) error
	CreateCartItem(ctx context.Context, arg dbgen.CreateCartItemParams) (dbgen.CartItem, error)
	FindCartItemByProduct(ctx context.Context, arg dbgen.FindCartItemByProductParams) (dbgen.CartItem, error)
	GetCartItemByID(ctx context.Context, id pgtype.UUID) (dbgen.CartItem, error)
	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]dbgen.CartItem, error)
	UpdateCartItemQty(ctx context.Context, arg dbgen.UpdateCartItemQtyParams) (dbgen.CartItem, error)
	DeleteCartItem(ctx context.Context, id pgtype.UUID) error
	GetProductForCart(ctx context.Context, id pgtype.UUID) (dbgen.Product, error)
	AddCartVoucher(ctx context.Context, arg dbgen.AddCartVoucherParams) error
	RemoveCartVoucher(ctx context.Context, arg dbgen.RemoveCartVoucherParams) error
	ClearCartVouchers(ctx context.Context, cartID pgtype.UUID) error
	ListCartVouchers(ctx context.Context, cartID pgtype.UUID) ([]dbgen.Voucher, error)
}

// Service encapsulates cart domain operations.
type Service struct {
	Q        Querier
	Vouchers *voucher.Service
	TTL      time.Duration
	Now      func() time.Time
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) touch(ctx context.Context, cartID pgtype.UUID) {
	expires := pgtype.Timestamptz{Time: s.now().Add(s.ttl()), Valid: true}
	_ = s.Q.TouchCart(ctx, dbgen.TouchCartParams{ID: cartID, ExpiresAt: expires})
}

// EnsureCart loads or creates a cart for the provided identifiers.
func (s *Service) EnsureCart(ctx context.Context, userID *string, anonID *string) (dbgen.Cart, error) {
	if s == nil || s.Q == nil {
		return dbgen.Cart{}, errors.New("cart service not configured")
	}
	expires := pgtype.Timestamptz{Time: s.now().Add(s.ttl()), Valid: true}

	if userID != nil && *userID != "" {
		uid, err := toUUID(*userID)
		if err != nil {
			return dbgen.Cart{}, fmt.Errorf("parse user id: %w", err)
		}
		cart, err := s.Q.GetActiveCartByUser(ctx, uid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return s.Q.CreateCart(ctx, dbgen.CreateCartParams{
					UserID:    uid,
					AnonID:    pgtype.Text{},
					ExpiresAt: expires,
				})
			}
			return dbgen.Cart{}, err
		}
		s.touch(ctx, cart.ID)
		return cart, nil
	}

	if anonID != nil && *anonID != "" {
		cart, err := s.Q.GetActiveCartByAnon(ctx, pgtype.Text{String: *anonID, Valid: true})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return s.Q.CreateCart(ctx, dbgen.CreateCartParams{
					UserID:    pgtype.UUID{},
					AnonID:    pgtype.Text{String: *anonID, Valid: true},
					ExpiresAt: expires,
				})
			}
			return dbgen.Cart{}, err
		}
		s.touch(ctx, cart.ID)
		return cart, nil
	}

	return dbgen.Cart{}, ErrInvalidInput
}

// AddItem inserts or increments a cart item, pricing it from the product row.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, qty int) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	cID, err := toUUID(cartID)
	if err != nil {
		return fmt.Errorf("parse cart id: %w", err)
	}
	pID, err := toUUID(productID)
	if err != nil {
		return fmt.Errorf("parse product id: %w", err)
	}

	product, err := s.Q.GetProductForCart(ctx, pID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product not found: %w", ErrInvalidInput)
		}
		return err
	}

	item, err := s.Q.FindCartItemByProduct(ctx, dbgen.FindCartItemByProductParams{CartID: cID, ProductID: pID})
	if err == nil {
		newQty := item.Qty + int32(qty)
		if product.Stock < newQty {
			return ErrOutOfStock
		}
		if _, err := s.Q.UpdateCartItemQty(ctx, dbgen.UpdateCartItemQtyParams{
			ID:       item.ID,
			Qty:      newQty,
			Subtotal: int64(newQty) * item.UnitPrice,
		}); err != nil {
			return err
		}
		s.touch(ctx, cID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if product.Stock < int32(qty) {
		return ErrOutOfStock
	}
	unitPrice := product.Price
	if unitPrice < 0 {
		unitPrice = 0
	}
	if _, err := s.Q.CreateCartItem(ctx, dbgen.CreateCartItemParams{
		CartID:    cID,
		ProductID: pID,
		ShopID:    product.ShopID,
		Title:     product.Title,
		Qty:       int32(qty),
		UnitPrice: unitPrice,
		Subtotal:  int64(qty) * unitPrice,
	}); err != nil {
		return err
	}
	s.touch(ctx, cID)
	return nil
}

// UpdateQty updates the quantity for a cart item.
func (s *Service) UpdateQty(ctx context.Context, itemID string, qty int) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	id, err := toUUID(itemID)
	if err != nil {
		return fmt.Errorf("parse item id: %w", err)
	}
	item, err := s.Q.GetCartItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	product, err := s.Q.GetProductForCart(ctx, item.ProductID)
	if err == nil && product.Stock < int32(qty) {
		return ErrOutOfStock
	}
	if _, err := s.Q.UpdateCartItemQty(ctx, dbgen.UpdateCartItemQtyParams{
		ID:       item.ID,
		Qty:      int32(qty),
		Subtotal: int64(qty) * item.UnitPrice,
	}); err != nil {
		return err
	}
	s.touch(ctx, item.CartID)
	return nil
}

// RemoveItem deletes a cart item.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	cID, err := toUUID(cartID)
	if err != nil {
		return fmt.Errorf("parse cart id: %w", err)
	}
	iID, err := toUUID(itemID)
	if err != nil {
		return fmt.Errorf("parse item id: %w", err)
	}
	item, err := s.Q.GetCartItemByID(ctx, iID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !uuidEqual(item.CartID, cID) {
		return ErrNotFound
	}
	if err := s.Q.DeleteCartItem(ctx, iID); err != nil {
		return err
	}
	s.touch(ctx, cID)
	return nil
}

// Snapshot loads the cart items as a pricing order with the given shipping
// cost attached.
func (s *Service) Snapshot(ctx context.Context, cartID pgtype.UUID, shippingCost int64) (pricing.Order, error) {
	if s == nil || s.Q == nil {
		return pricing.Order{}, errors.New("cart service not configured")
	}
	items, err := s.Q.ListCartItems(ctx, cartID)
	if err != nil {
		return pricing.Order{}, err
	}
	lines := make([]pricing.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.LineItem{
			ID:        uuid.UUID(it.ID.Bytes),
			ShopID:    uuid.UUID(it.ShopID.Bytes),
			UnitPrice: it.UnitPrice,
			Qty:       int(it.Qty),
			Subtotal:  it.Subtotal,
		})
	}
	order := pricing.Order{Items: lines, ShippingCost: shippingCost}
	if err := order.Validate(); err != nil {
		return pricing.Order{}, err
	}
	return order, nil
}

// ApplyVoucher validates the voucher against the live cart snapshot and
// attaches it, displacing any previously applied voucher of the same scope.
// It returns the discount the voucher would currently yield.
func (s *Service) ApplyVoucher(ctx context.Context, cartID string, code string, shippingCost int64) (int64, error) {
	if s == nil || s.Q == nil || s.Vouchers == nil {
		return 0, errors.New("cart service not configured")
	}
	cID, err := toUUID(cartID)
	if err != nil {
		return 0, fmt.Errorf("parse cart id: %w", err)
	}
	cart, err := s.Q.GetCartByID(ctx, cID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	order, err := s.Snapshot(ctx, cart.ID, shippingCost)
	if err != nil {
		return 0, err
	}
	if len(order.Items) == 0 {
		return 0, fmt.Errorf("cart empty: %w", ErrInvalidInput)
	}

	v, err := s.Vouchers.GetByCode(ctx, code)
	if err != nil {
		return 0, err
	}
	if err := v.Validate(); err != nil {
		return 0, err
	}
	orderCtx := order.Context()
	if err := voucher.Check(v, orderCtx, s.now()); err != nil {
		return 0, err
	}

	applied, err := s.appliedSelection(ctx, cart.ID)
	if err != nil {
		return 0, err
	}
	for _, prev := range applied.Vouchers() {
		if voucher.SameScope(prev, v) && prev.ID != v.ID {
			if err := s.Q.RemoveCartVoucher(ctx, dbgen.RemoveCartVoucherParams{
				CartID:    cart.ID,
				VoucherID: pgtype.UUID{Bytes: prev.ID, Valid: true},
			}); err != nil {
				return 0, err
			}
		}
	}
	if err := s.Q.AddCartVoucher(ctx, dbgen.AddCartVoucherParams{
		CartID:    cart.ID,
		VoucherID: pgtype.UUID{Bytes: v.ID, Valid: true},
	}); err != nil {
		return 0, err
	}
	s.touch(ctx, cart.ID)
	return voucher.ComputeDiscount(v, voucher.ScopeAmount(v, orderCtx)), nil
}

// RemoveVoucher detaches a single applied voucher from the cart.
func (s *Service) RemoveVoucher(ctx context.Context, cartID string, code string) error {
	if s == nil || s.Q == nil || s.Vouchers == nil {
		return errors.New("cart service not configured")
	}
	cID, err := toUUID(cartID)
	if err != nil {
		return fmt.Errorf("parse cart id: %w", err)
	}
	v, err := s.Vouchers.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := s.Q.RemoveCartVoucher(ctx, dbgen.RemoveCartVoucherParams{
		CartID:    cID,
		VoucherID: pgtype.UUID{Bytes: v.ID, Valid: true},
	}); err != nil {
		return err
	}
	s.touch(ctx, cID)
	return nil
}

// Reconcile re-checks every applied voucher against the current cart
// snapshot, silently dropping the ones that no longer apply. It returns the
// surviving selection.
func (s *Service) Reconcile(ctx context.Context, cartID pgtype.UUID, order pricing.Order) (*pricing.Selection, error) {
	if s == nil || s.Q == nil {
		return nil, errors.New("cart service not configured")
	}
	applied, err := s.appliedSelection(ctx, cartID)
	if err != nil {
		return nil, err
	}
	orderCtx := order.Context()
	now := s.now()
	kept := pricing.NewSelection()
	for _, v := range applied.Vouchers() {
		if err := voucher.Check(v, orderCtx, now); err != nil {
			_ = s.Q.RemoveCartVoucher(ctx, dbgen.RemoveCartVoucherParams{
				CartID:    cartID,
				VoucherID: pgtype.UUID{Bytes: v.ID, Valid: true},
			})
			continue
		}
		kept.Add(v)
	}
	return kept, nil
}

// Quote prices the cart with its surviving vouchers applied.
func (s *Service) Quote(ctx context.Context, cartID pgtype.UUID, shippingCost int64) (pricing.Summary, pricing.Breakdown, []voucher.Voucher, error) {
	order, err := s.Snapshot(ctx, cartID, shippingCost)
	if err != nil {
		return pricing.Summary{}, pricing.Breakdown{}, nil, err
	}
	sel, err := s.Reconcile(ctx, cartID, order)
	if err != nil {
		return pricing.Summary{}, pricing.Breakdown{}, nil, err
	}
	vouchers := sel.Vouchers()
	breakdown := pricing.Allocate(vouchers, order)
	return pricing.Summarize(order, vouchers), breakdown, vouchers, nil
}

func (s *Service) appliedSelection(ctx context.Context, cartID pgtype.UUID) (*pricing.Selection, error) {
	rows, err := s.Q.ListCartVouchers(ctx, cartID)
	if err != nil {
		return nil, err
	}
	sel := pricing.NewSelection()
	for _, row := range rows {
		sel.Add(voucher.FromModel(row))
	}
	return sel, nil
}


func toUUID(value string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func uuidEqual(a, b pgtype.UUID) bool {
	if !a.Valid || !b.Valid {
		return false
	}
	return a.Bytes == b.Bytes
}

// ToUUID converts a string representation of a UUID into pgtype.UUID.
func ToUUID(value string) (pgtype.UUID, error) {
	return toUUID(value)
}

// UUIDString converts a pgtype.UUID into a canonical string.
func UUIDString(id pgtype.UUID) string {
	return uuidString(id)
}
