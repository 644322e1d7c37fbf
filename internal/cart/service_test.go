package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
	"github.com/kedai-dev/checkout-api/internal/pricing"
	"github.com/kedai-dev/checkout-api/internal/voucher"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	carts    map[uuid.UUID]dbgen.Cart
	items    map[uuid.UUID]dbgen.CartItem
	products map[uuid.UUID]dbgen.Product
	vouchers map[uuid.UUID]dbgen.Voucher
	applied  map[uuid.UUID][]uuid.UUID // cartID -> voucherIDs
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		carts:    map[uuid.UUID]dbgen.Cart{},
		items:    map[uuid.UUID]dbgen.CartItem{},
		products: map[uuid.UUID]dbgen.Product{},
		vouchers: map[uuid.UUID]dbgen.Voucher{},
		applied:  map[uuid.UUID][]uuid.UUID{},
	}
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func (f *fakeStore) CreateCart(_ context.Context, arg dbgen.CreateCartParams) (dbgen.Cart, error) {
	c := dbgen.Cart{ID: pgUUID(uuid.New()), UserID: arg.UserID, AnonID: arg.AnonID, ExpiresAt: arg.ExpiresAt}
	f.carts[uuid.UUID(c.ID.Bytes)] = c
	return c, nil
}

func (f *fakeStore) GetActiveCartByUser(_ context.Context, userID pgtype.UUID) (dbgen.Cart, error) {
	for _, c := range f.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return dbgen.Cart{}, pgx.ErrNoRows
}

func (f *fakeStore) GetActiveCartByAnon(_ context.Context, anonID pgtype.Text) (dbgen.Cart, error) {
	for _, c := range f.carts {
		if c.AnonID.Valid && c.AnonID.String == anonID.String {
			return c, nil
		}
	}
	return dbgen.Cart{}, pgx.ErrNoRows
}

func (f *fakeStore) GetCartByID(_ context.Context, id pgtype.UUID) (dbgen.Cart, error) {
	c, ok := f.carts[uuid.UUID(id.Bytes)]
	if !ok {
		return dbgen.Cart{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeStore) TouchCart(_ context.Context, _ dbgen.TouchCartParams) error { return nil }

func (f *fakeStore) CreateCartItem(_ context.Context, arg dbgen.CreateCartItemParams) (dbgen.CartItem, error) {
	it := dbgen.CartItem{
		ID:        pgUUID(uuid.New()),
		CartID:    arg.CartID,
		ProductID: arg.ProductID,
		ShopID:    arg.ShopID,
		Title:     arg.Title,
		Qty:       arg.Qty,
		UnitPrice: arg.UnitPrice,
		Subtotal:  arg.Subtotal,
	}
	f.items[uuid.UUID(it.ID.Bytes)] = it
	return it, nil
}

func (f *fakeStore) FindCartItemByProduct(_ context.Context, arg dbgen.FindCartItemByProductParams) (dbgen.CartItem, error) {
	for _, it := range f.items {
		if it.CartID == arg.CartID && it.ProductID == arg.ProductID {
			return it, nil
		}
	}
	return dbgen.CartItem{}, pgx.ErrNoRows
}

func (f *fakeStore) GetCartItemByID(_ context.Context, id pgtype.UUID) (dbgen.CartItem, error) {
	it, ok := f.items[uuid.UUID(id.Bytes)]
	if !ok {
		return dbgen.CartItem{}, pgx.ErrNoRows
	}
	return it, nil
}

func (f *fakeStore) ListCartItems(_ context.Context, cartID pgtype.UUID) ([]dbgen.CartItem, error) {
	var out []dbgen.CartItem
	for _, it := range f.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateCartItemQty(_ context.Context, arg dbgen.UpdateCartItemQtyParams) (dbgen.CartItem, error) {
	it, ok := f.items[uuid.UUID(arg.ID.Bytes)]
	if !ok {
		return dbgen.CartItem{}, pgx.ErrNoRows
	}
	it.Qty = arg.Qty
	it.Subtotal = arg.Subtotal
	f.items[uuid.UUID(arg.ID.Bytes)] = it
	return it, nil
}

func (f *fakeStore) DeleteCartItem(_ context.Context, id pgtype.UUID) error {
	delete(f.items, uuid.UUID(id.Bytes))
	return nil
}

func (f *fakeStore) GetProductForCart(_ context.Context, id pgtype.UUID) (dbgen.Product, error) {
	p, ok := f.products[uuid.UUID(id.Bytes)]
	if !ok {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeStore) AddCartVoucher(_ context.Context, arg dbgen.AddCartVoucherParams) error {
	cartID := uuid.UUID(arg.CartID.Bytes)
	voucherID := uuid.UUID(arg.VoucherID.Bytes)
	for _, id := range f.applied[cartID] {
		if id == voucherID {
			return nil
		}
	}
	f.applied[cartID] = append(f.applied[cartID], voucherID)
	return nil
}

func (f *fakeStore) RemoveCartVoucher(_ context.Context, arg dbgen.RemoveCartVoucherParams) error {
	cartID := uuid.UUID(arg.CartID.Bytes)
	voucherID := uuid.UUID(arg.VoucherID.Bytes)
	kept := f.applied[cartID][:0]
	for _, id := range f.applied[cartID] {
		if id != voucherID {
			kept = append(kept, id)
		}
	}
	f.applied[cartID] = kept
	return nil
}

func (f *fakeStore) ClearCartVouchers(_ context.Context, cartID pgtype.UUID) error {
	delete(f.applied, uuid.UUID(cartID.Bytes))
	return nil
}

func (f *fakeStore) ListCartVouchers(_ context.Context, cartID pgtype.UUID) ([]dbgen.Voucher, error) {
	var out []dbgen.Voucher
	for _, id := range f.applied[uuid.UUID(cartID.Bytes)] {
		if v, ok := f.vouchers[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) addProduct(shopID uuid.UUID, price int64, stock int32) uuid.UUID {
	id := uuid.New()
	f.products[id] = dbgen.Product{ID: pgUUID(id), ShopID: pgUUID(shopID), Title: "produk", Price: price, Stock: stock}
	return id
}

func (f *fakeStore) addVoucher(row dbgen.Voucher) dbgen.Voucher {
	if !row.ID.Valid {
		row.ID = pgUUID(uuid.New())
	}
	f.vouchers[uuid.UUID(row.ID.Bytes)] = row
	return row
}

type voucherLookup struct{ store *fakeStore }

func (l voucherLookup) GetVoucherByCode(_ context.Context, code string) (dbgen.Voucher, error) {
	for _, v := range l.store.vouchers {
		if v.Code == code {
			return v, nil
		}
	}
	return dbgen.Voucher{}, pgx.ErrNoRows
}

func (l voucherLookup) ListActiveVouchers(_ context.Context) ([]dbgen.Voucher, error) {
	return nil, nil
}

func (l voucherLookup) ListVouchersByIDs(_ context.Context, _ []pgtype.UUID) ([]dbgen.Voucher, error) {
	return nil, nil
}

func (l voucherLookup) RecordVoucherUsage(_ context.Context, _ dbgen.RecordVoucherUsageParams) (int64, error) {
	return 1, nil
}

func newTestService(store *fakeStore) *Service {
	return &Service{
		Q:        store,
		Vouchers: &voucher.Service{Q: voucherLookup{store: store}, Now: func() time.Time { return testNow }},
		Now:      func() time.Time { return testNow },
	}
}

func TestEnsureCartCreatesForAnon(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	anon := "guest-1"
	cart, err := svc.EnsureCart(context.Background(), nil, &anon)
	if err != nil {
		t.Fatalf("EnsureCart: %v", err)
	}
	again, err := svc.EnsureCart(context.Background(), nil, &anon)
	if err != nil {
		t.Fatalf("EnsureCart again: %v", err)
	}
	if cart.ID != again.ID {
		t.Fatal("EnsureCart created a second cart for the same anon id")
	}
}

func TestAddItemChecksStock(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	anon := "guest-1"
	cart, _ := svc.EnsureCart(context.Background(), nil, &anon)
	productID := store.addProduct(uuid.New(), 50_000, 2)

	if err := svc.AddItem(context.Background(), UUIDString(cart.ID), productID.String(), 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.AddItem(context.Background(), UUIDString(cart.ID), productID.String(), 1); err != ErrOutOfStock {
		t.Fatalf("err = %v, want ErrOutOfStock", err)
	}
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	anon := "guest-1"
	cart, _ := svc.EnsureCart(context.Background(), nil, &anon)
	productID := store.addProduct(uuid.New(), 50_000, 10)

	_ = svc.AddItem(context.Background(), UUIDString(cart.ID), productID.String(), 1)
	_ = svc.AddItem(context.Background(), UUIDString(cart.ID), productID.String(), 2)

	items, _ := store.ListCartItems(context.Background(), cart.ID)
	if len(items) != 1 {
		t.Fatalf("line items = %d, want 1", len(items))
	}
	if items[0].Qty != 3 || items[0].Subtotal != 150_000 {
		t.Fatalf("qty=%d subtotal=%d, want 3/150000", items[0].Qty, items[0].Subtotal)
	}
}

func TestApplyVoucherReplacesSameScope(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	anon := "guest-1"
	cart, _ := svc.EnsureCart(context.Background(), nil, &anon)
	productID := store.addProduct(uuid.New(), 100_000, 10)
	_ = svc.AddItem(context.Background(), UUIDString(cart.ID), productID.String(), 2)

	store.addVoucher(dbgen.Voucher{
		Code: "HEMAT10", Type: dbgen.VoucherTypeSYSTEM,
		DiscountType: dbgen.DiscountTypePERCENTAGE, DiscountValue: 10, Active: true,
	})
	store.addVoucher(dbgen.Voucher{
		Code: "HEMAT20", Type: dbgen.VoucherTypeSYSTEM,
		DiscountType: dbgen.DiscountTypePERCENTAGE, DiscountValue: 20, Active: true,
	})

	if _, err := svc.ApplyVoucher(context.Background(), UUIDString(cart.ID), "HEMAT10", 0); err != nil {
		t.Fatalf("apply HEMAT10: %v", err)
	}
	discount, err := svc.ApplyVoucher(context.Background(), UUIDString(cart.ID), "HEMAT20", 0)
	if err != nil {
		t.Fatalf("apply HEMAT20: %v", err)
	}
	if discount != 40_000 {
		t.Fatalf("discount = %d, want 40000", discount)
	}
	applied, _ := store.ListCartVouchers(context.Background(), cart.ID)
	if len(applied) != 1 || applied[0].Code != "HEMAT20" {
		t.Fatalf("applied vouchers = %v, want only HEMAT20", applied)
	}
}

func TestApplyVoucherRejectsBelowMinimum(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	anon := "guest-1"
	cart, _ := svc.EnsureCart(context.Background(), nil, &anon)
	productID := store.addProduct(uuid.New(), 10_000, 10)
	_ = svc.AddItem(context.Background(), UUIDString(cart.ID), productID.String(), 1)

	store.addVoucher(dbgen.Voucher{
		Code: "BIGSPEND", Type: dbgen.VoucherTypeSYSTEM,
		DiscountType: dbgen.DiscountTypeFIXEDAMOUNT, DiscountValue: 5_000, Active: true,
		MinOrderValue: pgtype.Int8{Int64: 50_000, Valid: true},
	})

	_, err := svc.ApplyVoucher(context.Background(), UUIDString(cart.ID), "BIGSPEND", 0)
	if err != voucher.ErrMinimumOrderUnmet {
		t.Fatalf("err = %v, want ErrMinimumOrderUnmet", err)
	}
	if applied, _ := store.ListCartVouchers(context.Background(), cart.ID); len(applied) != 0 {
		t.Fatal("rejected voucher must not be persisted")
	}
}

func TestQuoteDropsStaleVouchers(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	anon := "guest-1"
	cart, _ := svc.EnsureCart(context.Background(), nil, &anon)
	productID := store.addProduct(uuid.New(), 100_000, 10)
	_ = svc.AddItem(context.Background(), UUIDString(cart.ID), productID.String(), 1)

	store.addVoucher(dbgen.Voucher{
		Code: "MIN100", Type: dbgen.VoucherTypeSYSTEM,
		DiscountType: dbgen.DiscountTypeFIXEDAMOUNT, DiscountValue: 20_000, Active: true,
		MinOrderValue: pgtype.Int8{Int64: 100_000, Valid: true},
	})
	if _, err := svc.ApplyVoucher(context.Background(), UUIDString(cart.ID), "MIN100", 0); err != nil {
		t.Fatalf("apply: %v", err)
	}

	// reprice the single line below the threshold
	items, _ := store.ListCartItems(context.Background(), cart.ID)
	it := store.items[uuid.UUID(items[0].ID.Bytes)]
	it.UnitPrice = 50_000
	it.Subtotal = 50_000
	store.items[uuid.UUID(items[0].ID.Bytes)] = it

	summary, _, applied, err := svc.Quote(context.Background(), cart.ID, 0)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("stale voucher survived reconcile: %v", applied)
	}
	if summary.Discount != (pricing.Breakdown{}) || summary.Total != 50_000 {
		t.Fatalf("summary = %+v, want no discount and total 50000", summary)
	}
	if left, _ := store.ListCartVouchers(context.Background(), cart.ID); len(left) != 0 {
		t.Fatal("stale voucher still attached to cart")
	}
}

func TestQuotePricesAppliedVouchers(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	anon := "guest-1"
	cart, _ := svc.EnsureCart(context.Background(), nil, &anon)
	productID := store.addProduct(uuid.New(), 100_000, 10)
	_ = svc.AddItem(context.Background(), UUIDString(cart.ID), productID.String(), 2)

	store.addVoucher(dbgen.Voucher{
		Code: "HEMAT10", Type: dbgen.VoucherTypeSYSTEM,
		DiscountType: dbgen.DiscountTypePERCENTAGE, DiscountValue: 10, Active: true,
		MaxDiscountAmount: pgtype.Int8{Int64: 15_000, Valid: true},
	})
	store.addVoucher(dbgen.Voucher{
		Code: "GRATIS", Type: dbgen.VoucherTypeSHIPPING,
		DiscountType: dbgen.DiscountTypeFIXEDAMOUNT, DiscountValue: 50_000, Active: true,
	})
	if _, err := svc.ApplyVoucher(context.Background(), UUIDString(cart.ID), "HEMAT10", 30_000); err != nil {
		t.Fatalf("apply HEMAT10: %v", err)
	}
	if _, err := svc.ApplyVoucher(context.Background(), UUIDString(cart.ID), "GRATIS", 30_000); err != nil {
		t.Fatalf("apply GRATIS: %v", err)
	}

	summary, breakdown, applied, err := svc.Quote(context.Background(), cart.ID, 30_000)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("applied = %d vouchers, want 2", len(applied))
	}
	if breakdown.Product != 15_000 || breakdown.Shipping != 30_000 {
		t.Fatalf("breakdown = %+v, want product 15000 shipping 30000", breakdown)
	}
	if summary.Total != 185_000 {
		t.Fatalf("total = %d, want 185000", summary.Total)
	}
}
