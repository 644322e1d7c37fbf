package catalog

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
	products  []dbgen.Product
	listCalls int
	getCalls  int
}

func (s *stubQueries) ListProducts(_ context.Context, arg dbgen.ListProductsParams) ([]dbgen.Product, error) {
	s.listCalls++
	end := int(arg.Offset + arg.Limit)
	if end > len(s.products) {
		end = len(s.products)
	}
	if int(arg.Offset) >= len(s.products) {
		return nil, nil
	}
	return s.products[arg.Offset:end], nil
}

func (s *stubQueries) CountProducts(context.Context, string) (int64, error) {
	return int64(len(s.products)), nil
}

func (s *stubQueries) GetProductBySlug(_ context.Context, slug string) (dbgen.Product, error) {
	s.getCalls++
	for _, p := range s.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return dbgen.Product{}, pgx.ErrNoRows
}

func testProduct(slug string, price int64) dbgen.Product {
	id := uuid.New()
	return dbgen.Product{
		ID:    pgtype.UUID{Bytes: id, Valid: true},
		Title: "Product " + slug,
		Slug:  slug,
		Price: price,
		Stock: 10,
	}
}

func newTestService(t *testing.T) (*Service, *stubQueries) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := &stubQueries{products: []dbgen.Product{
		testProduct("kopi-arabika", 85_000),
		testProduct("teh-melati", 40_000),
	}}
	return &Service{Q: q, Cache: NewCache(client, time.Minute)}, q
}

func TestListCachesSecondCall(t *testing.T) {
	svc, q := newTestService(t)

	first, err := svc.List(context.Background(), ListParams{Limit: 20})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first.Items) != 2 || first.Total != 2 {
		t.Fatalf("unexpected result %+v", first)
	}

	second, err := svc.List(context.Background(), ListParams{Limit: 20})
	if err != nil {
		t.Fatalf("List (cached): %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("unexpected cached result %+v", second)
	}
	if q.listCalls != 1 {
		t.Fatalf("listCalls = %d, want 1", q.listCalls)
	}
}

func TestGetBySlug(t *testing.T) {
	svc, q := newTestService(t)

	product, err := svc.Get(context.Background(), "kopi-arabika")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if product.Price != 85_000 {
		t.Fatalf("Price = %d, want 85000", product.Price)
	}

	if _, err := svc.Get(context.Background(), "kopi-arabika"); err != nil {
		t.Fatalf("Get (cached): %v", err)
	}
	if q.getCalls != 1 {
		t.Fatalf("getCalls = %d, want 1", q.getCalls)
	}
}

func TestGetUnknownSlug(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
