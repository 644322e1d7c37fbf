package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// Querier is the subset of generated queries the catalog needs.
type Querier interface {
	ListProducts(ctx context.Context, arg dbgen.ListProductsParams) ([]dbgen.Product, error)
	CountProducts(ctx context.Context, query string) (int64, error)
	GetProductBySlug(ctx context.Context, slug string) (dbgen.Product, error)
}

// Product is the read model returned to clients.
type Product struct {
	ID     string `json:"id"`
	ShopID string `json:"shopId,omitempty"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Price  int64  `json:"price"`
	Stock  int32  `json:"stock"`
}

// ListParams captures filters for the product listing.
type ListParams struct {
	Query  string
	Limit  int32
	Offset int32
}

// ListResult pairs a page of products with the total match count.
type ListResult struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
}

// Service serves the product read surface consumed by carts.
type Service struct {
	Q     Querier
	Cache *Cache
}

// List returns a filtered page of products, served from cache when warm.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	if s == nil || s.Q == nil {
		return ListResult{}, errors.New("catalog service not configured")
	}
	query := strings.TrimSpace(params.Query)
	key := fmt.Sprintf("catalog:list:%s:%d:%d", query, params.Limit, params.Offset)

	var cached ListResult
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	rows, err := s.Q.ListProducts(ctx, dbgen.ListProductsParams{
		Query:  query,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("list products: %w", err)
	}
	total, err := s.Q.CountProducts(ctx, query)
	if err != nil {
		return ListResult{}, fmt.Errorf("count products: %w", err)
	}

	result := ListResult{Items: make([]Product, 0, len(rows)), Total: total}
	for _, row := range rows {
		result.Items = append(result.Items, fromModel(row))
	}
	_ = s.Cache.SetJSON(ctx, key, result)
	return result, nil
}

// Get returns a single product by slug.
func (s *Service) Get(ctx context.Context, slug string) (Product, error) {
	if s == nil || s.Q == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return Product{}, ErrNotFound
	}

	key := "catalog:product:" + trimmed
	var cached Product
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	row, err := s.Q.GetProductBySlug(ctx, trimmed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}

	product := fromModel(row)
	_ = s.Cache.SetJSON(ctx, key, product)
	return product, nil
}

func fromModel(row dbgen.Product) Product {
	p := Product{
		Title: row.Title,
		Slug:  row.Slug,
		Price: row.Price,
		Stock: row.Stock,
	}
	if row.ID.Valid {
		p.ID = uuid.UUID(row.ID.Bytes).String()
	}
	if row.ShopID.Valid {
		p.ShopID = uuid.UUID(row.ShopID.Bytes).String()
	}
	return p
}
