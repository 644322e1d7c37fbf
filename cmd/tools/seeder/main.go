package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

type product struct {
	title string
	slug  string
	price int64
	stock int32
}

type seedVoucher struct {
	code         string
	vtype        string
	discountType string
	value        int64
	cap          *int64
	minOrder     *int64
	usageLimit   *int32
	shopScoped   bool
}

func ptr[T any](v T) *T { return &v }

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	var shopID string
	if err := conn.QueryRow(ctx, "SELECT gen_random_uuid()").Scan(&shopID); err != nil {
		log.Fatalf("generate shop id: %v", err)
	}
	log.Printf("seeding shop %s", shopID)

	products := []product{
		{"Kopi Arabika Gayo 250g", "kopi-arabika-gayo-250g", 85_000, 120},
		{"Teh Melati Premium", "teh-melati-premium", 40_000, 200},
		{"Gula Aren Cair 500ml", "gula-aren-cair-500ml", 35_000, 80},
		{"French Press 350ml", "french-press-350ml", 150_000, 25},
	}
	for _, p := range products {
		_, err := conn.Exec(ctx, `
			INSERT INTO products (shop_id, title, slug, price, stock)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (slug) DO UPDATE SET price = EXCLUDED.price, stock = EXCLUDED.stock
		`, shopID, p.title, p.slug, p.price, p.stock)
		if err != nil {
			log.Fatalf("seed product %s: %v", p.slug, err)
		}
	}
	log.Printf("seeded %d products", len(products))

	vouchers := []seedVoucher{
		{code: "HEMAT10", vtype: "SYSTEM", discountType: "PERCENTAGE", value: 10, cap: ptr[int64](20_000)},
		{code: "HEMAT20", vtype: "SYSTEM", discountType: "PERCENTAGE", value: 20, cap: ptr[int64](50_000), minOrder: ptr[int64](150_000)},
		{code: "POTONG15K", vtype: "SHOP", discountType: "FIXED_AMOUNT", value: 15_000, shopScoped: true},
		{code: "ONGKIRGRATIS", vtype: "SHIPPING", discountType: "FIXED_AMOUNT", value: 30_000, usageLimit: ptr[int32](1000)},
	}
	for _, v := range vouchers {
		var vShop any
		if v.shopScoped {
			vShop = shopID
		}
		_, err := conn.Exec(ctx, `
			INSERT INTO vouchers (code, type, discount_type, discount_value, max_discount_amount, min_order_value, usage_limit, active, start_date, end_date, shop_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, now(), now() + interval '90 days', $8)
			ON CONFLICT (code) DO NOTHING
		`, v.code, v.vtype, v.discountType, v.value, v.cap, v.minOrder, v.usageLimit, vShop)
		if err != nil {
			log.Fatalf("seed voucher %s: %v", v.code, err)
		}
	}
	log.Printf("seeded %d vouchers", len(vouchers))
}
