package shipping

import (
	"context"
	"testing"
)

func TestFlatRateClientScalesWithWeight(t *testing.T) {
	t.Parallel()

	c := FlatRateClient{Base: 10_000, PerKg: 4_000}

	light, err := c.Rates(context.Background(), RateReq{Destination: "JKT", WeightGram: 500})
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}
	if light[0].Price != 10_000 {
		t.Fatalf("sub-kilo REG price = %d, want base 10000", light[0].Price)
	}

	heavy, err := c.Rates(context.Background(), RateReq{Destination: "JKT", WeightGram: 2_500})
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}
	if heavy[0].Price != 18_000 {
		t.Fatalf("3kg REG price = %d, want 18000", heavy[0].Price)
	}
	if heavy[1].Price != 36_000 {
		t.Fatalf("express price = %d, want double regular", heavy[1].Price)
	}
}

func TestFlatRateClientRequiresDestination(t *testing.T) {
	t.Parallel()

	if _, err := (FlatRateClient{}).Rates(context.Background(), RateReq{}); err != ErrNoRates {
		t.Fatalf("err = %v, want ErrNoRates", err)
	}
}

func TestCheapestRate(t *testing.T) {
	t.Parallel()

	rate, err := CheapestRate([]Rate{
		{Service: "YES", Price: 30_000},
		{Service: "REG", Price: 15_000},
	})
	if err != nil {
		t.Fatalf("CheapestRate: %v", err)
	}
	if rate.Service != "REG" {
		t.Fatalf("service = %s, want REG", rate.Service)
	}
	if _, err := CheapestRate(nil); err != ErrNoRates {
		t.Fatalf("empty err = %v, want ErrNoRates", err)
	}
}
