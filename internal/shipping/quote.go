package shipping

import (
	"context"
	"errors"
	"strings"
)

// ErrNoRates is returned when the provider has no rate for the request.
var ErrNoRates = errors.New("no shipping rates available")

// RateReq describes a shipping rate request.
type RateReq struct {
	Origin      string
	Destination string
	WeightGram  int
	Courier     string
}

// Rate describes a returned shipping rate option.
type Rate struct {
	Service string `json:"service"`
	Price   int64  `json:"cost"`
	ETD     string `json:"etd"`
	Courier string `json:"courier,omitempty"`
}

// Client defines the behaviour required to quote shipping rates.
type Client interface {
	Rates(ctx context.Context, r RateReq) ([]Rate, error)
}

// FlatRateClient quotes deterministic rates from a base price plus a per-kg
// surcharge. It stands in for a carrier integration during development and in
// tests.
type FlatRateClient struct {
	Base  int64
	PerKg int64
}

// Rates returns a regular and an express option priced off the request weight.
func (c FlatRateClient) Rates(ctx context.Context, r RateReq) ([]Rate, error) {
	_ = ctx
	if r.Destination == "" {
		return nil, ErrNoRates
	}
	base := c.Base
	if base <= 0 {
		base = 15_000
	}
	perKg := c.PerKg
	if perKg <= 0 {
		perKg = 5_000
	}
	kg := int64((r.WeightGram + 999) / 1000)
	if kg < 1 {
		kg = 1
	}
	courier := strings.ToLower(strings.TrimSpace(r.Courier))
	regular := base + perKg*(kg-1)
	return []Rate{
		{Service: "REG", Price: regular, ETD: "2-3", Courier: courier},
		{Service: "YES", Price: regular * 2, ETD: "1", Courier: courier},
	}, nil
}

// CheapestRate picks the lowest-priced option from the provider's response.
func CheapestRate(rates []Rate) (Rate, error) {
	if len(rates) == 0 {
		return Rate{}, ErrNoRates
	}
	best := rates[0]
	for _, r := range rates[1:] {
		if r.Price < best.Price {
			best = r
		}
	}
	return best, nil
}
