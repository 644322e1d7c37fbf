package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"

	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
)

// Querier defines the database access required for analytics operations.
type Querier interface {
	ListVoucherRedemptions(ctx context.Context, arg dbgen.ListVoucherRedemptionsParams) ([]dbgen.ListVoucherRedemptionsRow, error)
	SumDiscountGranted(ctx context.Context, arg dbgen.SumDiscountGrantedParams) (int64, error)
}

// Service provides cached access to voucher and discount reporting.
type Service struct {
	Q            Querier
	R            *redis.Client
	TTL          time.Duration
	DefaultRange int
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NowOrDefault exposes the service clock to handlers.
func (s *Service) NowOrDefault() time.Time {
	return s.now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// Redemptions returns per-code redemption counts and granted amounts between
// the bounds, most-redeemed first.
func (s *Service) Redemptions(ctx context.Context, from, to time.Time, limit int32) ([]dbgen.ListVoucherRedemptionsRow, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	key := cacheKey("an", "redemptions", from.Format("2006-01-02"), to.Format("2006-01-02"), limit)
	if s.R != nil && s.TTL > 0 {
		if data, err := s.R.Get(ctx, key).Bytes(); err == nil {
			var rows []dbgen.ListVoucherRedemptionsRow
			if json.Unmarshal(data, &rows) == nil {
				return rows, nil
			}
		}
	}
	rows, err := s.Q.ListVoucherRedemptions(ctx, dbgen.ListVoucherRedemptionsParams{
		From:  pgtype.Timestamptz{Time: from, Valid: true},
		To:    pgtype.Timestamptz{Time: to, Valid: true},
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

// DiscountGranted returns the total discount settled between the bounds.
func (s *Service) DiscountGranted(ctx context.Context, from, to time.Time) (int64, error) {
	if s == nil || s.Q == nil {
		return 0, fmt.Errorf("analytics service not configured")
	}
	key := cacheKey("an", "discount", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if s.R != nil && s.TTL > 0 {
		if data, err := s.R.Get(ctx, key).Bytes(); err == nil {
			var total int64
			if json.Unmarshal(data, &total) == nil {
				return total, nil
			}
		}
	}
	total, err := s.Q.SumDiscountGranted(ctx, dbgen.SumDiscountGrantedParams{
		From: pgtype.Timestamptz{Time: from, Valid: true},
		To:   pgtype.Timestamptz{Time: to, Valid: true},
	})
	if err != nil {
		return 0, err
	}
	s.store(ctx, key, total)
	return total, nil
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
