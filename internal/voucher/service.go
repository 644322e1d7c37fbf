package voucher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/kedai-dev/checkout-api/internal/db/gen"
)

// ErrNotFound indicates no voucher exists for the requested code.
var ErrNotFound = errors.New("voucher not found")

// Querier captures the database methods required by the voucher service.
type Querier interface {
	GetVoucherByCode(ctx context.Context, code string) (dbgen.Voucher, error)
	ListActiveVouchers(ctx context.Context) ([]dbgen.Voucher, error)
	ListVouchersByIDs(ctx context.Context, ids []pgtype.UUID) ([]dbgen.Voucher, error)
	RecordVoucherUsage(ctx context.Context, arg dbgen.RecordVoucherUsageParams) (int64, error)
}

// PreviewResult describes the outcome of evaluating a voucher without mutating state.
type PreviewResult struct {
	Code        string `json:"code"`
	ScopeAmount int64  `json:"scopeAmount"`
	Discount    int64  `json:"discount"`
}

// Service exposes the voucher catalog and settlement behaviour.
type Service struct {
	Q     Querier
	Cache *Cache
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GetByCode loads a voucher by its case-normalized code, consulting the
// cache first.
func (s *Service) GetByCode(ctx context.Context, code string) (Voucher, error) {
	if s == nil || s.Q == nil {
		return Voucher{}, errors.New("voucher service not configured")
	}
	normalized := NormalizeCode(code)
	if normalized == "" {
		return Voucher{}, fmt.Errorf("code is required: %w", ErrNotFound)
	}
	cacheKey := cacheKeyCodePrefix + normalized
	var cached Voucher
	if ok, err := s.Cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	row, err := s.Q.GetVoucherByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, ErrNotFound
		}
		return Voucher{}, err
	}
	v := FromModel(row)
	_ = s.Cache.SetJSON(ctx, cacheKey, v)
	return v, nil
}

// List returns the active voucher catalog.
func (s *Service) List(ctx context.Context) ([]Voucher, error) {
	if s == nil || s.Q == nil {
		return nil, errors.New("voucher service not configured")
	}
	var cached []Voucher
	if ok, err := s.Cache.GetJSON(ctx, cacheKeyActive, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.Q.ListActiveVouchers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Voucher, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	_ = s.Cache.SetJSON(ctx, cacheKeyActive, out)
	return out, nil
}

// ListByIDs resolves a persisted selection back into voucher records.
func (s *Service) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Voucher, error) {
	if s == nil || s.Q == nil {
		return nil, errors.New("voucher service not configured")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	pgIDs := make([]pgtype.UUID, 0, len(ids))
	for _, id := range ids {
		pgIDs = append(pgIDs, pgtype.UUID{Bytes: id, Valid: true})
	}
	rows, err := s.Q.ListVouchersByIDs(ctx, pgIDs)
	if err != nil {
		return nil, err
	}
	out := make([]Voucher, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

// Preview performs a dry-run evaluation for the given order snapshot. It
// never mutates the voucher's usage counters.
func (s *Service) Preview(ctx context.Context, code string, order OrderContext) (PreviewResult, error) {
	v, err := s.GetByCode(ctx, code)
	if err != nil {
		return PreviewResult{}, err
	}
	if err := v.Validate(); err != nil {
		return PreviewResult{}, err
	}
	if err := Check(v, order, s.now()); err != nil {
		return PreviewResult{}, err
	}
	scope := ScopeAmount(v, order)
	return PreviewResult{
		Code:        v.Code,
		ScopeAmount: scope,
		Discount:    ComputeDiscount(v, scope),
	}, nil
}

// Settle records voucher usage after an order has been placed. The usage row
// and the UsedCount increment are one atomic statement, so a retry after a
// transient failure either settles in full or replays as a no-op conflict.
// It is the only path that advances UsedCount.
func (s *Service) Settle(ctx context.Context, voucherID, orderID, userID uuid.UUID, code string, amount int64) error {
	if s == nil || s.Q == nil {
		return errors.New("voucher service not configured")
	}
	if voucherID == uuid.Nil || orderID == uuid.Nil || amount < 0 {
		return nil
	}
	params := dbgen.RecordVoucherUsageParams{
		VoucherID: pgtype.UUID{Bytes: voucherID, Valid: true},
		OrderID:   pgtype.UUID{Bytes: orderID, Valid: true},
		Amount:    amount,
	}
	if userID != uuid.Nil {
		params.UserID = pgtype.UUID{Bytes: userID, Valid: true}
	}
	rows, err := s.Q.RecordVoucherUsage(ctx, params)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Already settled for this order.
		return nil
	}
	_ = s.Cache.Invalidate(ctx, code)
	return nil
}

// FromModel converts the generated sqlc model into the domain voucher.
func FromModel(m dbgen.Voucher) Voucher {
	v := Voucher{
		Code:          m.Code,
		Type:          Type(m.Type),
		DiscountType:  DiscountType(m.DiscountType),
		DiscountValue: m.DiscountValue,
		UsedCount:     m.UsedCount,
		Active:        m.Active,
	}
	if m.ID.Valid {
		v.ID = uuid.UUID(m.ID.Bytes)
	}
	if m.MaxDiscountAmount.Valid {
		amount := m.MaxDiscountAmount.Int64
		v.MaxDiscountAmount = &amount
	}
	if m.MinOrderValue.Valid {
		amount := m.MinOrderValue.Int64
		v.MinOrderValue = &amount
	}
	if m.UsageLimit.Valid {
		limit := m.UsageLimit.Int32
		v.UsageLimit = &limit
	}
	if m.StartDate.Valid {
		start := m.StartDate.Time
		v.StartDate = &start
	}
	if m.EndDate.Valid {
		end := m.EndDate.Time
		v.EndDate = &end
	}
	if m.ShopID.Valid {
		shopID := uuid.UUID(m.ShopID.Bytes)
		v.ShopID = &shopID
	}
	return v
}
