package pricing

import (
	"github.com/google/uuid"

	"github.com/kedai-dev/checkout-api/internal/voucher"
)

// Selection is the set of vouchers a shopper has chosen for an order.
//
// Membership is keyed by voucher ID and at most one voucher occupies a scope
// at a time: one SYSTEM voucher, one SHIPPING voucher, and one SHOP voucher
// per distinct shop. The set is unordered; Allocate does not depend on
// insertion order.
type Selection struct {
	vouchers map[uuid.UUID]voucher.Voucher
}

// NewSelection builds a selection from the given vouchers, applying the
// one-per-scope rule in input order.
func NewSelection(vouchers ...voucher.Voucher) *Selection {
	s := &Selection{vouchers: make(map[uuid.UUID]voucher.Voucher)}
	for _, v := range vouchers {
		s.Add(v)
	}
	return s
}

// Add inserts the voucher, replacing any previously selected voucher that
// occupies the same scope. Adding a voucher already in the set is a no-op.
func (s *Selection) Add(v voucher.Voucher) {
	if s.vouchers == nil {
		s.vouchers = make(map[uuid.UUID]voucher.Voucher)
	}
	for id, existing := range s.vouchers {
		if voucher.SameScope(existing, v) && id != v.ID {
			delete(s.vouchers, id)
		}
	}
	s.vouchers[v.ID] = v
}

// Remove drops the voucher with the given ID from the selection.
func (s *Selection) Remove(id uuid.UUID) {
	if s == nil || s.vouchers == nil {
		return
	}
	delete(s.vouchers, id)
}

// Has reports whether a voucher with the given ID is selected.
func (s *Selection) Has(id uuid.UUID) bool {
	if s == nil || s.vouchers == nil {
		return false
	}
	_, ok := s.vouchers[id]
	return ok
}

// Len returns the number of selected vouchers.
func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.vouchers)
}

// Vouchers returns the selected vouchers in unspecified order.
func (s *Selection) Vouchers() []voucher.Voucher {
	if s == nil || len(s.vouchers) == 0 {
		return nil
	}
	out := make([]voucher.Voucher, 0, len(s.vouchers))
	for _, v := range s.vouchers {
		out = append(out, v)
	}
	return out
}

// IDs returns the selected voucher identifiers in unspecified order.
func (s *Selection) IDs() []uuid.UUID {
	if s == nil || len(s.vouchers) == 0 {
		return nil
	}
	out := make([]uuid.UUID, 0, len(s.vouchers))
	for id := range s.vouchers {
		out = append(out, id)
	}
	return out
}
