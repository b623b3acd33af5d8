package store

import (
	"time"

	"github.com/cashtill/tillgate/internal/domain"
)

// Read-only projections. Slices are copied so callers never alias internal
// state.

// Products returns the full product list.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.products...)
}

// Displayed returns the derived, possibly category-filtered list.
func (s *Store) Displayed() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.displayed...)
}

// Categories returns the category list.
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...)
}

// Cart returns the current cart lines.
func (s *Store) Cart() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CartLine(nil), s.cart...)
}

// Product looks up a product in the full list by normalized ID.
func (s *Store) Product(id domain.ID) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Amount returns the scalar payment amount.
func (s *Store) Amount() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.amount
}

// Loading reports whether a catalog-affecting fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Filter returns the active category filter ("" when none).
func (s *Store) Filter() domain.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// CartCount returns the summed quantity across all cart lines.
func (s *Store) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, l := range s.cart {
		n += l.Qty
	}
	return n
}

// CartTotal returns the cart total from captured prices.
func (s *Store) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CartTotal(s.cart)
}

// LastSync returns when the full catalog was last loaded successfully.
func (s *Store) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}
