// Package store holds the authoritative catalog, cart and payment-amount
// state for one POS terminal. All mutation flows through the named
// operations below; reads go through the projections in projections.go.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/cashtill/tillgate/internal/domain"
)

// Event topics published on the bus after state changes.
const (
	TopicCartUpdated      = "cart.updated"
	TopicCatalogLoaded    = "catalog.loaded"
	TopicCategoriesLoaded = "categories.loaded"
)

// Catalog is the remote collaborator the store fetches from.
type Catalog interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
	FetchAllProducts(ctx context.Context) ([]domain.Product, error)
	FetchProductsByCategory(ctx context.Context, categoryID domain.ID) ([]domain.Product, error)
}

// CartStore is the durable key-value persistence collaborator. LoadCart
// returns nil lines (not an error) when no cart was ever saved.
type CartStore interface {
	SaveCart(lines []domain.CartLine) error
	LoadCart() ([]domain.CartLine, error)
}

// Store is the single source of truth for products, categories, cart
// contents, the scalar payment amount and the loading flag.
//
// Invariant, for every product in the full list after any cart mutation:
//
//	AvailableStock = InitialStock - sum of cart quantities for the product
type Store struct {
	mu         sync.RWMutex
	products   []domain.Product // full list
	displayed  []domain.Product // derived, possibly filtered view
	categories []domain.Category
	cart       []domain.CartLine
	amount     float64
	loading    bool
	filter     domain.ID
	fetchGen   uint64 // issue counter; stale fetch completions are discarded
	lastSync   time.Time

	catalog Catalog
	carts   CartStore
	bus     EventBus.Bus
	pool    *ants.Pool
}

// New builds a store. bus and pool may be nil: events are then skipped and
// persistence runs synchronously.
func New(catalog Catalog, carts CartStore, bus EventBus.Bus, pool *ants.Pool) *Store {
	return &Store{catalog: catalog, carts: carts, bus: bus, pool: pool}
}

// SetAmount sets the scalar payment amount tracked independently of the
// cart. No validation, any numeric input is accepted.
func (s *Store) SetAmount(v float64) {
	s.mu.Lock()
	s.amount = v
	s.mu.Unlock()
}

// ClearAmount zeroes the payment amount.
func (s *Store) ClearAmount() {
	s.SetAmount(0)
}

// LoadCart replaces the cart wholesale from durable storage. No-op when
// nothing was ever saved. Reconciliation is not run here; the next full
// catalog fetch re-derives available stock against the loaded cart.
func (s *Store) LoadCart() {
	lines, err := s.carts.LoadCart()
	if err != nil {
		zap.S().Warnf("cart restore failed: %v", err)
		return
	}
	if lines == nil {
		return
	}
	s.mu.Lock()
	s.cart = lines
	s.mu.Unlock()
	zap.S().Infof("cart restored, %d lines", len(lines))
}

// AddItem puts one unit of p into the cart: an existing line is incremented,
// otherwise a new line snapshots name and price at quantity 1. Available
// stock drops by one in the full and displayed lists.
func (s *Store) AddItem(p domain.Product) {
	s.mu.Lock()
	if i := s.lineIndex(p.ID); i >= 0 {
		s.cart[i].Qty++
	} else {
		s.cart = append(s.cart, domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Qty:       1,
		})
	}
	s.adjustStockLocked(p.ID, -1)
	s.mu.Unlock()
	s.persist("add")
}

// UpdateQuantity adjusts a line's quantity by a signed delta and available
// stock by the negated delta. A resulting quantity <= 0 removes the line;
// the stock restore for the removal was already applied through the delta.
// Unknown product IDs are ignored.
func (s *Store) UpdateQuantity(productID domain.ID, delta int) {
	s.mu.Lock()
	i := s.lineIndex(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.cart[i].Qty += delta
	s.adjustStockLocked(productID, -delta)
	if s.cart[i].Qty <= 0 {
		s.cart = append(s.cart[:i], s.cart[i+1:]...)
	}
	s.mu.Unlock()
	s.persist("update")
}

// RemoveItem drops the line for productID, restoring its full quantity to
// available stock in both lists.
func (s *Store) RemoveItem(productID domain.ID) {
	s.mu.Lock()
	i := s.lineIndex(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.adjustStockLocked(productID, s.cart[i].Qty)
	s.cart = append(s.cart[:i], s.cart[i+1:]...)
	s.mu.Unlock()
	s.persist("remove")
}

// ClearCart restores every line's quantity to available stock, empties the
// cart and resets the payment amount.
func (s *Store) ClearCart() {
	s.mu.Lock()
	for _, l := range s.cart {
		s.adjustStockLocked(l.ProductID, l.Qty)
	}
	s.cart = nil
	s.amount = 0
	s.mu.Unlock()
	s.persist("clear")
}

// FetchCategories replaces the category list from the backend. Any failure
// leaves an empty list and is logged, never returned.
func (s *Store) FetchCategories(ctx context.Context) {
	rows, err := s.catalog.FetchCategories(ctx)
	s.mu.Lock()
	if err != nil {
		zap.L().Error("category fetch failed", zap.Error(err))
		s.categories = []domain.Category{}
	} else {
		s.categories = rows
	}
	n := len(s.categories)
	s.mu.Unlock()
	s.publish(TopicCategoriesLoaded, n)
}

// FetchAllProducts replaces the full catalog from the backend, re-derives
// available stock from the session baseline minus current cart quantities,
// and recomputes the displayed list under the active filter. Failure empties
// both lists. The loading flag is cleared whenever the fetch settles, unless
// a newer fetch was issued meanwhile; stale completions are discarded so a
// late response never overwrites newer state.
func (s *Store) FetchAllProducts(ctx context.Context) {
	gen := s.beginFetch()
	start := time.Now()
	rows, err := s.catalog.FetchAllProducts(ctx)

	s.mu.Lock()
	if gen != s.fetchGen {
		s.mu.Unlock()
		return
	}
	s.loading = false
	if err != nil {
		zap.L().Error("catalog fetch failed", zap.Error(err))
		s.products = []domain.Product{}
		s.displayed = []domain.Product{}
		s.mu.Unlock()
		return
	}
	s.products = rows
	s.reconcileLocked()
	s.applyFilterLocked()
	s.lastSync = time.Now()
	n := len(rows)
	s.mu.Unlock()

	s.publish(TopicCatalogLoaded, n, time.Since(start))
}

// FetchProductsByCategory derives the displayed list for categoryID. With a
// loaded full list this is a pure in-memory filter (the "all" sentinel
// mirrors the full list) and no remote call happens. With an empty full list
// it falls back to a remote category-scoped fetch; that path carries no
// session stock baseline and is the documented lower-consistency path.
func (s *Store) FetchProductsByCategory(ctx context.Context, categoryID domain.ID) {
	s.mu.Lock()
	if len(s.products) > 0 {
		s.filter = categoryID
		s.applyFilterLocked()
		s.loading = false
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	gen := s.beginFetch()
	rows, err := s.catalog.FetchProductsByCategory(ctx, categoryID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.fetchGen {
		return
	}
	s.loading = false
	if err != nil {
		zap.L().Error("category-scoped fetch failed", zap.Error(err))
		s.displayed = []domain.Product{}
		return
	}
	s.filter = categoryID
	s.displayed = rows
}

// beginFetch marks a new in-flight fetch and returns its generation.
func (s *Store) beginFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchGen++
	s.loading = true
	return s.fetchGen
}

// lineIndex returns the cart index for productID or -1. Callers hold mu.
func (s *Store) lineIndex(productID domain.ID) int {
	for i := range s.cart {
		if s.cart[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// adjustStockLocked shifts available stock for productID by delta in both
// the full and the displayed list. Callers hold mu.
func (s *Store) adjustStockLocked(productID domain.ID, delta int) {
	for i := range s.products {
		if s.products[i].ID == productID {
			s.products[i].AvailableStock += delta
		}
	}
	for i := range s.displayed {
		if s.displayed[i].ID == productID {
			s.displayed[i].AvailableStock += delta
		}
	}
}

// reconcileLocked re-derives available stock for every product from the
// session baseline minus current cart quantities. Callers hold mu.
func (s *Store) reconcileLocked() {
	for i := range s.products {
		s.products[i].AvailableStock = s.products[i].InitialStock -
			domain.CartQuantity(s.cart, s.products[i].ID)
	}
}

// applyFilterLocked rebuilds the displayed list from the full list under the
// active filter. Callers hold mu.
func (s *Store) applyFilterLocked() {
	if domain.IsAllCategories(s.filter) {
		s.displayed = append([]domain.Product(nil), s.products...)
		return
	}
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.CategoryID == s.filter {
			out = append(out, p)
		}
	}
	s.displayed = out
}

// persist writes the cart to durable storage, fire-and-forget through the
// worker pool when one is wired, and publishes the cart event.
func (s *Store) persist(op string) {
	lines := s.Cart()
	save := func() {
		if err := s.carts.SaveCart(lines); err != nil {
			zap.S().Warnf("cart persist failed: %v", err)
		}
	}
	if s.pool != nil {
		if err := s.pool.Submit(save); err != nil {
			save()
		}
	} else {
		save()
	}
	s.publish(TopicCartUpdated, op, len(lines))
}

func (s *Store) publish(topic string, args ...interface{}) {
	if s.bus != nil {
		s.bus.Publish(topic, args...)
	}
}
