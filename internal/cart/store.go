// Package cart implements the shopper's cart store: the single source of
// truth for the pending purchase selection, mirrored to durable storage
// after every mutation.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KyoTung/camera-store-client/internal/domain"
	"github.com/KyoTung/camera-store-client/internal/storage"
)

// Store owns the cart line sequence. One instance is constructed at
// application start and handed to every view that needs it; views read
// snapshots and call mutation methods, never the fields.
//
// Every mutation synchronously writes the full line sequence back to the
// "cart" storage key. A failed write is logged and in-memory state stands;
// the next mutation rewrites the whole blob anyway.
type Store struct {
	mu      sync.Mutex
	lines   domain.Cart
	storage storage.Store
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a cart store hydrated from storage. An absent or unparsable
// persisted cart yields an empty one; hydration never fails.
func New(ctx context.Context, st storage.Store, logger *slog.Logger) *Store {
	s := &Store{
		lines:   domain.Cart{},
		storage: st,
		logger:  logger,
		now:     time.Now,
	}

	raw, err := st.Get(ctx, storage.KeyCart)
	if err != nil {
		// First run or deleted key. Start empty.
		return s
	}

	var lines domain.Cart
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		logger.WarnContext(ctx, "discarding unparsable persisted cart",
			slog.String("error", err.Error()),
		)
		return s
	}
	// Stored carts predating the quantity floor may carry zero or
	// negative quantities; clamp them on the way in.
	for i := range lines {
		if lines[i].Quantity < 1 {
			lines[i].Quantity = 1
		}
	}
	if lines != nil {
		s.lines = lines
	}
	return s
}

// Add puts one unit of the product in the cart. If a line for the same
// catalog product already exists its quantity is incremented by one and the
// snapshotted name, price and image are left untouched; otherwise a new
// line is appended with quantity 1.
func (s *Store) Add(ctx context.Context, p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.lines.FindProduct(p.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, domain.CartLine{
			ID:        fmt.Sprintf("%s-%d", p.ID, s.now().UnixMilli()),
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  1,
			ImageURL:  p.ImageURL,
		})
	}

	s.persist(ctx)

	s.logger.InfoContext(ctx, "product added to cart",
		slog.String("product_id", p.ID),
		slog.Int("total_quantity", s.lines.TotalQuantity()),
	)
}

// Remove deletes the line with the given line id. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.lines.FindLine(lineID)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)

	s.persist(ctx)

	s.logger.InfoContext(ctx, "line removed from cart",
		slog.String("line_id", lineID),
	)
}

// UpdateQuantity sets the quantity of the line with the given line id,
// flooring at 1. Unknown ids are a no-op. Callers are expected to have
// parsed and rejected non-numeric input before calling.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.lines.FindLine(lineID)
	if i < 0 {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	s.lines[i].Quantity = quantity

	s.persist(ctx)
}

// Clear resets the cart to empty and persists the empty sequence. The
// storage key itself is kept; checkout deletes it separately on success.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = domain.Cart{}
	s.persist(ctx)

	s.logger.InfoContext(ctx, "cart cleared")
}

// Lines returns a copy of the current line sequence in insertion order.
func (s *Store) Lines() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(domain.Cart, len(s.lines))
	copy(out, s.lines)
	return out
}

// Subtotal returns the sum of unit price times quantity over all lines.
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Subtotal()
}

// TotalQuantity returns the sum of all line quantities.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.TotalQuantity()
}

// GrandTotal returns the subtotal after the fractional discount, plus the
// shipping fee. Pass zeros for the plain subtotal.
func (s *Store) GrandTotal(discountFraction, shippingFee float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.GrandTotal(discountFraction, shippingFee)
}

// persist writes the full line sequence to the "cart" key. Callers hold the
// mutex. Mutations are fire-and-forget; a failed write only logs.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.lines)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal cart", slog.String("error", err.Error()))
		return
	}
	if err := s.storage.Set(ctx, storage.KeyCart, string(data)); err != nil {
		s.logger.ErrorContext(ctx, "persist cart", slog.String("error", err.Error()))
	}
}
