package cart

import (
	"sync"

	"feedshop-gateway/internal/entity"
)

// Store accumulates line items per session, in process memory only.
// Carts deliberately do not survive a restart; everything durable
// about an order lives upstream once checkout succeeds.
type Store struct {
	mu    sync.Mutex
	carts map[string][]entity.CartItem
}

func NewStore() *Store {
	return &Store{carts: make(map[string][]entity.CartItem)}
}

// Add appends a line for a new product or bumps the quantity of an
// existing one. The returned slice is a copy in insertion order.
func (s *Store) Add(sessionID string, product entity.Product) []entity.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[sessionID]
	for i := range items {
		if items[i].ID == product.ID {
			items[i].Quantity++
			s.carts[sessionID] = items
			return copyItems(items)
		}
	}

	items = append(items, entity.CartItem{Product: product, Quantity: 1})
	s.carts[sessionID] = items
	return copyItems(items)
}

// Items returns the current line items in insertion order.
func (s *Store) Items(sessionID string) []entity.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.carts[sessionID])
}

// Clear drops the session's cart after a successful checkout.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

// Subtotal recomputes Σ(price × quantity) from the items themselves;
// it is never cached separately from its source.
func Subtotal(items []entity.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// Count is the total quantity across all lines.
func Count(items []entity.CartItem) int {
	var n int
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

func copyItems(items []entity.CartItem) []entity.CartItem {
	out := make([]entity.CartItem, len(items))
	copy(out, items)
	return out
}
