// Package memstore keeps products and orders in process memory. It backs
// local runs without PostgreSQL and the unit tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
)

// Store is a thread-safe map store. Values are copied in and out.
type Store struct {
	mu       sync.RWMutex
	products map[string]inventory.Product
	orders   map[string]inventory.Order
}

func New() *Store {
	return &Store{
		products: make(map[string]inventory.Product),
		orders:   make(map[string]inventory.Order),
	}
}

func (s *Store) ListProducts(_ context.Context) ([]inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedProducts(func(inventory.Product) bool { return true }), nil
}

func (s *Store) ListLowStock(_ context.Context) ([]inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedProducts(func(p inventory.Product) bool { return p.IsLowStock }), nil
}

// newest first, id as tie-breaker so repeated reads are identical
func (s *Store) sortedProducts(keep func(inventory.Product) bool) []inventory.Product {
	out := make([]inventory.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) GetProduct(_ context.Context, id string) (inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return inventory.Product{}, fmt.Errorf("%w: product %s", inventory.ErrNotFound, id)
	}
	return p, nil
}

func (s *Store) InsertProduct(_ context.Context, p inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSKU(p.ID, p.SKU); err != nil {
		return err
	}
	s.products[p.ID] = p
	return nil
}

func (s *Store) UpdateProduct(_ context.Context, p inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return fmt.Errorf("%w: product %s", inventory.ErrNotFound, p.ID)
	}
	if err := s.checkSKU(p.ID, p.SKU); err != nil {
		return err
	}
	s.products[p.ID] = p
	return nil
}

func (s *Store) checkSKU(id, sku string) error {
	for _, other := range s.products {
		// exact match, like the unique column in postgres
		if other.ID != id && other.SKU == sku {
			return fmt.Errorf("%w: sku %q already exists", inventory.ErrValidation, sku)
		}
	}
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("%w: product %s", inventory.ErrNotFound, id)
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListOrders(_ context.Context) ([]inventory.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedOrders(func(inventory.Order) bool { return true }), nil
}

func (s *Store) ListOrdersByStaff(_ context.Context, staffID string) ([]inventory.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedOrders(func(o inventory.Order) bool { return o.CreatedBy == staffID }), nil
}

func (s *Store) sortedOrders(keep func(inventory.Order) bool) []inventory.Order {
	out := make([]inventory.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) GetOrder(_ context.Context, id string) (inventory.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return inventory.Order{}, fmt.Errorf("%w: order %s", inventory.ErrNotFound, id)
	}
	return copyOrder(o), nil
}

func (s *Store) InsertOrder(_ context.Context, o inventory.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = copyOrder(o)
	return nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, id string, status inventory.Status, at time.Time) (inventory.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return inventory.Order{}, fmt.Errorf("%w: order %s", inventory.ErrNotFound, id)
	}
	o.Status = status
	o.UpdatedAt = at
	s.orders[id] = o
	return copyOrder(o), nil
}

// items are immutable after creation; never share the backing array
func copyOrder(o inventory.Order) inventory.Order {
	o.Items = append([]inventory.OrderItem(nil), o.Items...)
	return o
}
