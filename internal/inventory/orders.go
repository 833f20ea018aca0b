package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderItemInput struct {
	ProductID string `json:"product" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type OrderInput struct {
	Items     []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	CreatedBy string           `json:"createdBy" validate:"required"`
}

// CreateOrder validates every line against the stock as it was before this
// order, persists the order as Pending, and then decrements each line. Each
// decrement runs the low-stock check on its own.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (Order, error) {
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	for i := range in.Items {
		in.Items[i].ProductID = strings.TrimSpace(in.Items[i].ProductID)
	}
	if err := validateStruct(in); err != nil {
		s.rejected("validation")
		return Order{}, err
	}

	ids := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.ProductID)
	}
	unlock := s.locks.lock(ids...)
	defer unlock()

	// load + sum per product; a product listed twice is checked against its combined quantity
	current := make(map[string]Product, len(ids))
	requested := make(map[string]int, len(ids))
	for _, it := range in.Items {
		if _, ok := current[it.ProductID]; !ok {
			p, err := s.primary().GetProduct(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					s.rejected("not_found")
					return Order{}, notFoundf("product %s", it.ProductID)
				}
				return Order{}, err
			}
			current[it.ProductID] = p
		}
		requested[it.ProductID] += it.Quantity
	}
	for _, it := range in.Items {
		p := current[it.ProductID]
		if p.Quantity < requested[it.ProductID] {
			s.rejected("insufficient_stock")
			return Order{}, &StockError{
				ProductID: p.ID,
				Name:      p.Name,
				Required:  requested[it.ProductID],
				Available: p.Quantity,
			}
		}
	}

	now := s.now()
	o := Order{
		ID:        uuid.NewString(),
		Items:     make([]OrderItem, 0, len(in.Items)),
		Status:    StatusPending,
		CreatedBy: in.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, it := range in.Items {
		o.Items = append(o.Items, OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
		o.TotalItems += it.Quantity
	}
	if err := s.Orders.InsertOrder(ctx, o); err != nil {
		return Order{}, err
	}

	// no transaction spans the order and the decrements below
	for _, it := range o.Items {
		p := current[it.ProductID]
		p.Quantity -= it.Quantity
		tr := Recompute(&p, now)
		p.UpdatedAt = now
		if err := s.Products.UpdateProduct(ctx, p); err != nil {
			s.logger().Error("decrement stock failed",
				zap.String("order_id", o.ID),
				zap.String("product_id", p.ID),
				zap.Error(err))
			return o, fmt.Errorf("order %s: decrement stock for %s: %w", o.ID, p.ID, err)
		}
		current[it.ProductID] = p
		s.afterCommit(p, tr)
	}

	if s.Metrics != nil {
		s.Metrics.OrdersCreated.Inc()
	}
	return o, nil
}

// UpdateOrderStatus sets any valid status. Stock is never re-adjusted.
func (s *Service) UpdateOrderStatus(ctx context.Context, id, status string) (Order, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return Order{}, err
	}
	return s.Orders.UpdateOrderStatus(ctx, id, st, s.now())
}
