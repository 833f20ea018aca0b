package inventory

import (
	"context"
	"time"
)

// ProductStore persists products. Implementations return errors wrapping
// ErrNotFound for unknown ids and ErrValidation for a duplicate SKU.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListLowStock(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	InsertProduct(ctx context.Context, p Product) error
	UpdateProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type OrderStore interface {
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByStaff(ctx context.Context, staffID string) ([]Order, error)
	GetOrder(ctx context.Context, id string) (Order, error)
	InsertOrder(ctx context.Context, o Order) error
	UpdateOrderStatus(ctx context.Context, id string, status Status, at time.Time) (Order, error)
}

// Notifier receives alerts after the mutation that produced them is durable.
// Notify must not block on delivery.
type Notifier interface {
	Notify(alert LowStockAlert)
}
