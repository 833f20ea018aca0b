package inventory

import (
	"context"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/metrics"
	"go.uber.org/zap"
)

// Service applies product and order mutations. Every write recomputes the
// low-stock flag before persisting and hands alerts to the Notifier only
// after the store accepted the write.
type Service struct {
	Products ProductStore
	Primary  ProductStore // uncached reads under the product lock; defaults to Products
	Orders   OrderStore
	Notifier Notifier // nil disables alerts
	Metrics  *metrics.Registry
	Log      *zap.Logger
	Now      func() time.Time

	locks keyLocks
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// primary is where a writer reads the state it is about to overwrite.
func (s *Service) primary() ProductStore {
	if s.Primary != nil {
		return s.Primary
	}
	return s.Products
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// afterCommit fires the alert for a persisted product whose flag went false->true.
func (s *Service) afterCommit(p Product, tr Transition) {
	if !tr.EnteredLow() {
		return
	}
	if s.Metrics != nil {
		s.Metrics.LowStockTransitions.Inc()
	}
	s.logger().Info("product entered low stock",
		zap.String("product_id", p.ID),
		zap.String("sku", p.SKU),
		zap.Int("quantity", p.Quantity),
		zap.Int("minimum_stock_level", p.MinimumStockLevel))
	if s.Notifier != nil {
		s.Notifier.Notify(NewLowStockAlert(p, p.LastUpdated))
	}
}

func (s *Service) rejected(reason string) {
	if s.Metrics != nil {
		s.Metrics.OrdersRejected.WithLabelValues(reason).Inc()
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.Products.ListProducts(ctx)
}

func (s *Service) ListLowStock(ctx context.Context) ([]Product, error) {
	return s.Products.ListLowStock(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	return s.Products.GetProduct(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	return s.Orders.ListOrders(ctx)
}

func (s *Service) ListOrdersByStaff(ctx context.Context, staffID string) ([]Order, error) {
	return s.Orders.ListOrdersByStaff(ctx, staffID)
}

func (s *Service) GetOrder(ctx context.Context, id string) (Order, error) {
	return s.Orders.GetOrder(ctx, id)
}
