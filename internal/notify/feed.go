package notify

import (
	"context"
	"encoding/json"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	kafkax "github.com/ariefcatur/go-stock-alerts/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher is the pub/sub side of the in-app alert feed.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// ToastChannel pushes the alert to connected web clients as an in-app toast.
type ToastChannel struct{ Feed Publisher }

func (c *ToastChannel) Name() string { return "toast" }

func (c *ToastChannel) Deliver(ctx context.Context, a inventory.LowStockAlert) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.Feed.Publish(ctx, b)
}

// KafkaChannel emits a LowStockDetected event for the alert relay.
type KafkaChannel struct {
	Producer *kafkax.Producer
	Service  string
}

func (c *KafkaChannel) Name() string { return "kafka" }

func (c *KafkaChannel) Deliver(ctx context.Context, a inventory.LowStockAlert) error {
	ev := inventory.Envelope{
		EventID:       uuid.NewString(),
		EventType:     inventory.EventLowStockDetected,
		EventVersion:  1,
		OccurredAt:    a.DetectedAt,
		Producer:      c.Service,
		CorrelationID: a.ProductID,
		Payload:       kafkax.MustMarshal(a),
	}
	return c.Producer.Publish(ctx, inventory.PartitionKey(a.ProductID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(inventory.EventLowStockDetected)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// LogChannel writes the alert as a structured warning. The poller uses it as
// its client-side toast.
type LogChannel struct{ Log *zap.Logger }

func (c *LogChannel) Name() string { return "log" }

func (c *LogChannel) Deliver(_ context.Context, a inventory.LowStockAlert) error {
	c.Log.Warn("Low stock alert",
		zap.String("product_id", a.ProductID),
		zap.String("name", a.Name),
		zap.String("sku", a.SKU),
		zap.Int("quantity", a.Quantity),
		zap.Int("minimum_stock_level", a.MinimumStockLevel),
		zap.Int("needed_quantity", a.Needed))
	return nil
}
