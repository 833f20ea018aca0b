// Package notify delivers low-stock alerts through independent channels.
// A failing channel never blocks the others and never reaches the caller
// whose write produced the alert.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	"github.com/ariefcatur/go-stock-alerts/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Channel is one way of telling staff about an alert.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, alert inventory.LowStockAlert) error
}

// DeliveryError is a failed delivery on one channel after all attempts.
type DeliveryError struct {
	Channel   string
	ProductID string
	Attempts  int
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notify %s for product %s failed after %d attempt(s): %v", e.Channel, e.ProductID, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type Dispatcher struct {
	channels []Channel
	log      *zap.Logger
	metrics  *metrics.Registry

	Retries int           // extra attempts per channel
	Backoff time.Duration // wait between attempts
	Timeout time.Duration // per attempt

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, m *metrics.Registry, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		log:      log,
		metrics:  m,
		Retries:  2,
		Backoff:  200 * time.Millisecond,
		Timeout:  10 * time.Second,
	}
}

func (d *Dispatcher) Channels() []string {
	out := make([]string, 0, len(d.channels))
	for _, c := range d.channels {
		out = append(out, c.Name())
	}
	return out
}

// Notify dispatches in the background; the caller does not wait for delivery.
// Alerts raised after Close are logged and dropped.
func (d *Dispatcher) Notify(alert inventory.LowStockAlert) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("dispatcher closed, alert dropped", zap.String("product_id", alert.ProductID))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()
	go func() {
		defer d.wg.Done()
		d.Dispatch(context.Background(), alert)
	}()
}

// Close stops accepting alerts and waits for background dispatches started
// by Notify.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

// Dispatch runs every channel concurrently and returns the delivery errors,
// already logged. Callers that mutate state must ignore them.
func (d *Dispatcher) Dispatch(ctx context.Context, alert inventory.LowStockAlert) []*DeliveryError {
	start := time.Now()
	var (
		mu   sync.Mutex
		errs []*DeliveryError
		g    errgroup.Group
	)
	for _, ch := range d.channels {
		ch := ch
		g.Go(func() error {
			if derr := d.deliver(ctx, ch, alert); derr != nil {
				mu.Lock()
				errs = append(errs, derr)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if d.metrics != nil {
		d.metrics.DeliveryLatencySec.Observe(time.Since(start).Seconds())
	}
	return errs
}

func (d *Dispatcher) deliver(ctx context.Context, ch Channel, alert inventory.LowStockAlert) *DeliveryError {
	var err error
	attempts := 0
	for attempts <= d.Retries {
		attempts++
		err = d.attempt(ctx, ch, alert)
		if err == nil {
			d.count(ch.Name(), "ok")
			d.log.Debug("alert delivered",
				zap.String("channel", ch.Name()),
				zap.String("product_id", alert.ProductID),
				zap.Int("attempts", attempts))
			return nil
		}
		if attempts > d.Retries || ctx.Err() != nil {
			break
		}
		select {
		case <-time.After(d.Backoff):
		case <-ctx.Done():
		}
	}
	derr := &DeliveryError{Channel: ch.Name(), ProductID: alert.ProductID, Attempts: attempts, Err: err}
	d.count(ch.Name(), "error")
	d.log.Warn("alert delivery failed",
		zap.String("channel", ch.Name()),
		zap.String("product_id", alert.ProductID),
		zap.Int("attempts", attempts),
		zap.Error(err))
	return derr
}

func (d *Dispatcher) attempt(ctx context.Context, ch Channel, alert inventory.LowStockAlert) (err error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panic: %v", r)
		}
	}()
	return ch.Deliver(ctx, alert)
}

func (d *Dispatcher) count(channel, result string) {
	if d.metrics != nil {
		d.metrics.Deliveries.WithLabelValues(channel, result).Inc()
	}
}
