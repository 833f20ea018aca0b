// Package poller re-evaluates low stock on an interval for clients that do
// not receive server-side alerts for writes they did not make.
package poller

import (
	"context"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	"github.com/ariefcatur/go-stock-alerts/internal/metrics"
	"go.uber.org/zap"
)

const DefaultInterval = 5 * time.Minute

type Source interface {
	ListProducts(ctx context.Context) ([]inventory.Product, error)
}

// Dispatcher is satisfied by *notify.Dispatcher.
type Dispatcher interface {
	Notify(alert inventory.LowStockAlert)
}

// Poller owns the previously observed low-stock set. It starts empty and
// lives as long as the Poller value.
type Poller struct {
	Source   Source
	Notify   Dispatcher
	Interval time.Duration
	Log      *zap.Logger
	Metrics  *metrics.Registry
	Now      func() time.Time

	prevLow map[string]struct{}
}

// Run polls once right away and then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Poll(ctx)
		}
	}
}

// Poll fetches the product set and alerts on every product that is low now
// but was not low at the previous successful poll. It returns the alerted
// products. On fetch failure the previous set is kept.
func (p *Poller) Poll(ctx context.Context) []inventory.Product {
	ps, err := p.Source.ListProducts(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.Log.Warn("poll products failed, keeping previous state", zap.Error(err))
		}
		p.count("error")
		return nil
	}
	p.count("ok")

	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now()
	}
	low := make(map[string]struct{})
	var fresh []inventory.Product
	for _, pr := range ps {
		if !inventory.IsLow(pr.Quantity, pr.MinimumStockLevel) {
			continue
		}
		low[pr.ID] = struct{}{}
		if _, seen := p.prevLow[pr.ID]; seen {
			continue
		}
		fresh = append(fresh, pr)
		if p.Notify != nil {
			p.Notify.Notify(inventory.NewLowStockAlert(pr, now))
		}
	}
	p.prevLow = low
	if p.Metrics != nil {
		p.Metrics.PollNewlyLow.Add(float64(len(fresh)))
	}
	if len(fresh) > 0 {
		p.Log.Info("poll found newly low products", zap.Int("count", len(fresh)), zap.Int("low_total", len(low)))
	}
	return fresh
}

func (p *Poller) count(result string) {
	if p.Metrics != nil {
		p.Metrics.PollsTotal.WithLabelValues(result).Inc()
	}
}
