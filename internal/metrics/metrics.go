package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	LowStockTransitions prometheus.Counter
	OrdersCreated       prometheus.Counter
	OrdersRejected      *prometheus.CounterVec // by reason
	Deliveries          *prometheus.CounterVec // by channel, result
	DeliveryLatencySec  prometheus.Histogram
	PollsTotal          *prometheus.CounterVec // by result
	PollNewlyLow        prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	transitions := prometheus.NewCounter(prometheus.CounterOpts{Name: "inventory_low_stock_transitions_total"})
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "inventory_orders_created_total"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "inventory_orders_rejected_total"}, []string{"reason"})
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "notify_deliveries_total"}, []string{"channel", "result"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "notify_dispatch_seconds",
		Buckets: prometheus.DefBuckets,
	})
	polls := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "poller_polls_total"}, []string{"result"})
	newlyLow := prometheus.NewCounter(prometheus.CounterOpts{Name: "poller_newly_low_total"})

	r.MustRegister(transitions, created, rejected, deliveries, latency, polls, newlyLow)
	return &Registry{
		reg:                 r,
		LowStockTransitions: transitions,
		OrdersCreated:       created,
		OrdersRejected:      rejected,
		Deliveries:          deliveries,
		DeliveryLatencySec:  latency,
		PollsTotal:          polls,
		PollNewlyLow:        newlyLow,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
