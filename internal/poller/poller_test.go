package poller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	"github.com/ariefcatur/go-stock-alerts/internal/metrics"
	"go.uber.org/zap/zaptest"
)

type fakeSource struct {
	mu    sync.Mutex
	ps    []inventory.Product
	err   error
	calls int
}

func (f *fakeSource) set(ps []inventory.Product, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ps, f.err = ps, err
}

func (f *fakeSource) ListProducts(context.Context) ([]inventory.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ps, f.err
}

type collect struct {
	mu  sync.Mutex
	ids []string
}

func (c *collect) Notify(a inventory.LowStockAlert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, a.ProductID)
}

func (c *collect) reset() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.ids
	c.ids = nil
	return out
}

func prod(id string, qty, min int) inventory.Product {
	return inventory.Product{ID: id, Name: id, Quantity: qty, MinimumStockLevel: min}
}

func newPoller(t *testing.T, src Source, out *collect) *Poller {
	return &Poller{Source: src, Notify: out, Log: zaptest.NewLogger(t), Metrics: metrics.NewRegistry()}
}

func TestPoll_AlertsOnlyNewlyLow(t *testing.T) {
	src := &fakeSource{}
	out := &collect{}
	p := newPoller(t, src, out)
	ctx := context.Background()

	src.set([]inventory.Product{prod("a", 5, 10), prod("b", 50, 10)}, nil)
	if fresh := p.Poll(ctx); len(fresh) != 1 {
		t.Fatalf("first poll returned %v", fresh)
	}
	if got := out.reset(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("first poll alerts = %v", got)
	}

	// still low: no repeat
	p.Poll(ctx)
	if got := out.reset(); len(got) != 0 {
		t.Fatalf("repeat alerts %v", got)
	}

	// b goes low, a recovers
	src.set([]inventory.Product{prod("a", 20, 10), prod("b", 9, 10)}, nil)
	p.Poll(ctx)
	if got := out.reset(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("alerts = %v want [b]", got)
	}

	// a drops again after recovering
	src.set([]inventory.Product{prod("a", 1, 10), prod("b", 9, 10)}, nil)
	p.Poll(ctx)
	if got := out.reset(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("alerts = %v want [a]", got)
	}
}

func TestPoll_IgnoresStoredFlag(t *testing.T) {
	src := &fakeSource{}
	out := &collect{}
	p := newPoller(t, src, out)

	stale := prod("a", 5, 10)
	stale.IsLowStock = false
	src.set([]inventory.Product{stale}, nil)
	p.Poll(context.Background())
	if got := out.reset(); len(got) != 1 {
		t.Fatalf("poller must recompute low stock, got %v", got)
	}
}

func TestPoll_FetchErrorKeepsPreviousSet(t *testing.T) {
	src := &fakeSource{}
	out := &collect{}
	p := newPoller(t, src, out)
	ctx := context.Background()

	src.set([]inventory.Product{prod("a", 5, 10)}, nil)
	p.Poll(ctx)
	out.reset()

	src.set(nil, errors.New("connection refused"))
	if fresh := p.Poll(ctx); fresh != nil {
		t.Fatalf("failed poll returned %v", fresh)
	}

	src.set([]inventory.Product{prod("a", 5, 10)}, nil)
	p.Poll(ctx)
	if got := out.reset(); len(got) != 0 {
		t.Fatalf("failure must not reset state, got %v", got)
	}
}

func TestPoll_EmptySet(t *testing.T) {
	src := &fakeSource{}
	out := &collect{}
	p := newPoller(t, src, out)
	ctx := context.Background()

	src.set([]inventory.Product{prod("a", 5, 10)}, nil)
	p.Poll(ctx)
	out.reset()

	src.set([]inventory.Product{}, nil)
	if fresh := p.Poll(ctx); len(fresh) != 0 {
		t.Fatalf("empty set alerted %v", fresh)
	}

	// a comes back low after being absent
	src.set([]inventory.Product{prod("a", 5, 10)}, nil)
	p.Poll(ctx)
	if got := out.reset(); len(got) != 1 {
		t.Fatalf("want realert after empty poll, got %v", got)
	}
}

func TestRun_PollsImmediatelyAndStops(t *testing.T) {
	src := &fakeSource{}
	src.set([]inventory.Product{prod("a", 1, 10)}, nil)
	out := &collect{}
	p := newPoller(t, src, out)
	p.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop after cancel")
	}

	src.mu.Lock()
	calls := src.calls
	src.mu.Unlock()
	if calls < 2 {
		t.Fatalf("expected several polls, got %d", calls)
	}
	if got := out.reset(); len(got) != 1 {
		t.Fatalf("alerted %d times for one persistent low product", len(got))
	}
}

func TestClient_ListProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode([]inventory.Product{prod("a", 1, 10)})
	}))
	defer srv.Close()

	ps, err := NewClient(srv.URL + "/").ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ps) != 1 || ps[0].ID != "a" {
		t.Fatalf("products = %+v", ps)
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer bad.Close()
	if _, err := NewClient(bad.URL).ListProducts(context.Background()); err == nil {
		t.Fatalf("expected error on 503")
	}
}
