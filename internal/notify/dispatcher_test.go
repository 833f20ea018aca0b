package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	"github.com/ariefcatur/go-stock-alerts/internal/memstore"
	"github.com/ariefcatur/go-stock-alerts/internal/metrics"
	"go.uber.org/zap/zaptest"
)

type fakeChannel struct {
	name  string
	fail  int // fail this many attempts first
	panic bool
	calls atomic.Int32

	mu     sync.Mutex
	alerts []inventory.LowStockAlert
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Deliver(_ context.Context, a inventory.LowStockAlert) error {
	n := int(c.calls.Add(1))
	if c.panic {
		panic("boom")
	}
	if n <= c.fail {
		return errors.New("unavailable")
	}
	c.mu.Lock()
	c.alerts = append(c.alerts, a)
	c.mu.Unlock()
	return nil
}

func (c *fakeChannel) delivered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.alerts)
}

func testAlert() inventory.LowStockAlert {
	return inventory.LowStockAlert{
		ProductID: "p-1", Name: "Widget", SKU: "W-1",
		Quantity: 3, MinimumStockLevel: 10, Needed: 7,
		DetectedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDispatch_FailingChannelDoesNotBlockOthers(t *testing.T) {
	ok := &fakeChannel{name: "ok"}
	bad := &fakeChannel{name: "bad", fail: 100}
	d := NewDispatcher(zaptest.NewLogger(t), metrics.NewRegistry(), bad, ok)
	d.Backoff = time.Millisecond

	errs := d.Dispatch(context.Background(), testAlert())
	if ok.delivered() != 1 {
		t.Fatalf("healthy channel got %d alerts", ok.delivered())
	}
	if len(errs) != 1 {
		t.Fatalf("want 1 delivery error, got %d", len(errs))
	}
	if errs[0].Channel != "bad" || errs[0].Attempts != 3 || errs[0].ProductID != "p-1" {
		t.Fatalf("unexpected error: %+v", errs[0])
	}
	if got := bad.calls.Load(); got != 3 {
		t.Fatalf("bad channel attempted %d times, want 3", got)
	}
}

func TestDispatch_RetryRecovers(t *testing.T) {
	flaky := &fakeChannel{name: "flaky", fail: 1}
	d := NewDispatcher(zaptest.NewLogger(t), nil, flaky)
	d.Backoff = time.Millisecond

	if errs := d.Dispatch(context.Background(), testAlert()); len(errs) != 0 {
		t.Fatalf("expected recovery on retry, got %v", errs[0])
	}
	if flaky.delivered() != 1 || flaky.calls.Load() != 2 {
		t.Fatalf("delivered=%d calls=%d", flaky.delivered(), flaky.calls.Load())
	}
}

func TestDispatch_NoRetries(t *testing.T) {
	bad := &fakeChannel{name: "bad", fail: 100}
	d := NewDispatcher(zaptest.NewLogger(t), nil, bad)
	d.Retries = 0

	errs := d.Dispatch(context.Background(), testAlert())
	if len(errs) != 1 || errs[0].Attempts != 1 {
		t.Fatalf("want single attempt, got %+v", errs)
	}
}

func TestDispatch_PanicIsolated(t *testing.T) {
	ok := &fakeChannel{name: "ok"}
	p := &fakeChannel{name: "panicky", panic: true}
	d := NewDispatcher(zaptest.NewLogger(t), nil, p, ok)
	d.Retries = 0

	errs := d.Dispatch(context.Background(), testAlert())
	if ok.delivered() != 1 {
		t.Fatalf("panic in one channel stopped another")
	}
	if len(errs) != 1 || errs[0].Channel != "panicky" {
		t.Fatalf("unexpected errors %+v", errs)
	}
}

func TestDeliveryError_Unwrap(t *testing.T) {
	base := errors.New("smtp down")
	var err error = &DeliveryError{Channel: "email", ProductID: "p", Attempts: 2, Err: base}
	if !errors.Is(err, base) {
		t.Fatalf("DeliveryError should unwrap to cause")
	}
}

func TestNotify_AsyncAndClose(t *testing.T) {
	ch := &fakeChannel{name: "ok"}
	d := NewDispatcher(zaptest.NewLogger(t), nil, ch)
	for i := 0; i < 5; i++ {
		d.Notify(testAlert())
	}
	d.Close()
	if ch.delivered() != 5 {
		t.Fatalf("delivered %d of 5 after Close", ch.delivered())
	}
}

func TestService_WriteSucceedsWhenEveryChannelFails(t *testing.T) {
	bad := &fakeChannel{name: "bad", fail: 100}
	d := NewDispatcher(zaptest.NewLogger(t), nil, bad)
	d.Retries = 0

	st := memstore.New()
	s := &inventory.Service{Products: st, Orders: st, Notifier: d, Log: zaptest.NewLogger(t)}
	qty := 2
	p, err := s.CreateProduct(context.Background(), inventory.ProductInput{Name: "W", SKU: "W", Quantity: &qty})
	if err != nil {
		t.Fatalf("create failed because of notification: %v", err)
	}
	d.Close()
	if !p.IsLowStock {
		t.Fatalf("product should be low")
	}
	if bad.calls.Load() != 1 {
		t.Fatalf("channel should have been tried once, got %d", bad.calls.Load())
	}
}

func TestChannels(t *testing.T) {
	d := NewDispatcher(zaptest.NewLogger(t), nil, &fakeChannel{name: "a"}, &fakeChannel{name: "b"})
	got := d.Channels()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("channels = %v", got)
	}
}

func TestNotify_AfterCloseIsDropped(t *testing.T) {
	ch := &fakeChannel{name: "ok"}
	d := NewDispatcher(zaptest.NewLogger(t), nil, ch)
	d.Close()
	d.Notify(testAlert())
	d.Close()
	if n := ch.calls.Load(); n != 0 {
		t.Fatalf("closed dispatcher delivered %d alerts", n)
	}
}

func TestNotify_RacingClose(t *testing.T) {
	ch := &fakeChannel{name: "ok"}
	d := NewDispatcher(zaptest.NewLogger(t), nil, ch)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Notify(testAlert())
		}()
	}
	d.Close()
	wg.Wait()
	d.Close()
	if got := ch.delivered(); got > 50 {
		t.Fatalf("delivered %d", got)
	}
}
