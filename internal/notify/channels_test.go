package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/config"
	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	kafkax "github.com/ariefcatur/go-stock-alerts/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap/zaptest"
)

func TestEmailChannel_Message(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	c := NewEmailChannel("smtp.example.com:587", "", "", "alerts@example.com", []string{"ops@example.com", "lead@example.com"})
	c.Send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	if err := c.Deliver(context.Background(), testAlert()); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || len(gotTo) != 2 {
		t.Fatalf("addr=%q to=%v", gotAddr, gotTo)
	}
	for _, want := range []string{
		"Subject: Low stock alert: Widget",
		"SKU: W-1",
		"Current stock: 3",
		"Minimum stock: 10",
		"Needed quantity: 7",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Fatalf("message missing %q:\n%s", want, gotMsg)
		}
	}
}

func TestEmailChannel_Errors(t *testing.T) {
	c := &EmailChannel{Addr: "x:25"}
	if err := c.Deliver(context.Background(), testAlert()); err == nil {
		t.Fatalf("expected error without recipients")
	}

	c = &EmailChannel{Addr: "x:25", To: []string{"a@b"}, Send: func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("relay refused")
	}}
	if err := c.Deliver(context.Background(), testAlert()); err == nil || !strings.Contains(err.Error(), "relay refused") {
		t.Fatalf("want send error, got %v", err)
	}

	block := make(chan struct{})
	defer close(block)
	c.Send = func(string, smtp.Auth, string, []string, []byte) error { <-block; return nil }
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Deliver(ctx, testAlert()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
}

type staticTokens []string

func (s staticTokens) Tokens(context.Context) ([]string, error) { return s, nil }

func TestPushChannel_Sends(t *testing.T) {
	var got []expoMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method=%s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"status":"ok"},{"status":"ok"}]}`))
	}))
	defer srv.Close()

	c := NewPushChannel(srv.URL, staticTokens{"ExponentPushToken[a]", "ExponentPushToken[b]"})
	if err := c.Deliver(context.Background(), testAlert()); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("sent %d messages, want 2", len(got))
	}
	if got[0].Title != "Low Stock Alert" || got[0].Body != "Widget is running low (3 remaining)" {
		t.Fatalf("unexpected message %+v", got[0])
	}
	if got[1].Data["productId"] != "p-1" {
		t.Fatalf("data=%v", got[1].Data)
	}
}

func TestPushChannel_NoTokensIsNoop(t *testing.T) {
	c := NewPushChannel("http://127.0.0.1:1", staticTokens{})
	if err := c.Deliver(context.Background(), testAlert()); err != nil {
		t.Fatalf("no tokens should not error: %v", err)
	}
}

func TestPushChannel_Failures(t *testing.T) {
	status := http.StatusOK
	body := `{"data":[{"status":"ok"},{"status":"error","message":"DeviceNotRegistered"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewPushChannel(srv.URL, staticTokens{"a", "b"})
	err := c.Deliver(context.Background(), testAlert())
	if err == nil || !strings.Contains(err.Error(), "DeviceNotRegistered") {
		t.Fatalf("want ticket error, got %v", err)
	}

	status, body = http.StatusBadGateway, "upstream"
	if err := c.Deliver(context.Background(), testAlert()); err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("want status error, got %v", err)
	}
}

type fakeFeed struct{ got [][]byte }

func (f *fakeFeed) Publish(_ context.Context, b []byte) error {
	f.got = append(f.got, b)
	return nil
}

func TestToastChannel_PublishesAlertJSON(t *testing.T) {
	f := &fakeFeed{}
	c := &ToastChannel{Feed: f}
	if err := c.Deliver(context.Background(), testAlert()); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(f.got) != 1 {
		t.Fatalf("published %d", len(f.got))
	}
	var a inventory.LowStockAlert
	if err := json.Unmarshal(f.got[0], &a); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if a.ProductID != "p-1" || a.Needed != 7 {
		t.Fatalf("payload=%+v", a)
	}
}

func TestLogChannel(t *testing.T) {
	c := &LogChannel{Log: zaptest.NewLogger(t)}
	if err := c.Deliver(context.Background(), testAlert()); err != nil {
		t.Fatalf("log channel: %v", err)
	}
}

func TestDirectChannels(t *testing.T) {
	cfg := config.Config{ExpoPushURL: "http://push"}
	got := DirectChannels(cfg, staticTokens{})
	if len(got) != 1 || got[0].Name() != "push" {
		t.Fatalf("without smtp: %v", got)
	}
	cfg.SMTPAddr = "mail:25"
	got = DirectChannels(cfg, staticTokens{})
	if len(got) != 2 || got[0].Name() != "email" {
		t.Fatalf("with smtp: %v", got)
	}
}

func envelopeMessage(t *testing.T, eventType string, a inventory.LowStockAlert) kafkago.Message {
	t.Helper()
	env := inventory.Envelope{
		EventID:      "ev-1",
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   a.DetectedAt,
		Producer:     "test",
		Payload:      kafkax.MustMarshal(a),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestRelay_DispatchesLowStockEvents(t *testing.T) {
	ch := &fakeChannel{name: "rec"}
	r := &Relay{
		Dispatcher: NewDispatcher(zaptest.NewLogger(t), nil, ch),
		Service:    "relay-test",
		Log:        zaptest.NewLogger(t),
	}
	ctx := context.Background()

	if err := r.HandleLowStock(ctx, envelopeMessage(t, inventory.EventLowStockDetected, testAlert())); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := r.HandleLowStock(ctx, envelopeMessage(t, "SomethingElse", testAlert())); err != nil {
		t.Fatalf("handle other: %v", err)
	}
	if err := r.HandleLowStock(ctx, kafkago.Message{Value: []byte("not json")}); err != nil {
		t.Fatalf("garbage must be dropped, got %v", err)
	}

	if ch.delivered() != 1 {
		t.Fatalf("delivered %d, want 1", ch.delivered())
	}
	if got := ch.alerts[0]; got.ProductID != "p-1" || got.Quantity != 3 {
		t.Fatalf("relayed alert %+v", got)
	}
}
