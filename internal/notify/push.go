package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
)

const ExpoPushURL = "https://exp.host/--/api/v2/push/send"

// TokenSource lists the device tokens an alert goes to.
type TokenSource interface {
	Tokens(ctx context.Context) ([]string, error)
}

// PushChannel sends mobile push notifications through the Expo push API.
type PushChannel struct {
	URL    string
	Tokens TokenSource
	Client *http.Client
}

func NewPushChannel(url string, tokens TokenSource) *PushChannel {
	if url == "" {
		url = ExpoPushURL
	}
	return &PushChannel{URL: url, Tokens: tokens, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (c *PushChannel) Name() string { return "push" }

type expoMessage struct {
	To       string            `json:"to"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Sound    string            `json:"sound,omitempty"`
	Priority string            `json:"priority,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

type expoResponse struct {
	Data []struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

func (c *PushChannel) Deliver(ctx context.Context, a inventory.LowStockAlert) error {
	tokens, err := c.Tokens.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("push: load tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}
	msgs := make([]expoMessage, 0, len(tokens))
	for _, t := range tokens {
		msgs = append(msgs, expoMessage{
			To:       t,
			Title:    "Low Stock Alert",
			Body:     fmt.Sprintf("%s is running low (%d remaining)", a.Name, a.Quantity),
			Sound:    "default",
			Priority: "high",
			Data:     map[string]string{"productId": a.ProductID, "sku": a.SKU},
		})
	}
	body, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push: status %d: %s", resp.StatusCode, bytes.TrimSpace(b))
	}

	var out expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("push: decode response: %w", err)
	}
	failed := 0
	var first string
	for _, d := range out.Data {
		if d.Status == "error" {
			if failed == 0 {
				first = d.Message
			}
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("push: %d of %d tickets failed: %s", failed, len(msgs), first)
	}
	return nil
}
