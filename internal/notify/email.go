package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
)

type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel sends a plain-text stock alert over SMTP.
type EmailChannel struct {
	Addr string // host:port
	From string
	To   []string
	Auth smtp.Auth

	Send SendMailFunc // defaults to smtp.SendMail
}

func NewEmailChannel(addr, user, password, from string, to []string) *EmailChannel {
	var auth smtp.Auth
	if user != "" {
		host := addr
		if i := strings.LastIndex(addr, ":"); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &EmailChannel{Addr: addr, From: from, To: to, Auth: auth}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliver(ctx context.Context, a inventory.LowStockAlert) error {
	if len(c.To) == 0 {
		return fmt.Errorf("email: no recipients configured")
	}
	send := c.Send
	if send == nil {
		send = smtp.SendMail
	}
	msg := c.message(a)
	// smtp.SendMail has no context; run it aside and honour cancellation
	done := make(chan error, 1)
	go func() { done <- send(c.Addr, c.Auth, c.From, c.To, msg) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *EmailChannel) message(a inventory.LowStockAlert) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", c.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(c.To, ", "))
	fmt.Fprintf(&b, "Subject: Low stock alert: %s\r\n", a.Name)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "Product: %s\r\n", a.Name)
	fmt.Fprintf(&b, "SKU: %s\r\n", a.SKU)
	fmt.Fprintf(&b, "Current stock: %d\r\n", a.Quantity)
	fmt.Fprintf(&b, "Minimum stock: %d\r\n", a.MinimumStockLevel)
	fmt.Fprintf(&b, "Needed quantity: %d\r\n", a.Needed)
	return b.Bytes()
}
