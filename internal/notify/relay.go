package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ariefcatur/go-stock-alerts/internal/config"
	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	kafkax "github.com/ariefcatur/go-stock-alerts/internal/kafka"
	"github.com/ariefcatur/go-stock-alerts/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DirectChannels are the channels that reach staff outside the app: email
// (when SMTP is configured) and mobile push.
func DirectChannels(cfg config.Config, tokens TokenSource) []Channel {
	var out []Channel
	if cfg.SMTPAddr != "" {
		out = append(out, NewEmailChannel(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword, cfg.AlertFrom, cfg.AlertTo))
	}
	out = append(out, NewPushChannel(cfg.ExpoPushURL, tokens))
	return out
}

// Relay turns LowStockDetected events back into deliveries.
type Relay struct {
	Dispatcher *Dispatcher
	Redis      *redis.Client // dedup; nil disables
	Service    string
	Log        *zap.Logger
}

// HandleLowStock is installed as the consumer handler. Delivery failures are
// logged by the dispatcher and the offset is still committed.
func (r *Relay) HandleLowStock(ctx context.Context, m kafkago.Message) error {
	var env inventory.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		r.Log.Warn("drop undecodable event", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != inventory.EventLowStockDetected {
		return nil
	}

	if r.Redis != nil {
		key := fmt.Sprintf(redisx.KeyDedup, r.Service, env.EventID)
		first, err := redisx.FirstSeen(ctx, r.Redis, key, redisx.TTLDedup)
		if err != nil {
			r.Log.Warn("dedup check failed, delivering anyway", zap.String("event_id", env.EventID), zap.Error(err))
		} else if !first {
			return nil
		}
	}

	alert, err := kafkax.UnwrapPayload[inventory.LowStockPayload](env.Payload)
	if err != nil {
		r.Log.Warn("drop event with bad payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	errs := r.Dispatcher.Dispatch(ctx, alert)
	r.Log.Info("low stock event relayed",
		zap.String("event_id", env.EventID),
		zap.String("product_id", alert.ProductID),
		zap.Int("failed_channels", len(errs)))
	return nil
}
