package redisx

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// PushTokens is the set of expo push tokens registered by mobile clients.
type PushTokens struct{ Redis *redis.Client }

func (t *PushTokens) Add(ctx context.Context, token string) error {
	return t.Redis.SAdd(ctx, KeyPushTokens, token).Err()
}

func (t *PushTokens) Remove(ctx context.Context, token string) error {
	return t.Redis.SRem(ctx, KeyPushTokens, token).Err()
}

func (t *PushTokens) Tokens(ctx context.Context) ([]string, error) {
	return t.Redis.SMembers(ctx, KeyPushTokens).Result()
}

// AlertFeed carries toast alerts between API replicas and browser streams.
type AlertFeed struct{ Redis *redis.Client }

func (f *AlertFeed) Publish(ctx context.Context, payload []byte) error {
	return f.Redis.Publish(ctx, ChannelLowStock, payload).Err()
}

// Subscribe delivers raw payloads until ctx is done. The returned channel is
// closed when the subscription ends.
func (f *AlertFeed) Subscribe(ctx context.Context) (<-chan []byte, error) {
	sub := f.Redis.Subscribe(ctx, ChannelLowStock)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	out := make(chan []byte)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(m.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
