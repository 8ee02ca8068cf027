package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"

	redis "github.com/redis/go-redis/v9"

	"github.com/jcnm/meeshy/internal/infrastructure/pubsub/port"
)

// RedisPubSub satisfies both port.Publisher and port.Subscriber over Redis
// pub/sub, carrying realtime events between service nodes.
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSubFromEnv constructs the adapter using the REDIS_URL env var.
func NewRedisPubSubFromEnv() (*RedisPubSub, error) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		return nil, errors.New("pubsub: REDIS_URL environment variable is not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("pubsub: parse url: %w", err)
	}
	return &RedisPubSub{client: redis.NewClient(opt)}, nil
}

var (
	_ port.Publisher  = (*RedisPubSub)(nil)
	_ port.Subscriber = (*RedisPubSub)(nil)
)

func (p *RedisPubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}

func (p *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	sub := p.client.Subscribe(ctx, channel)
	// Force the subscription handshake so a dead backend fails fast.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("pubsub: subscribe %s: %w", channel, err)
	}

	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (p *RedisPubSub) Close() error {
	return p.client.Close()
}
