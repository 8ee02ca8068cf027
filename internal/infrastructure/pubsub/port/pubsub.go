package port

import "context"

// Publisher fans a payload out to every subscriber of a channel, across all
// service nodes. Delivery is at-most-once and best-effort; durable state
// lives in the persistent stores, not on the bus.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Close() error
}

// Subscriber receives payloads published on a channel. The returned channel
// is closed when ctx is canceled or the backend connection is lost.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
