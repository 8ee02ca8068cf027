package adapter

import (
	"context"
	"sync"

	"github.com/jcnm/meeshy/internal/infrastructure/pubsub/port"
)

// MemoryPubSub is an in-process bus for tests and single-node deployments.
type MemoryPubSub struct {
	mu     sync.RWMutex
	subs   map[string][]chan []byte
	closed bool
}

func NewMemoryPubSub() *MemoryPubSub {
	return &MemoryPubSub{subs: make(map[string][]chan []byte)}
}

var (
	_ port.Publisher  = (*MemoryPubSub)(nil)
	_ port.Subscriber = (*MemoryPubSub)(nil)
)

func (p *MemoryPubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ch := range p.subs[channel] {
		select {
		case ch <- payload:
		default:
			// Slow subscriber: drop rather than block the publisher.
		}
	}
	return nil
}

func (p *MemoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, 64)
	p.mu.Lock()
	p.subs[channel] = append(p.subs[channel], ch)
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		defer p.mu.Unlock()
		list := p.subs[channel]
		for i, c := range list {
			if c == ch {
				p.subs[channel] = append(list[:i], list[i+1:]...)
				close(ch)
				break
			}
		}
	}()
	return ch, nil
}

func (p *MemoryPubSub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	for _, list := range p.subs {
		for _, ch := range list {
			close(ch)
		}
	}
	p.subs = make(map[string][]chan []byte)
	return nil
}
