package ws

import (
	"context"
	"sync"
)

type Target int

const (
	TargetGroup Target = iota
	TargetUser
	TargetAll
)

// Envelope is one fan-out instruction. With Subscribe or Unsubscribe set it carries
// no event and adds or removes every session of UserID to or from Group instead.
type Envelope struct {
	Target      Target  `json:"target"`
	Group       string  `json:"group,omitempty"`
	UserID      uint    `json:"userId,omitempty"`
	Subscribe   bool    `json:"subscribe,omitempty"`
	Unsubscribe bool    `json:"unsubscribe,omitempty"`
	Event       WsEvent `json:"event"`
}

// Bus carries envelopes to every hub instance, including the publishing one.
type Bus interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(handler func(Envelope)) error
	Close() error
}

// LocalBus delivers synchronously inside the process.
type LocalBus struct {
	mu       sync.RWMutex
	handlers []func(Envelope)
}

func NewLocalBus() *LocalBus { return &LocalBus{} }

func (b *LocalBus) Publish(_ context.Context, env Envelope) error {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()
	for _, h := range handlers {
		h(env)
	}
	return nil
}

func (b *LocalBus) Subscribe(handler func(Envelope)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
	return nil
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = nil
	return nil
}
