package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

var ErrAlreadySubscribed = errors.New("bus already has a subscriber")

// RedisBus fans envelopes out through a Redis pub/sub channel so every instance
// delivers to its own sessions.
type RedisBus struct {
	client  *redis.Client
	channel string
	log     *slog.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisBus(client *redis.Client, channel string, log *slog.Logger) *RedisBus {
	return &RedisBus{client: client, channel: channel, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}

// Subscribe returns once Redis confirmed the subscription; handler then runs on a
// single goroutine in publish order.
func (b *RedisBus) Subscribe(handler func(Envelope)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubsub != nil {
		return ErrAlreadySubscribed
	}

	ctx := context.Background()
	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.pubsub = ps
	b.done = make(chan struct{})

	go func(ch <-chan *redis.Message, done chan struct{}) {
		defer close(done)
		for msg := range ch {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("Dropping malformed envelope", "channel", msg.Channel, "error", err)
				continue
			}
			handler(env)
		}
	}(ps.Channel(), b.done)
	return nil
}

func (b *RedisBus) Close() error {
	b.mu.Lock()
	ps, done := b.pubsub, b.done
	b.pubsub = nil
	b.mu.Unlock()
	if ps == nil {
		return nil
	}
	err := ps.Close()
	<-done
	return err
}
