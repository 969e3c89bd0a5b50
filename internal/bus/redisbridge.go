package bus

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisChannelPrefix = "cafe:events:"

// RedisBridge mirrors bus events onto Redis pub/sub so displays running in
// other processes observe the same fan-out. It is a mirror, not a delivery
// guarantee: Redis pub/sub is itself at-most-once to connected clients.
type RedisBridge struct {
	client *redis.Client
	bus    *Bus
	logger *zap.Logger
	subs   []*Subscriber
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewRedisBridge(client *redis.Client, b *Bus, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{
		client: client,
		bus:    b,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start subscribes to every channel and forwards events until Stop.
func (r *RedisBridge) Start(ctx context.Context) {
	for _, channel := range []string{ChannelCashier, ChannelKitchen, ChannelPrinter} {
		sub := r.bus.Subscribe(channel)
		r.subs = append(r.subs, sub)

		r.wg.Add(1)
		go r.forward(ctx, channel, sub)
	}
}

func (r *RedisBridge) forward(ctx context.Context, channel string, sub *Subscriber) {
	defer r.wg.Done()

	for {
		select {
		case <-r.done:
			return
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				r.logger.Error("encoding event for redis", zap.String("event", event.Type), zap.Error(err))
				continue
			}
			if err := r.client.Publish(ctx, redisChannelPrefix+channel, payload).Err(); err != nil {
				r.logger.Warn("publishing event to redis",
					zap.String("channel", channel), zap.String("event", event.Type), zap.Error(err))
			}
		}
	}
}

func (r *RedisBridge) Stop() {
	close(r.done)
	for _, sub := range r.subs {
		sub.Close()
	}
	r.wg.Wait()
}
