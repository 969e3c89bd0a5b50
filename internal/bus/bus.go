// Package bus is the in-process event fan-out: viewers subscribe to named
// channels and receive state-change events at most once. Delivery is
// fire-and-forget; nothing is persisted, and a subscriber that connects
// late must do a full-state fetch instead of expecting replay.
package bus

import (
	"sync"

	"go.uber.org/zap"

	"barista/internal/domain"
)

const (
	ChannelCashier = "cashier"
	ChannelKitchen = "kitchen"
	ChannelPrinter = "printer"
)

const (
	EventOrderNew      = "order:new"
	EventOrderUpdate   = "order:update"
	EventKOTUpdate     = "kot:update"
	EventPrinterUpdate = "printer:update"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// KOTPayload bundles the order with its current print status for kitchen
// displays.
type KOTPayload struct {
	Order       *domain.Order `json:"order"`
	PrintStatus string        `json:"printStatus"`
}

type PrinterPayload struct {
	OrderID uint                 `json:"orderId"`
	Status  string               `json:"status"`
	Health  domain.PrinterHealth `json:"health"`
}

// Publisher is the outbound side used by services; tests substitute a
// recording implementation.
type Publisher interface {
	Publish(channel string, event Event)
}

const subscriberBuffer = 64

type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscriber]struct{}
	logger *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[string]map[*Subscriber]struct{}),
		logger: logger,
	}
}

type Subscriber struct {
	bus     *Bus
	channel string
	events  chan Event
	once    sync.Once
}

func (b *Bus) Subscribe(channel string) *Subscriber {
	sub := &Subscriber{
		bus:     b,
		channel: channel,
		events:  make(chan Event, subscriberBuffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*Subscriber]struct{})
	}
	b.subs[channel][sub] = struct{}{}
	return sub
}

// Publish delivers the event to every current subscriber of the channel.
// It never blocks: a subscriber whose buffer is full loses the event.
func (b *Bus) Publish(channel string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[channel] {
		select {
		case sub.events <- event:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				zap.String("channel", channel), zap.String("event", event.Type))
		}
	}
}

func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Close detaches the subscriber; safe to call concurrently with Publish and
// more than once.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.channel], s)
		s.bus.mu.Unlock()
		close(s.events)
	})
}

// NopPublisher discards everything; used where fan-out is not wired.
type NopPublisher struct{}

func (NopPublisher) Publish(string, Event) {}
