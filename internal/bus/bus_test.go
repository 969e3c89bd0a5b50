package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublish_FansOutToAllSubscribers(t *testing.T) {
	b := New(zap.NewNop())

	first := b.Subscribe(ChannelCashier)
	second := b.Subscribe(ChannelCashier)
	defer first.Close()
	defer second.Close()

	b.Publish(ChannelCashier, Event{Type: EventOrderNew, Payload: "o1"})

	for _, sub := range []*Subscriber{first, second} {
		select {
		case event := <-sub.Events():
			assert.Equal(t, EventOrderNew, event.Type)
			assert.Equal(t, "o1", event.Payload)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestPublish_ChannelsAreIsolated(t *testing.T) {
	b := New(zap.NewNop())

	kitchen := b.Subscribe(ChannelKitchen)
	defer kitchen.Close()

	b.Publish(ChannelCashier, Event{Type: EventOrderUpdate})

	select {
	case event := <-kitchen.Events():
		t.Fatalf("kitchen received cashier event %s", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_DropsWhenSubscriberBufferFull(t *testing.T) {
	b := New(zap.NewNop())

	sub := b.Subscribe(ChannelPrinter)
	defer sub.Close()

	// Publish must never block, even when nobody drains the channel.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			b.Publish(ChannelPrinter, Event{Type: EventPrinterUpdate, Payload: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Len(t, sub.events, subscriberBuffer)
}

func TestSubscriber_Close_StopsDelivery(t *testing.T) {
	b := New(zap.NewNop())

	sub := b.Subscribe(ChannelCashier)
	sub.Close()
	sub.Close() // idempotent

	// Closed subscribers no longer receive, and the events channel is done.
	b.Publish(ChannelCashier, Event{Type: EventOrderNew})

	event, ok := <-sub.Events()
	require.False(t, ok, "expected closed events channel, got %v", event)
}

func TestNopPublisher(t *testing.T) {
	var pub Publisher = NopPublisher{}
	pub.Publish(ChannelCashier, Event{Type: EventOrderNew})
}
