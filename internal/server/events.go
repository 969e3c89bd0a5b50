package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"barista/internal/bus"
)

// EventsHandler exposes bus subscriptions to HTTP viewers as server-sent
// events. A viewer that connects after an event missed it; clients are
// expected to do a full-state fetch first and then follow the stream.
type EventsHandler struct {
	bus    *bus.Bus
	logger *zap.Logger
}

func NewEventsHandler(b *bus.Bus, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		bus:    b,
		logger: logger,
	}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	switch channel {
	case bus.ChannelCashier, bus.ChannelKitchen, bus.ChannelPrinter:
	default:
		http.Error(w, "unknown channel", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	sub := h.bus.Subscribe(channel)
	defer sub.Close()

	h.logger.Info("viewer connected", zap.String("channel", channel))
	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("viewer disconnected", zap.String("channel", channel))
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("encoding event", zap.String("event", event.Type), zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		}
	}
}
