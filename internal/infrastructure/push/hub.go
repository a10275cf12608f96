// internal/infrastructure/push/hub.go
package push

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/domain/order"
)

// Handler receives order events. Handlers run on the transport's goroutine
// and must not block.
type Handler = func(order.Event)

// Hub fans events from the push channel out to subscribers
type Hub struct {
	mu        sync.RWMutex
	handlers  map[uint64]Handler
	nextID    uint64
	connected atomic.Bool
	log       logrus.FieldLogger
}

// NewHub creates an empty hub
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		handlers: make(map[uint64]Handler),
		log:      log.WithField("component", "push"),
	}
}

// Subscribe registers fn and returns a function that removes it
func (h *Hub) Subscribe(fn Handler) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.handlers[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.handlers, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers evt to every subscriber
func (h *Hub) Publish(evt order.Event) {
	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.handlers))
	for _, fn := range h.handlers {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(evt)
	}
}

// Dispatch decodes a raw event and publishes it. Malformed events are
// logged and dropped.
func (h *Hub) Dispatch(name string, seq int64, data []byte) {
	evt, err := order.DecodeEvent(order.EventName(name), seq, data)
	if err != nil {
		h.log.WithError(err).WithField("event", name).Warn("Dropping malformed push event")
		return
	}
	h.Publish(evt)
}

// Subscribers returns the number of registered handlers
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}

// Connected reports whether a transport currently holds a live connection
func (h *Hub) Connected() bool {
	return h.connected.Load()
}

func (h *Hub) setConnected(v bool) {
	if h.connected.Swap(v) != v {
		h.log.WithField("connected", v).Info("Push channel state changed")
	}
}
