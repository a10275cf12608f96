package push

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/cafe-frontend/internal/config"
	"github.com/your-org/cafe-frontend/internal/domain/order"
	"github.com/your-org/cafe-frontend/internal/pkg/logger"
)

func TestHubFansOutAndUnsubscribes(t *testing.T) {
	hub := NewHub(logger.Discard())

	var a, b []string
	unsubA := hub.Subscribe(func(e order.Event) { a = append(a, e.OrderID) })
	hub.Subscribe(func(e order.Event) { b = append(b, e.OrderID) })
	assert.Equal(t, 2, hub.Subscribers())

	hub.Publish(order.Event{Name: order.EventDeleted, OrderID: "o1"})
	unsubA()
	unsubA()
	hub.Publish(order.Event{Name: order.EventDeleted, OrderID: "o2"})

	assert.Equal(t, []string{"o1"}, a)
	assert.Equal(t, []string{"o1", "o2"}, b)
	assert.Equal(t, 1, hub.Subscribers())
}

func TestHubDropsMalformedEvents(t *testing.T) {
	hub := NewHub(logger.Discard())
	calls := 0
	hub.Subscribe(func(order.Event) { calls++ })

	hub.Dispatch("orderDeleted", 0, []byte(`{}`))
	hub.Dispatch("orderShipped", 0, []byte(`{"id":"x"}`))
	hub.Dispatch("orderDeleted", 0, []byte(`{"id":"x"}`))

	assert.Equal(t, 1, calls)
}

func TestWebSocketTransportDeliversEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(map[string]interface{}{
			"event": "orderUpdate",
			"seq":   3,
			"data":  map[string]interface{}{"_id": "abc123", "status": "preparing", "items": []string{}, "quantities": []int{}},
		})
		_ = conn.WriteJSON(map[string]interface{}{"event": "orderDeleted", "data": map[string]string{"id": "abc123"}})

		// Hold the connection until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	hub := NewHub(logger.Discard())
	var (
		mu     sync.Mutex
		events []order.Event
	)
	hub.Subscribe(func(e order.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	transport := NewWebSocketTransport(config.PushConfig{
		URL:               "ws" + strings.TrimPrefix(srv.URL, "http"),
		ReconnectAttempts: 1,
		ReconnectBackoff:  10 * time.Millisecond,
	}, hub, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- transport.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, hub.Connected())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("transport did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, order.EventUpdated, events[0].Name)
	assert.Equal(t, int64(3), events[0].Version())
	assert.Equal(t, order.StatusPreparing, events[0].Order.Status)
	assert.Equal(t, order.EventDeleted, events[1].Name)
	assert.False(t, hub.Connected())
}

func TestReconnectGivesUpAfterAttempts(t *testing.T) {
	hub := NewHub(logger.Discard())
	calls := 0
	err := runWithReconnect(context.Background(), hub, 3, time.Millisecond, logger.Discard(),
		func(ctx context.Context, connected func()) error {
			calls++
			return errors.New("refused")
		})

	assert.ErrorIs(t, err, ErrGaveUp)
	assert.Equal(t, 4, calls)
}

func TestReconnectResetsAfterSuccessfulConnect(t *testing.T) {
	hub := NewHub(logger.Discard())
	calls := 0
	err := runWithReconnect(context.Background(), hub, 1, time.Millisecond, logger.Discard(),
		func(ctx context.Context, connected func()) error {
			calls++
			// Four connections that drop, then a refused dial
			if calls <= 4 {
				connected()
			}
			return errors.New("dropped")
		})

	assert.ErrorIs(t, err, ErrGaveUp)
	assert.Equal(t, 5, calls)
}

func TestReconnectStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runWithReconnect(ctx, NewHub(logger.Discard()), 5, time.Hour, logger.Discard(),
		func(ctx context.Context, connected func()) error { return ctx.Err() })
	assert.NoError(t, err)
}

func TestDeliveryMeta(t *testing.T) {
	name, seq := deliveryMeta(amqp.Delivery{Type: "newOrder", Headers: amqp.Table{"seq": int64(9)}})
	assert.Equal(t, "newOrder", name)
	assert.Equal(t, int64(9), seq)

	name, seq = deliveryMeta(amqp.Delivery{Headers: amqp.Table{"event": "orderDeleted", "seq": int32(2)}})
	assert.Equal(t, "orderDeleted", name)
	assert.Equal(t, int64(2), seq)
}

func TestNewTransportSelectsByConfig(t *testing.T) {
	hub := NewHub(logger.Discard())
	for name, want := range map[string]interface{}{
		"websocket": &WebSocketTransport{},
		"amqp":      &AMQPTransport{},
		"none":      noopTransport{},
	} {
		tr, err := NewTransport(&config.Config{Push: config.PushConfig{Transport: name}}, hub, logger.Discard())
		require.NoError(t, err)
		assert.IsType(t, want, tr)
	}

	_, err := NewTransport(&config.Config{Push: config.PushConfig{Transport: "carrier-pigeon"}}, hub, logger.Discard())
	assert.Error(t, err)
}
