// internal/infrastructure/push/amqp.go
package push

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/config"
)

// AMQPTransport consumes order events from a fanout exchange. The event name
// travels in the message type, the sequence in the "seq" header.
type AMQPTransport struct {
	cfg config.PushConfig
	hub *Hub
	log logrus.FieldLogger
}

// NewAMQPTransport creates an AMQP transport
func NewAMQPTransport(cfg config.PushConfig, hub *Hub, log logrus.FieldLogger) *AMQPTransport {
	return &AMQPTransport{
		cfg: cfg,
		hub: hub,
		log: log.WithFields(logrus.Fields{"component": "push", "transport": "amqp"}),
	}
}

// Run consumes until ctx is done or reconnects are exhausted
func (t *AMQPTransport) Run(ctx context.Context) error {
	return runWithReconnect(ctx, t.hub, t.cfg.ReconnectAttempts, t.cfg.ReconnectBackoff, t.log, t.serve)
}

func (t *AMQPTransport) serve(ctx context.Context, connected func()) error {
	conn, err := amqp.Dial(t.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(t.cfg.Exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Every instance gets its own exclusive queue so each sees every event
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", t.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	connected()
	t.log.WithFields(logrus.Fields{"exchange": t.cfg.Exchange, "queue": q.Name}).Info("Push channel connected")

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("connection closed")
			}
			return amqpErr
		case msg, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			name, seq := deliveryMeta(msg)
			t.hub.Dispatch(name, seq, msg.Body)
		}
	}
}

// deliveryMeta extracts the event name and sequence from a delivery
func deliveryMeta(msg amqp.Delivery) (string, int64) {
	name := msg.Type
	if name == "" {
		if v, ok := msg.Headers["event"].(string); ok {
			name = v
		}
	}

	var seq int64
	switch v := msg.Headers["seq"].(type) {
	case int64:
		seq = v
	case int32:
		seq = int64(v)
	case int:
		seq = int64(v)
	}
	return name, seq
}
