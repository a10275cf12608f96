// internal/infrastructure/push/transport.go
package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/config"
)

// ErrGaveUp is returned once every reconnect attempt has failed
var ErrGaveUp = errors.New("push channel reconnect attempts exhausted")

// Transport feeds a Hub from the café's push channel until ctx is done
type Transport interface {
	Run(ctx context.Context) error
}

// NewTransport builds the transport selected by configuration
func NewTransport(cfg *config.Config, hub *Hub, log logrus.FieldLogger) (Transport, error) {
	switch cfg.Push.Transport {
	case "websocket":
		return NewWebSocketTransport(cfg.Push, hub, log), nil
	case "amqp":
		return NewAMQPTransport(cfg.Push, hub, log), nil
	case "none":
		return noopTransport{}, nil
	}
	return nil, fmt.Errorf("unknown push transport %q", cfg.Push.Transport)
}

type noopTransport struct{}

func (noopTransport) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// session connects once and serves until the connection drops. It calls
// connected after the connection is established.
type session func(ctx context.Context, connected func()) error

// runWithReconnect keeps a session alive. Failed connects are retried up to
// attempts times with a linear backoff; a successful connect resets the count.
func runWithReconnect(ctx context.Context, hub *Hub, attempts int, backoff time.Duration, log logrus.FieldLogger, serve session) error {
	failures := 0
	for {
		err := serve(ctx, func() {
			failures = 0
			hub.setConnected(true)
		})
		hub.setConnected(false)

		if ctx.Err() != nil {
			return nil
		}

		failures++
		if failures > attempts {
			log.WithError(err).WithField("attempts", attempts).Error("Push channel gave up reconnecting")
			return ErrGaveUp
		}

		wait := backoff * time.Duration(failures)
		log.WithError(err).WithFields(logrus.Fields{
			"attempt": failures,
			"wait":    wait,
		}).Warn("Push channel disconnected, reconnecting")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil
		}
	}
}
