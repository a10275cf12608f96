// internal/infrastructure/push/websocket.go
package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/config"
)

// Envelope is one message on the WebSocket push channel
type Envelope struct {
	Event string          `json:"event"`
	Seq   int64           `json:"seq,omitempty"`
	Data  json.RawMessage `json:"data"`
}

// WebSocketTransport subscribes to the café's WebSocket event stream
type WebSocketTransport struct {
	cfg    config.PushConfig
	hub    *Hub
	dialer *websocket.Dialer
	log    logrus.FieldLogger
}

// NewWebSocketTransport creates a WebSocket transport
func NewWebSocketTransport(cfg config.PushConfig, hub *Hub, log logrus.FieldLogger) *WebSocketTransport {
	return &WebSocketTransport{
		cfg:    cfg,
		hub:    hub,
		dialer: websocket.DefaultDialer,
		log:    log.WithFields(logrus.Fields{"component": "push", "transport": "websocket"}),
	}
}

// Run reads events until ctx is done or reconnects are exhausted
func (t *WebSocketTransport) Run(ctx context.Context) error {
	return runWithReconnect(ctx, t.hub, t.cfg.ReconnectAttempts, t.cfg.ReconnectBackoff, t.log, t.serve)
}

func (t *WebSocketTransport) serve(ctx context.Context, connected func()) error {
	conn, _, err := t.dialer.DialContext(ctx, t.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.cfg.URL, err)
	}
	defer conn.Close()

	connected()
	t.log.WithField("url", t.cfg.URL).Info("Push channel connected")

	// Unblock ReadJSON on shutdown
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if env.Event == "" {
			continue
		}
		t.hub.Dispatch(env.Event, env.Seq, env.Data)
	}
}
