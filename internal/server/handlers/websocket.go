// internal/server/handlers/websocket.go

package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// resultsClient is one WebSocket subscriber to ranking results.
type resultsClient struct {
	conn      *websocket.Conn
	send      chan []byte
	sub       *nats.Subscription
	closeOnce sync.Once
	logger    *zap.Logger
}

// WebSocketConfig contains configuration for WebSocket connections.
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration
}

// DefaultWebSocketConfig returns the default WebSocket configuration.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:  10 * time.Second,
		PongWait:   60 * time.Second,
		PingPeriod: (60 * time.Second * 9) / 10,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// ResultsWebSocketHandler streams ranking-result events published on the
// given NATS subject to each connected WebSocket client.
func ResultsWebSocketHandler(natsConn *nats.Conn, subject string, logger *zap.Logger) http.HandlerFunc {
	config := DefaultWebSocketConfig()

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("failed to upgrade to WebSocket", zap.Error(err))
			return
		}

		client := &resultsClient{
			conn:   conn,
			send:   make(chan []byte, 64),
			logger: logger,
		}

		sub, err := natsConn.Subscribe(subject, func(msg *nats.Msg) {
			select {
			case client.send <- msg.Data:
			default:
				// Slow consumer: drop the event rather than block NATS.
			}
		})
		if err != nil {
			logger.Warn("failed to subscribe to result events", zap.Error(err))
			conn.Close()
			return
		}
		client.sub = sub

		go client.writePump(config)
		go client.readPump(config)

		logger.Info("new results WebSocket connection", zap.String("remote", r.RemoteAddr))
	}
}

// writePump forwards queued events to the peer and keeps the connection alive
// with pings.
func (c *resultsClient) writePump(config WebSocketConfig) {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages; it exists to process pongs and notice
// the peer going away.
func (c *resultsClient) readPump(config WebSocketConfig) {
	defer c.close()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *resultsClient) close() {
	c.closeOnce.Do(func() {
		if err := c.sub.Unsubscribe(); err != nil {
			c.logger.Warn("failed to unsubscribe from result events", zap.Error(err))
		}
		c.conn.Close()
	})
}
