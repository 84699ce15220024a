package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 * 1024
)

// ClientConn wraps one browser websocket with buffered read/write pumps.
// Outbound messages are dropped rather than blocking the pipeline when the
// client cannot keep up.
type ClientConn struct {
	ws       *websocket.Conn
	streamID string
	logger   *slog.Logger
	send     chan *StreamMessage
	messages chan *StreamMessage
	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
}

func NewClientConn(ws *websocket.Conn, streamID string, logger *slog.Logger) *ClientConn {
	return &ClientConn{
		ws:       ws,
		streamID: streamID,
		logger:   logger.With("stream_id", streamID),
		send:     make(chan *StreamMessage, 128),
		messages: make(chan *StreamMessage, 128),
		done:     make(chan struct{}),
	}
}

func (c *ClientConn) StreamID() string {
	return c.streamID
}

func (c *ClientConn) Send(_ context.Context, msg *StreamMessage) error {
	// The lock is held across the channel send so Close cannot close the
	// send channel between the flag check and the send.
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("send buffer full, dropping message", "type", msg.Type)
		return nil
	}
}

func (c *ClientConn) Messages() <-chan *StreamMessage {
	return c.messages
}

func (c *ClientConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	close(c.send)
	c.mu.Unlock()

	return c.ws.Close()
}

func (c *ClientConn) readPump(ctx context.Context) {
	defer func() {
		c.Close()
		close(c.messages)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}

		var msg StreamMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Error("failed to unmarshal message", "error", err)
			continue
		}

		select {
		case c.messages <- &msg:
		case <-ctx.Done():
			return
		default:
			c.logger.Warn("message buffer full, dropping message", "type", msg.Type)
		}
	}
}

func (c *ClientConn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				c.logger.Error("failed to marshal message", "error", err)
				continue
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
