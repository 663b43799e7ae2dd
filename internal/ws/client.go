package ws

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// Client is one open websocket connection. All writes go through the send
// channel so the write pump is the only goroutine touching the socket.
type Client struct {
	UserID   string
	SocketID string

	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, userID, socketID string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		UserID:   userID,
		SocketID: socketID,
		conn:     conn,
		send:     make(chan []byte, buffer),
	}
}

// TrySend queues a payload without blocking. Returns false when the client is
// closed or its buffer is full; the caller treats that as not delivered.
func (c *Client) TrySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close is idempotent and safe to call concurrently with TrySend.
func (c *Client) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
	c.mu.Unlock()
}

// WritePump drains the send channel onto the socket and keeps the peer alive
// with pings. Returns when the channel closes or a write fails.
func (c *Client) WritePump(pingInterval, writeDeadline time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
