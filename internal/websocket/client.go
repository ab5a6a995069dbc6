package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 1 << 20 // 1 MB
	sendBuffer     = 256
)

var errClientGone = errors.New("client closed or buffer full")

// Client wraps one gorilla connection. Outbound frames go through a
// buffered channel drained by writePump, which is what preserves per
// connection delivery order; Send never blocks the broadcaster.
type Client struct {
	Conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		Conn:   conn,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

// Send enqueues a frame for delivery. A full buffer means a slow consumer:
// the frame is refused and the caller decides whether that matters.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.closed:
		return errClientGone
	case c.send <- data:
		return nil
	default:
		return errClientGone
	}
}

// Close tears the transport down. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	})
	return nil
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings. The ping interval must undercut the read
// deadline on the peer loop, so the caller derives it from the same
// heartbeat timeout.
func (c *Client) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
