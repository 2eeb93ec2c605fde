package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Client is one live websocket connection registered with the hub. Outbound
// frames go through a buffered channel drained by the write pump so that a
// slow consumer never blocks a broadcast.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	info ConnInfo

	send chan []byte
	done chan struct{}
	once sync.Once

	// rooms is owned by the hub and mutated only under its lock.
	rooms map[string]struct{}
}

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, info ConnInfo) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		info:  info,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
		rooms: make(map[string]struct{}),
	}
}

// Info returns the connection metadata.
func (c *Client) Info() ConnInfo {
	return c.info
}

// trySend queues a frame without blocking. False means the buffer is full;
// the caller decides whether the client gets dropped.
func (c *Client) trySend(payload []byte) bool {
	select {
	case <-c.done:
		return true
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close shuts the connection down once; safe from any goroutine.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// writePump drains the send buffer onto the wire and keeps the connection
// alive with pings. One pump per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
