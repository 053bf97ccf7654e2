package feed

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// client is one event stream subscriber.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn, buffer int) *client {
	return &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, buffer),
	}
}

// writePump delivers queued messages and heartbeats until the hub closes
// the queue or a write fails.
func (c *client) writePump(writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and keeps the read deadline moving on
// pongs. It returns when the peer goes away or misses heartbeats.
func (c *client) readPump(pingInterval time.Duration) error {
	wait := 2 * pingInterval
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return err
		}
	}
}
