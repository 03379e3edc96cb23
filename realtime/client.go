package realtime

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	// defaultPongWait is the keep-alive grace period. A connection that
	// stays silent past it is considered dead and cleaned up.
	defaultPongWait   = 60 * time.Second
	defaultPingPeriod = (defaultPongWait * 9) / 10

	sendBufferSize = 64

	// recentCommandIDs bounds the per-connection dedup window.
	recentCommandIDs = 128
)

type client struct {
	hub  *Hub
	role Role
	conn *websocket.Conn

	send chan Envelope
	seq  uint64

	seenCommands []string
}

func (c *client) nextSeq() uint64 {
	c.seq++
	return c.seq
}

// seenCommand reports whether id was already handled on this
// connection, recording it if not.
func (c *client) seenCommand(id string) bool {
	if id == "" {
		return false
	}
	for _, seen := range c.seenCommands {
		if seen == id {
			return true
		}
	}
	c.seenCommands = append(c.seenCommands, id)
	if len(c.seenCommands) > recentCommandIDs {
		c.seenCommands = c.seenCommands[len(c.seenCommands)-recentCommandIDs:]
	}
	return false
}

// writePump owns all writes on the connection, including keep-alive
// pings. Seq numbers are assigned here so they are monotonic per
// connection regardless of which goroutine queued the message.
func (c *client) writePump() {
	ticker := time.NewTicker(c.hub.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case envelope, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			envelope.Seq = c.nextSeq()
			if err := c.conn.WriteJSON(envelope); err != nil {
				return
			}
		case <-ticker.C:
			// Control ping keeps the pong handler feeding the read
			// deadline; the keepalive envelope is the visible no-op that
			// keeps intermediaries from idling the stream out.
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			if err := c.conn.WriteJSON(Envelope{Type: TypeKeepAlive, Seq: c.nextSeq()}); err != nil {
				return
			}
		}
	}
}

// readPump consumes inbound frames and keeps the read deadline fresh.
// It returns when the connection drops, detaching the client.
func (c *client) readPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	})

	for {
		var inbound Inbound
		if err := c.conn.ReadJSON(&inbound); err != nil {
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))

		if c.seenCommand(inbound.CommandID) {
			continue
		}
		c.hub.dispatchInbound(c.role, inbound)
	}
}
