package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	heartbeatInterval = 41250 * time.Millisecond
	heartbeatTimeout  = 10 * time.Second
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	maxMessageSize    = 4096
	sendBufferSize    = 256
)

// Connection is one identified WebSocket client. UserID and SessionID
// are zero until the client completes IDENTIFY.
type Connection struct {
	UserID    int64
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte

	manager  *Manager
	sequence atomic.Int64

	closeOnce sync.Once
	done      chan struct{}

	// Unix millis of the most recent client heartbeat.
	lastHeartbeat atomic.Int64
}

func newConnection(conn *websocket.Conn, manager *Manager) *Connection {
	c := &Connection{
		Conn:    conn,
		Send:    make(chan []byte, sendBufferSize),
		manager: manager,
		done:    make(chan struct{}),
	}
	c.lastHeartbeat.Store(time.Now().UnixMilli())
	return c
}

// NextSequence returns the next dispatch sequence number.
func (c *Connection) NextSequence() int64 {
	return c.sequence.Add(1)
}

// SendPayload queues a payload for the write pump. A slow consumer
// whose buffer fills loses the payload rather than stalling fan-out.
func (c *Connection) SendPayload(p GatewayPayload) {
	data, err := json.Marshal(p)
	if err != nil {
		slog.Error("marshal error", "userID", c.UserID, "error", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		slog.Warn("send buffer full, dropping message", "userID", c.UserID)
	}
}

// SendEvent queues a sequenced dispatch event.
func (c *Connection) SendEvent(name string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("marshal event error", "event", name, "error", err)
		return
	}
	seq := c.NextSequence()
	c.SendPayload(GatewayPayload{
		Op:       OpDispatch,
		Data:     raw,
		Sequence: &seq,
		Event:    &name,
	})
}

// Close tears the connection down. Safe to call from either pump.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.Conn.Close()
	})
}

// heartbeatStale reports whether the client missed its heartbeat
// window.
func (c *Connection) heartbeatStale() bool {
	last := time.UnixMilli(c.lastHeartbeat.Load())
	return time.Since(last) > heartbeatInterval+heartbeatTimeout
}

// readPump consumes client frames until the socket errors or closes,
// then unregisters the connection.
func (c *Connection) readPump() {
	defer func() {
		c.manager.unregister(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("read error", "userID", c.UserID, "error", err)
			}
			return
		}
		c.handleMessage(frame)
	}
}

// writePump drains the Send buffer onto the socket and drives the
// server-side heartbeat, dropping clients that stop answering.
func (c *Connection) writePump() {
	ticker := time.NewTicker(heartbeatInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			if c.heartbeatStale() {
				slog.Warn("heartbeat timeout", "userID", c.UserID)
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.SendPayload(GatewayPayload{Op: OpHeartbeat})

		case <-c.done:
			return
		}
	}
}

// handleMessage dispatches one client payload. Unknown opcodes are
// ignored; clients may be newer than the server.
func (c *Connection) handleMessage(data []byte) {
	var payload GatewayPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		slog.Error("invalid payload", "userID", c.UserID, "error", err)
		return
	}

	switch payload.Op {
	case OpHeartbeat:
		c.lastHeartbeat.Store(time.Now().UnixMilli())
		c.SendPayload(GatewayPayload{Op: OpHeartbeatAck})

	case OpIdentify:
		c.manager.handleIdentify(c, payload.Data)

	default:
		slog.Debug("unhandled opcode", "op", payload.Op, "userID", c.UserID)
	}
}
