package gateway

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are the reverse proxy's job in this deployment.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades GET /gateway, greets the client with HELLO
// and starts the connection pumps. Identification happens over the
// socket, not at upgrade time.
func (m *Manager) HandleWebSocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("gateway upgrade error", "error", err)
		return nil
	}

	conn := newConnection(ws, m)
	conn.SendPayload(GatewayPayload{
		Op: OpHello,
		Data: mustMarshal(HelloData{
			HeartbeatInterval: int(heartbeatInterval.Milliseconds()),
		}),
	})

	go conn.writePump()
	go conn.readPump()

	return nil
}
