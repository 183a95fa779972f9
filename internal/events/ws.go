package events

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fairyhunter13/realtime-catalog/internal/obs"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Observers may connect from any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and attaches the observer to the hub until
// the connection drops.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		obs.Logger.Warn("ws_upgrade_failed", "error", err)
		return
	}
	id, send := h.Register()
	go writePump(conn, send)
	h.readPump(conn, id)
}

func (h *Hub) readPump(conn *websocket.Conn, id string) {
	defer func() {
		h.Unregister(id)
		_ = conn.Close()
	}()
	conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				obs.Logger.Warn("ws_read_error", "conn_id", id, "error", err)
			}
			return
		}
		h.HandleInbound(id, raw)
	}
}

func writePump(conn *websocket.Conn, send <-chan Envelope) {
	for env := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(env); err != nil {
			// keep draining so buffered frames are discarded, not leaked
			for range send {
			}
			return
		}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
