package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds how long a single frame may take to flush.
	writeWait = 10 * time.Second

	// idleWait is the read deadline between client messages. Clients
	// heartbeat well inside this window, so a silent connection means
	// the tab is gone and the slot can be reclaimed.
	idleWait = 2 * time.Minute
)

// WriteTyped sends a strongly-typed event payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes the next client message. The read deadline
// doubles as the idle timeout.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(idleWait))
	return conn.ReadJSON(v)
}
