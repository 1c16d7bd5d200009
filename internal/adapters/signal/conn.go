package signal

import (
	"errors"
	"sync"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/gorilla/websocket"
)

var ErrConnClosed = errors.New("connection closed")

// WsSignalConn is one client socket. Writes go through a buffered channel
// drained by the write pump; a full buffer is reported, never waited on.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(conn *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: conn, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return app.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
