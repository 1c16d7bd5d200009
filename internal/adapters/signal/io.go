package signal

import (
	"context"
	"time"

	"github.com/dkeye/Parley/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			c.Close()
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		}
	}
}

// readPump owns the socket lifetime: when it returns, the connection is
// unregistered and reported as disconnected.
func (ctl *SignalWSController) readPump(ctx context.Context, caller core.Caller, c *WsSignalConn) {
	conn := caller.Conn.String()
	defer func() {
		log.Info().Str("module", "signal").Str("conn", conn).Msg("readPump closing")
		ctl.Hub.Unregister(caller.Conn, c)
		c.Close()
		if err := ctl.Orch.Disconnect(context.WithoutCancel(ctx), caller); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("conn", conn).Msg("disconnect")
		}
	}()

	pongWait := ctl.PongWait
	c.conn.SetReadLimit(ctl.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", conn).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", conn).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
			if err := ctl.handleMessage(ctx, caller, data); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", conn).Msg("operation failed")
			}
		}
	}
}
