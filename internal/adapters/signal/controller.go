package signal

import (
	"context"
	"net/http"
	"time"

	"github.com/dkeye/Parley/internal/app/orch"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

// SignalWSController serves signaling sockets. PingPeriod must stay below
// PongWait so a healthy peer always answers in time.
type SignalWSController struct {
	Orch       *orch.Orchestrator
	Hub        *Hub
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	SendBuffer int
}

func NewSignalWSController(o *orch.Orchestrator, hub *Hub) *SignalWSController {
	return &SignalWSController{
		Orch:       o,
		Hub:        hub,
		ReadLimit:  32768,
		PingPeriod: 54 * time.Second,
		PongWait:   60 * time.Second,
		SendBuffer: 32,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and serves the socket until it closes
// or ctx ends. id is the already authenticated caller.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, id domain.Identity) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newWsSignalConn(ws, ctl.SendBuffer)
	caller := core.Caller{Identity: id, Conn: domain.NewConnectionID()}
	log.Info().Str("module", "signal").Str("user", id.ID.String()).Str("conn", caller.Conn.String()).Msg("new WS connection")

	ctl.Hub.Register(caller.Conn, conn)
	if err := ctl.Orch.Connect(ctx, caller); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", caller.Conn.String()).Msg("connect")
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, caller, conn)
	}()
}
