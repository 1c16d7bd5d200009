package signal

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrUnknownConnection = errors.New("unknown connection")

// Hub maps connection ids to live sockets and implements core.Transport.
type Hub struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]core.SignalConnection
}

func NewHub() *Hub {
	return &Hub{conns: make(map[domain.ConnectionID]core.SignalConnection)}
}

func (h *Hub) Register(id domain.ConnectionID, c core.SignalConnection) {
	h.mu.Lock()
	h.conns[id] = c
	h.mu.Unlock()
}

// Unregister removes id only while it still points at c.
func (h *Hub) Unregister(id domain.ConnectionID, c core.SignalConnection) {
	h.mu.Lock()
	if h.conns[id] == c {
		delete(h.conns, id)
	}
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) lookup(id domain.ConnectionID) (core.SignalConnection, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[id]
	return c, ok
}

func (h *Hub) Send(to domain.ConnectionID, ev core.Event) error {
	c, ok := h.lookup(to)
	if !ok {
		return fmt.Errorf("%s: %w", to, ErrUnknownConnection)
	}
	frame, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Name, err)
	}
	return c.TrySend(frame)
}

// Close shuts the socket down. Its read pump then reports the disconnect.
func (h *Hub) Close(id domain.ConnectionID) {
	c, ok := h.lookup(id)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("conn", id.String()).Msg("closing connection")
	c.Close()
}
