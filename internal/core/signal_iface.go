package core

import "github.com/dkeye/Parley/internal/domain"

// Frame is an encoded outbound payload.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Transport is what the coordinator needs from the delivery layer.
// Send never blocks: delivery is best effort. Close tears a connection down;
// the adapter later reports it back as a regular disconnect.
type Transport interface {
	Send(to domain.ConnectionID, ev Event) error
	Close(conn domain.ConnectionID)
}
