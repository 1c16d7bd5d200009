package app

import (
	"errors"

	"github.com/dkeye/Parley/internal/domain"
)

// ErrBackpressure is returned by a transport whose outbound buffer is full.
var ErrBackpressure = errors.New("backpressure")

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

func (a BackpressureAction) String() string {
	switch a {
	case MarkSlow:
		return "mark_slow"
	case KickMember:
		return "kick"
	case DropFrame:
		return "drop"
	}
	return "none"
}

// Policy decides what happens to a connection that failed a delivery.
type Policy interface {
	OnDeliveryFailure(conn domain.ConnectionID, err error) BackpressureAction
}

// SimplePolicy kicks connections whose buffer overflowed and drops the
// frame for any other failure.
type SimplePolicy struct{}

func (SimplePolicy) OnDeliveryFailure(_ domain.ConnectionID, err error) BackpressureAction {
	if errors.Is(err, ErrBackpressure) {
		return KickMember
	}
	return DropFrame
}
