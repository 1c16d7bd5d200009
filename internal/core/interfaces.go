package core

import (
	"context"
	"time"

	"github.com/dkeye/Parley/internal/domain"
)

// Caller is the origin of one inbound operation.
type Caller struct {
	domain.Identity
	Conn domain.ConnectionID
}

//go:generate mockgen -destination=mock_core/mock_core.go -package=mock_core . Membership,LastSeenStore

// Membership is the read-only view of the persisted conversation store.
type Membership interface {
	IsMember(ctx context.Context, user domain.UserID, room domain.RoomID) (bool, error)
	ConversationsOf(ctx context.Context, user domain.UserID) ([]domain.RoomID, error)
}

// LastSeenStore keeps the moment a user went fully offline.
type LastSeenStore interface {
	Touch(ctx context.Context, user domain.UserID, at time.Time) error
	LastSeen(ctx context.Context, user domain.UserID) (time.Time, bool, error)
}
