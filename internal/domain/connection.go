package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionID identifies one live transport session.
type ConnectionID string

func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

func (id ConnectionID) String() string { return string(id) }

// Connection is a registry snapshot of a live session.
// No transport or lifecycle logic here.
type Connection struct {
	ID          ConnectionID `json:"id"`
	UserID      UserID       `json:"user_id"`
	ConnectedAt time.Time    `json:"connected_at"`
}
