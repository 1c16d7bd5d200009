package domain

import "strings"

const MaxRoomIDLen = 64

// RoomID mirrors a persisted conversation id.
type RoomID string

func (id RoomID) String() string { return string(id) }

func ParseRoomID(raw string) (RoomID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > MaxRoomIDLen {
		return "", ErrInvalidArgument
	}
	return RoomID(raw), nil
}
