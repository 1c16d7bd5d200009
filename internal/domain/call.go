package domain

import (
	"strings"
	"time"
)

type CallID string

func (id CallID) String() string { return string(id) }

type CallKind string

const (
	CallVoice CallKind = "voice"
	CallVideo CallKind = "video"
)

// ParseCallKind is case-insensitive; clients send "Voice", "video", etc.
func ParseCallKind(raw string) (CallKind, error) {
	switch k := CallKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case CallVoice, CallVideo:
		return k, nil
	}
	return "", ErrInvalidArgument
}

type CallStatus string

const (
	CallInitiated CallStatus = "initiated"
	CallRinging   CallStatus = "ringing"
	CallConnected CallStatus = "connected"
	CallEnded     CallStatus = "ended"
	CallRejected  CallStatus = "rejected"
	CallMissed    CallStatus = "missed"
	CallFailed    CallStatus = "failed"
)

func ParseCallStatus(raw string) (CallStatus, error) {
	switch s := CallStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case CallInitiated, CallRinging, CallConnected, CallEnded, CallRejected, CallMissed, CallFailed:
		return s, nil
	}
	return "", ErrInvalidArgument
}

func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallEnded, CallRejected, CallMissed, CallFailed:
		return true
	}
	return false
}

var callTransitions = map[CallStatus][]CallStatus{
	CallInitiated: {CallRinging, CallConnected, CallEnded, CallRejected, CallMissed, CallFailed},
	CallRinging:   {CallConnected, CallEnded, CallRejected, CallMissed, CallFailed},
	CallConnected: {CallEnded, CallFailed},
}

// CanTransitionTo reports whether next is reachable from s in one step.
// Terminal statuses have no successors.
func (s CallStatus) CanTransitionTo(next CallStatus) bool {
	for _, n := range callTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Call is a value snapshot; the store owns the live record.
type Call struct {
	ID                 CallID       `json:"id"`
	CallerID           UserID       `json:"caller_id"`
	CalleeID           UserID       `json:"callee_id"`
	Kind               CallKind     `json:"kind"`
	Status             CallStatus   `json:"status"`
	RoomID             RoomID       `json:"room_id,omitempty"`
	StartedAt          time.Time    `json:"started_at"`
	ConnectedAt        time.Time    `json:"connected_at"`
	EndedAt            time.Time    `json:"ended_at"`
	RejectionReason    string       `json:"rejection_reason,omitempty"`
	CallerConnectionID ConnectionID `json:"-"`
	CalleeConnectionID ConnectionID `json:"-"`
}

func (c Call) IsActive() bool { return !c.Status.IsTerminal() }

func (c Call) IsParticipant(u UserID) bool {
	return u == c.CallerID || u == c.CalleeID
}

// Peer returns the other side of the call. ok is false for outsiders.
func (c Call) Peer(u UserID) (UserID, bool) {
	switch u {
	case c.CallerID:
		return c.CalleeID, true
	case c.CalleeID:
		return c.CallerID, true
	}
	return "", false
}

// ConnectionFor returns the signaling connection recorded for u's side.
func (c Call) ConnectionFor(u UserID) ConnectionID {
	switch u {
	case c.CallerID:
		return c.CallerConnectionID
	case c.CalleeID:
		return c.CalleeConnectionID
	}
	return ""
}

// Duration is the connected time; zero unless the call connected and ended.
func (c Call) Duration() time.Duration {
	if c.ConnectedAt.IsZero() || c.EndedAt.IsZero() {
		return 0
	}
	return c.EndedAt.Sub(c.ConnectedAt)
}
