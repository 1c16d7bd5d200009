package core

import (
	"time"

	"github.com/dkeye/Parley/internal/domain"
)

type EventName string

const (
	EventUserJoined          EventName = "UserJoined"
	EventUserLeft            EventName = "UserLeft"
	EventPresenceUpdated     EventName = "PresenceUpdated"
	EventTypingIndicator     EventName = "TypingIndicator"
	EventIncomingCall        EventName = "IncomingCall"
	EventCallRinging         EventName = "CallRinging"
	EventCallAccepted        EventName = "CallAccepted"
	EventCallConnected       EventName = "CallConnected"
	EventCallRejected        EventName = "CallRejected"
	EventCallEnded           EventName = "CallEnded"
	EventReceiveOffer        EventName = "ReceiveOffer"
	EventReceiveAnswer       EventName = "ReceiveAnswer"
	EventReceiveIceCandidate EventName = "ReceiveIceCandidate"
	EventCallError           EventName = "CallError"
	EventError               EventName = "Error"
	EventPong                EventName = "pong"
)

// Event is a named outbound message; Data must be JSON-serializable.
type Event struct {
	Name EventName `json:"type"`
	Data any       `json:"data,omitempty"`
}

type RoomUserPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
}

type PresencePayload struct {
	UserID   domain.UserID `json:"userId"`
	IsOnline bool          `json:"isOnline"`
}

type TypingPayload struct {
	RoomID   domain.RoomID `json:"roomId"`
	UserID   domain.UserID `json:"userId"`
	IsTyping bool          `json:"isTyping"`
}

type IncomingCallPayload struct {
	CallID     domain.CallID   `json:"callId"`
	CallerID   domain.UserID   `json:"callerId"`
	CallerName string          `json:"callerName"`
	CallType   domain.CallKind `json:"callType"`
	RoomID     domain.RoomID   `json:"roomId"`
	Timestamp  string          `json:"timestamp"`
}

type CallPayload struct {
	CallID domain.CallID `json:"callId"`
}

type CallRejectedPayload struct {
	CallID domain.CallID `json:"callId"`
	Reason string        `json:"reason,omitempty"`
}

type SDPPayload struct {
	CallID domain.CallID `json:"callId"`
	SDP    string        `json:"sdp"`
}

type CandidatePayload struct {
	CallID    domain.CallID `json:"callId"`
	Candidate string        `json:"candidate"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func UserJoined(room domain.RoomID, user domain.UserID) Event {
	return Event{Name: EventUserJoined, Data: RoomUserPayload{RoomID: room, UserID: user}}
}

func UserLeft(room domain.RoomID, user domain.UserID) Event {
	return Event{Name: EventUserLeft, Data: RoomUserPayload{RoomID: room, UserID: user}}
}

func PresenceUpdated(user domain.UserID, online bool) Event {
	return Event{Name: EventPresenceUpdated, Data: PresencePayload{UserID: user, IsOnline: online}}
}

func TypingIndicator(room domain.RoomID, user domain.UserID, typing bool) Event {
	return Event{Name: EventTypingIndicator, Data: TypingPayload{RoomID: room, UserID: user, IsTyping: typing}}
}

func IncomingCall(c domain.Call, callerName string, at time.Time) Event {
	return Event{Name: EventIncomingCall, Data: IncomingCallPayload{
		CallID:     c.ID,
		CallerID:   c.CallerID,
		CallerName: callerName,
		CallType:   c.Kind,
		RoomID:     c.RoomID,
		Timestamp:  at.UTC().Format(time.RFC3339Nano),
	}}
}

func CallRinging(id domain.CallID) Event {
	return Event{Name: EventCallRinging, Data: CallPayload{CallID: id}}
}

func CallAccepted(id domain.CallID) Event {
	return Event{Name: EventCallAccepted, Data: CallPayload{CallID: id}}
}

func CallConnected(id domain.CallID) Event {
	return Event{Name: EventCallConnected, Data: CallPayload{CallID: id}}
}

func CallRejected(id domain.CallID, reason string) Event {
	return Event{Name: EventCallRejected, Data: CallRejectedPayload{CallID: id, Reason: reason}}
}

func CallEnded(id domain.CallID) Event {
	return Event{Name: EventCallEnded, Data: CallPayload{CallID: id}}
}

func ReceiveOffer(id domain.CallID, sdp string) Event {
	return Event{Name: EventReceiveOffer, Data: SDPPayload{CallID: id, SDP: sdp}}
}

func ReceiveAnswer(id domain.CallID, sdp string) Event {
	return Event{Name: EventReceiveAnswer, Data: SDPPayload{CallID: id, SDP: sdp}}
}

func ReceiveIceCandidate(id domain.CallID, candidate string) Event {
	return Event{Name: EventReceiveIceCandidate, Data: CandidatePayload{CallID: id, Candidate: candidate}}
}

func CallError(msg string) Event {
	return Event{Name: EventCallError, Data: ErrorPayload{Message: msg}}
}

func Error(msg string) Event {
	return Event{Name: EventError, Data: ErrorPayload{Message: msg}}
}

func Pong() Event {
	return Event{Name: EventPong}
}
