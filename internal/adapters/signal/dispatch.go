package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

// Inbound operation names.
const (
	OpJoinConversation  = "JoinConversation"
	OpLeaveConversation = "LeaveConversation"
	OpSendTyping        = "SendTyping"
	OpStopTyping        = "StopTyping"
	OpInitiateCall      = "InitiateCall"
	OpAcceptCall        = "AcceptCall"
	OpRejectCall        = "RejectCall"
	OpEndCall           = "EndCall"
	OpSendOffer         = "SendOffer"
	OpSendAnswer        = "SendAnswer"
	OpSendIceCandidate  = "SendIceCandidate"
	OpUpdateCallStatus  = "UpdateCallStatus"
	OpPing              = "ping"
)

// message is the union of every operation's arguments.
type message struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId"`
	CalleeID  string          `json:"calleeId"`
	CallType  string          `json:"callType"`
	CallID    string          `json:"callId"`
	Reason    string          `json:"reason"`
	SDP       string          `json:"sdp"`
	Candidate json.RawMessage `json:"candidate"`
	Status    string          `json:"status"`
}

// candidate accepts both a JSON object and a string holding one.
func (m message) candidate() string {
	var s string
	if err := json.Unmarshal(m.Candidate, &s); err == nil {
		return s
	}
	return string(m.Candidate)
}

func (ctl *SignalWSController) handleMessage(ctx context.Context, caller core.Caller, data []byte) error {
	var m message
	if err := json.Unmarshal(data, &m); err != nil {
		return ctl.Orch.Fail(caller, "decode", "Invalid message format", fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
	}

	o := ctl.Orch
	switch m.Type {
	case OpJoinConversation, OpLeaveConversation, OpSendTyping, OpStopTyping:
		room, err := domain.ParseRoomID(m.RoomID)
		if err != nil {
			return o.Fail(caller, m.Type, "Invalid conversation id", err)
		}
		switch m.Type {
		case OpJoinConversation:
			return o.JoinRoom(ctx, caller, room)
		case OpLeaveConversation:
			return o.LeaveRoom(ctx, caller, room)
		case OpSendTyping:
			return o.Typing(ctx, caller, room, true)
		default:
			return o.Typing(ctx, caller, room, false)
		}

	case OpInitiateCall:
		var room domain.RoomID
		if m.RoomID != "" {
			parsed, err := domain.ParseRoomID(m.RoomID)
			if err != nil {
				return o.CallFail(caller, m.Type, "Invalid conversation id", err)
			}
			room = parsed
		}
		return o.InitiateCall(ctx, caller, domain.UserID(strings.TrimSpace(m.CalleeID)), m.CallType, room)

	case OpAcceptCall, OpRejectCall, OpEndCall, OpSendOffer, OpSendAnswer, OpSendIceCandidate, OpUpdateCallStatus:
		id := domain.CallID(strings.TrimSpace(m.CallID))
		if id == "" {
			return o.CallFail(caller, m.Type, "Invalid call id", domain.ErrInvalidArgument)
		}
		switch m.Type {
		case OpAcceptCall:
			return o.AcceptCall(ctx, caller, id)
		case OpRejectCall:
			return o.RejectCall(ctx, caller, id, m.Reason)
		case OpEndCall:
			return o.EndCall(ctx, caller, id)
		case OpSendOffer:
			return o.RelayOffer(ctx, caller, id, m.SDP)
		case OpSendAnswer:
			return o.RelayAnswer(ctx, caller, id, m.SDP)
		case OpSendIceCandidate:
			return o.RelayIceCandidate(ctx, caller, id, m.candidate())
		default:
			return o.UpdateCallStatus(ctx, caller, id, m.Status)
		}

	case OpPing:
		return ctl.Hub.Send(caller.Conn, core.Pong())

	default:
		log.Warn().Str("module", "signal").Str("type", m.Type).Msg("unknown signal")
		return o.Fail(caller, "unknown", "Unknown operation", domain.ErrInvalidArgument)
	}
}
