package orch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) RelayOffer(ctx context.Context, caller core.Caller, id domain.CallID, sdp string) error {
	return o.relaySDP(ctx, caller, id, webrtc.SDPTypeOffer, sdp, core.ReceiveOffer)
}

func (o *Orchestrator) RelayAnswer(ctx context.Context, caller core.Caller, id domain.CallID, sdp string) error {
	return o.relaySDP(ctx, caller, id, webrtc.SDPTypeAnswer, sdp, core.ReceiveAnswer)
}

// RelayIceCandidate forwards a JSON encoded RTCIceCandidateInit.
func (o *Orchestrator) RelayIceCandidate(_ context.Context, caller core.Caller, id domain.CallID, candidate string) error {
	const op = "relay_candidate"
	var init webrtc.ICECandidateInit
	if err := json.Unmarshal([]byte(candidate), &init); err != nil {
		return o.CallFail(caller, op, "Invalid ICE candidate", fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
	}
	return o.relay(caller, op, id, core.ReceiveIceCandidate(id, candidate))
}

func (o *Orchestrator) relaySDP(
	_ context.Context,
	caller core.Caller,
	id domain.CallID,
	typ webrtc.SDPType,
	sdp string,
	event func(domain.CallID, string) core.Event,
) error {
	op := "relay_" + typ.String()
	desc := webrtc.SessionDescription{Type: typ, SDP: sdp}
	if _, err := desc.Unmarshal(); err != nil {
		return o.CallFail(caller, op, "Invalid session description", fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
	}
	return o.relay(caller, op, id, event(id, sdp))
}

// relay forwards ev to the other participant's current connection.
func (o *Orchestrator) relay(caller core.Caller, op string, id domain.CallID, ev core.Event) error {
	call, ok := o.Calls.GetCall(id)
	if !ok {
		return o.CallFail(caller, op, "Call not found", domain.ErrCallNotFound)
	}
	peer, ok := call.Peer(caller.ID)
	if !ok {
		return o.CallFail(caller, op, "Not authorized for this call", domain.ErrNotParticipant)
	}
	if !call.IsActive() {
		return o.CallFail(caller, op, "Call is not active", domain.ErrCallNotActive)
	}

	call = o.trackSender(call, caller)
	to := o.target(call, peer)
	if to == "" {
		return o.CallFail(caller, op, "User is not online", domain.ErrUserOffline)
	}
	log.Debug().Str("module", "orch").Str("call", id.String()).Str("event", string(ev.Name)).
		Str("to", to.String()).Msg("relay")
	o.deliver(to, ev)
	return nil
}
