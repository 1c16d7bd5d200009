package orch

import (
	"context"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) InitiateCall(
	_ context.Context,
	caller core.Caller,
	callee domain.UserID,
	callType string,
	room domain.RoomID,
) error {
	const op = "initiate_call"
	if callee == "" {
		return o.CallFail(caller, op, "Invalid callee ID", domain.ErrInvalidArgument)
	}
	kind, err := domain.ParseCallKind(callType)
	if err != nil {
		return o.CallFail(caller, op, "Invalid call type", err)
	}
	if callee == caller.ID {
		return o.CallFail(caller, op, "You cannot call yourself", domain.ErrSelfCall)
	}
	if !o.Calls.CanPlaceCall(caller.ID, callee) {
		return o.CallFail(caller, op, "User is not available for calls", domain.ErrUnavailable)
	}
	calleeConns := o.Registry.OnlineConnectionsForUser(callee)
	if len(calleeConns) == 0 {
		return o.CallFail(caller, op, "User is not online", domain.ErrUserOffline)
	}

	call, err := o.Calls.CreateCall(caller.ID, callee, kind, caller.Conn, room)
	if err != nil {
		return o.CallFail(caller, op, "User is not available for calls", err)
	}
	call, err = o.Calls.Transition(call.ID, domain.CallRinging, "")
	if err != nil {
		return o.CallFail(caller, op, "Failed to initiate call", err)
	}
	o.Metrics.CallTransition(string(domain.CallRinging))

	log.Info().Str("module", "orch").Str("call", call.ID.String()).Str("caller", caller.ID.String()).
		Str("callee", callee.String()).Int("callee_conns", len(calleeConns)).Msg("call ringing")
	o.deliverAll(calleeConns, core.IncomingCall(call, caller.Name, o.now()), "")
	o.deliver(caller.Conn, core.CallRinging(call.ID))
	return nil
}

func (o *Orchestrator) AcceptCall(_ context.Context, caller core.Caller, id domain.CallID) error {
	const op = "accept_call"
	call, ok := o.Calls.GetCall(id)
	if !ok {
		return o.CallFail(caller, op, "Call not found", domain.ErrCallNotFound)
	}
	if call.CalleeID != caller.ID {
		return o.CallFail(caller, op, "Not authorized to accept this call", domain.ErrNotParticipant)
	}
	if !call.IsActive() {
		return o.CallFail(caller, op, "Call is no longer active", domain.ErrCallNotActive)
	}

	call, err := o.Calls.Accept(id, caller.ID, caller.Conn)
	if err != nil {
		return o.CallFail(caller, op, "Failed to accept call", err)
	}
	o.Metrics.CallTransition(string(domain.CallConnected))

	log.Info().Str("module", "orch").Str("call", id.String()).Str("callee", caller.ID.String()).Msg("call accepted")
	o.deliverAll(o.sideTargets(call, call.CallerID), core.CallAccepted(id), "")
	o.deliver(caller.Conn, core.CallConnected(id))
	return nil
}

func (o *Orchestrator) RejectCall(_ context.Context, caller core.Caller, id domain.CallID, reason string) error {
	const op = "reject_call"
	call, ok := o.Calls.GetCall(id)
	if !ok {
		return o.CallFail(caller, op, "Call not found", domain.ErrCallNotFound)
	}
	if call.CalleeID != caller.ID {
		return o.CallFail(caller, op, "Not authorized to reject this call", domain.ErrNotParticipant)
	}

	call, err := o.Calls.Transition(id, domain.CallRejected, reason)
	if err != nil {
		return o.CallFail(caller, op, "Failed to reject call", err)
	}
	o.Metrics.CallTransition(string(domain.CallRejected))

	log.Info().Str("module", "orch").Str("call", id.String()).Str("reason", reason).Msg("call rejected")
	o.deliverAll(o.sideTargets(call, call.CallerID), core.CallRejected(id, reason), "")
	return nil
}

// EndCall may come from either participant; both sides hear CallEnded.
func (o *Orchestrator) EndCall(_ context.Context, caller core.Caller, id domain.CallID) error {
	const op = "end_call"
	call, ok := o.Calls.GetCall(id)
	if !ok {
		return o.CallFail(caller, op, "Call not found", domain.ErrCallNotFound)
	}
	if !call.IsParticipant(caller.ID) {
		return o.CallFail(caller, op, "Not authorized to end this call", domain.ErrNotParticipant)
	}

	call, err := o.Calls.Transition(id, domain.CallEnded, "")
	if err != nil {
		return o.CallFail(caller, op, "Failed to end call", err)
	}
	o.Metrics.CallTransition(string(domain.CallEnded))

	log.Info().Str("module", "orch").Str("call", id.String()).Str("by", caller.ID.String()).
		Dur("duration", call.Duration()).Msg("call ended")
	o.notifyBoth(call, core.CallEnded(id), caller.Conn)
	return nil
}

// UpdateCallStatus lets a participant move the call along the lifecycle,
// e.g. report a failed media negotiation.
func (o *Orchestrator) UpdateCallStatus(_ context.Context, caller core.Caller, id domain.CallID, raw string) error {
	const op = "update_call_status"
	status, err := domain.ParseCallStatus(raw)
	if err != nil {
		return o.CallFail(caller, op, "Invalid call status", err)
	}
	call, ok := o.Calls.GetCall(id)
	if !ok {
		return o.CallFail(caller, op, "Call not found", domain.ErrCallNotFound)
	}
	if !call.IsParticipant(caller.ID) {
		return o.CallFail(caller, op, "Not authorized to update this call", domain.ErrNotParticipant)
	}

	call, err = o.Calls.Transition(id, status, "")
	if err != nil {
		return o.CallFail(caller, op, "Invalid call status transition", err)
	}
	o.Metrics.CallTransition(string(status))

	log.Debug().Str("module", "orch").Str("call", id.String()).Str("status", string(status)).Msg("call status updated")
	if status.IsTerminal() {
		o.notifyBoth(call, core.CallEnded(id), caller.Conn)
	}
	return nil
}

// NotifyExpired announces calls reclaimed by the sweeper to both sides.
func (o *Orchestrator) NotifyExpired(calls []domain.Call) {
	o.Metrics.CallsExpired(len(calls))
	for _, call := range calls {
		o.Metrics.CallTransition(string(call.Status))
		log.Info().Str("module", "orch").Str("call", call.ID.String()).Msg("call expired")
		o.notifyBoth(call, core.CallEnded(call.ID), "")
	}
}
