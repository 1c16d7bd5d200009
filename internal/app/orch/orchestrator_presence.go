package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

// Connect registers the connection. The first connection of a user marks
// them online in every conversation that currently has someone in it.
func (o *Orchestrator) Connect(ctx context.Context, caller core.Caller) error {
	res := o.Registry.Connect(caller.ID, caller.Conn)
	if res.Evicted != "" {
		o.Transport.Close(res.Evicted)
	}
	if !res.First {
		return nil
	}

	rooms, err := o.Membership.ConversationsOf(ctx, caller.ID)
	if err != nil {
		return fmt.Errorf("connect: list conversations: %w", err)
	}
	ev := core.PresenceUpdated(caller.ID, true)
	for _, room := range rooms {
		o.broadcastRoom(room, ev, "")
	}
	return nil
}

// Disconnect drops the connection. When it was the user's last one, the
// rooms they were in hear that they went offline.
func (o *Orchestrator) Disconnect(ctx context.Context, caller core.Caller) error {
	rooms := o.Registry.RoomsForUser(caller.ID)
	if o.Registry.Disconnect(caller.ID, caller.Conn) {
		return nil
	}

	ev := core.PresenceUpdated(caller.ID, false)
	for _, room := range rooms {
		o.broadcastRoom(room, ev, "")
	}
	if o.LastSeen != nil {
		if err := o.LastSeen.Touch(ctx, caller.ID, o.now()); err != nil {
			return fmt.Errorf("disconnect: record last seen: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) JoinRoom(ctx context.Context, caller core.Caller, room domain.RoomID) error {
	const op = "join_room"
	ok, err := o.Membership.IsMember(ctx, caller.ID, room)
	if err != nil {
		return o.Fail(caller, op, "Failed to join conversation", err)
	}
	if !ok {
		return o.Fail(caller, op, "You are not authorized to join this conversation", domain.ErrUnauthorized)
	}
	added, err := o.Registry.JoinRoom(caller.ID, room, caller.Conn)
	if err != nil {
		return o.Fail(caller, op, "Failed to join conversation", err)
	}
	if !added {
		return nil
	}

	log.Info().Str("module", "orch").Str("user", caller.ID.String()).Str("room", room.String()).Msg("joined conversation")
	o.broadcastRoom(room, core.UserJoined(room, caller.ID), "")
	return nil
}

// LeaveRoom is a no-op for connections that were not in room.
func (o *Orchestrator) LeaveRoom(_ context.Context, caller core.Caller, room domain.RoomID) error {
	if !o.Registry.LeaveRoom(caller.ID, room, caller.Conn) {
		return nil
	}
	o.broadcastRoom(room, core.UserLeft(room, caller.ID), "")
	return nil
}

// Typing relays a typing indicator to the room. Throttled starts are
// dropped without telling the client.
func (o *Orchestrator) Typing(_ context.Context, caller core.Caller, room domain.RoomID, typing bool) error {
	if !o.Registry.IsUserInRoom(caller.ID, room) {
		return o.Fail(caller, "typing", "You are not a member of this conversation", domain.ErrNotParticipant)
	}
	if typing && !o.Limiter.Allow(caller.ID) {
		o.Metrics.RateLimited()
		return fmt.Errorf("typing: %w", domain.ErrRateLimited)
	}
	o.broadcastRoom(room, core.TypingIndicator(room, caller.ID, typing), caller.Conn)
	return nil
}
