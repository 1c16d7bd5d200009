package orch

import (
	"fmt"
	"slices"
	"time"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Orchestrator turns inbound client operations into store mutations and
// outbound events. It keeps no state of its own; every operation is
// self-contained and safe to call from many connections at once.
type Orchestrator struct {
	Registry   *app.Registry
	Calls      *app.CallStore
	Limiter    *app.RateLimiter
	Policy     app.Policy
	Membership core.Membership
	LastSeen   core.LastSeenStore
	Transport  core.Transport
	Metrics    *metrics.Metrics
	Clock      func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

// deliver hands ev to one connection. A failure never aborts the caller's
// operation; the policy decides whether the connection is kicked.
func (o *Orchestrator) deliver(to domain.ConnectionID, ev core.Event) {
	err := o.Transport.Send(to, ev)
	if err == nil {
		o.Metrics.Delivered(string(ev.Name))
		return
	}

	action := app.DropFrame
	if o.Policy != nil {
		action = o.Policy.OnDeliveryFailure(to, err)
	}
	log.Warn().Err(err).Str("module", "orch").Str("conn", to.String()).
		Str("event", string(ev.Name)).Str("action", action.String()).Msg("delivery failed")
	o.Metrics.DeliveryFailed(string(ev.Name), action.String())

	switch action {
	case app.KickMember:
		o.Transport.Close(to)
	case app.MarkSlow, app.DropFrame, app.NoAction:
	}
}

func (o *Orchestrator) deliverAll(to []domain.ConnectionID, ev core.Event, except domain.ConnectionID) {
	for _, conn := range to {
		if conn == except {
			continue
		}
		o.deliver(conn, ev)
	}
}

func (o *Orchestrator) broadcastRoom(room domain.RoomID, ev core.Event, except domain.ConnectionID) {
	o.deliverAll(o.Registry.ConnectionsInRoom(room), ev, except)
}

// Fail reports err to the calling connection as an Error event.
func (o *Orchestrator) Fail(caller core.Caller, op, msg string, err error) error {
	o.deliver(caller.Conn, core.Error(msg))
	o.Metrics.Rejected(op)
	return fmt.Errorf("%s: %w", op, err)
}

// CallFail is Fail for call operations; the client sees a CallError event.
func (o *Orchestrator) CallFail(caller core.Caller, op, msg string, err error) error {
	o.deliver(caller.Conn, core.CallError(msg))
	o.Metrics.Rejected(op)
	return fmt.Errorf("%s: %w", op, err)
}

// target resolves the connection that currently speaks for user in call.
// A stored connection that died is replaced by the user's newest live one
// and the replacement is written back to the store.
func (o *Orchestrator) target(call domain.Call, user domain.UserID) domain.ConnectionID {
	stored := call.ConnectionFor(user)
	if stored != "" && o.Registry.HasConnection(user, stored) {
		return stored
	}
	conns := o.Registry.OnlineConnectionsForUser(user)
	if len(conns) == 0 {
		return ""
	}
	newest := conns[len(conns)-1]
	if o.Calls.UpdateConnectionID(call.ID, user, newest) {
		log.Debug().Str("module", "orch").Str("call", call.ID.String()).Str("user", user.String()).
			Str("from", stored.String()).Str("to", newest.String()).Msg("call connection migrated")
	}
	return newest
}

// sideTargets is where call-wide notices go for one side. A side that never
// picked a connection hears it on all of them.
func (o *Orchestrator) sideTargets(call domain.Call, user domain.UserID) []domain.ConnectionID {
	if call.ConnectionFor(user) == "" {
		return o.Registry.OnlineConnectionsForUser(user)
	}
	if conn := o.target(call, user); conn != "" {
		return []domain.ConnectionID{conn}
	}
	return nil
}

// notifyBoth sends ev to both sides of call, plus extra when it is not
// already among them.
func (o *Orchestrator) notifyBoth(call domain.Call, ev core.Event, extra domain.ConnectionID) {
	targets := append(o.sideTargets(call, call.CallerID), o.sideTargets(call, call.CalleeID)...)
	if extra != "" && !slices.Contains(targets, extra) {
		targets = append(targets, extra)
	}
	o.deliverAll(targets, ev, "")
}

// trackSender records the sender's connection when it moved to a new one.
func (o *Orchestrator) trackSender(call domain.Call, caller core.Caller) domain.Call {
	if call.ConnectionFor(caller.ID) == caller.Conn {
		return call
	}
	if o.Calls.UpdateConnectionID(call.ID, caller.ID, caller.Conn) {
		if caller.ID == call.CallerID {
			call.CallerConnectionID = caller.Conn
		} else {
			call.CalleeConnectionID = caller.Conn
		}
	}
	return call
}
