package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultHistorySize = 100

type callRecord struct {
	call domain.Call
	// refs counts the participant histories still holding this call.
	refs int
}

// CallStore owns every call record, the user to active call index and the
// per-user history. The availability check and the index update share one
// critical section, so a user can never hold two active calls.
type CallStore struct {
	mu         sync.Mutex
	calls      map[domain.CallID]*callRecord
	active     map[domain.UserID]domain.CallID
	history    map[domain.UserID]*historyRing[domain.CallID]
	historyCap int
	now        func() time.Time
}

func NewCallStore(historyCap int) *CallStore {
	if historyCap <= 0 {
		historyCap = DefaultHistorySize
	}
	return &CallStore{
		calls:      make(map[domain.CallID]*callRecord),
		active:     make(map[domain.UserID]domain.CallID),
		history:    make(map[domain.UserID]*historyRing[domain.CallID]),
		historyCap: historyCap,
		now:        time.Now,
	}
}

func (s *CallStore) CreateCall(
	caller, callee domain.UserID,
	kind domain.CallKind,
	callerConn domain.ConnectionID,
	room domain.RoomID,
) (domain.Call, error) {
	if caller == callee {
		return domain.Call{}, domain.ErrSelfCall
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[caller]; busy {
		return domain.Call{}, fmt.Errorf("caller %s: %w", caller, domain.ErrUnavailable)
	}
	if _, busy := s.active[callee]; busy {
		return domain.Call{}, fmt.Errorf("callee %s: %w", callee, domain.ErrUnavailable)
	}

	rec := &callRecord{call: domain.Call{
		ID:                 domain.CallID(uuid.NewString()),
		CallerID:           caller,
		CalleeID:           callee,
		Kind:               kind,
		Status:             domain.CallInitiated,
		RoomID:             room,
		StartedAt:          s.now(),
		CallerConnectionID: callerConn,
	}}
	s.calls[rec.call.ID] = rec
	s.active[caller] = rec.call.ID
	s.active[callee] = rec.call.ID
	s.pushHistoryLocked(caller, rec)
	s.pushHistoryLocked(callee, rec)

	log.Info().Str("module", "app.calls").Str("call", rec.call.ID.String()).
		Str("caller", caller.String()).Str("callee", callee.String()).Str("kind", string(kind)).Msg("call created")
	return rec.call, nil
}

// UpdateStatus applies status without checking the transition graph.
// It only fails for unknown ids. Moving a terminal call back to a live
// status does not re-enter it into the active index.
func (s *CallStore) UpdateStatus(id domain.CallID, status domain.CallStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.calls[id]
	if !ok {
		return false
	}
	s.applyLocked(rec, status, "")
	return true
}

// Transition is UpdateStatus restricted to the legal lifecycle graph.
// reason is recorded on the call when non-empty.
func (s *CallStore) Transition(id domain.CallID, status domain.CallStatus, reason string) (domain.Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.calls[id]
	if !ok {
		return domain.Call{}, domain.ErrCallNotFound
	}
	if !rec.call.Status.CanTransitionTo(status) {
		return rec.call, fmt.Errorf("%s -> %s: %w", rec.call.Status, status, domain.ErrIllegalTransition)
	}
	s.applyLocked(rec, status, reason)
	return rec.call, nil
}

// Accept moves a call to Connected and pins the callee's signaling
// connection to conn. Nothing changes when the transition is illegal.
func (s *CallStore) Accept(id domain.CallID, callee domain.UserID, conn domain.ConnectionID) (domain.Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.calls[id]
	if !ok {
		return domain.Call{}, domain.ErrCallNotFound
	}
	if rec.call.CalleeID != callee {
		return rec.call, domain.ErrNotParticipant
	}
	if !rec.call.Status.CanTransitionTo(domain.CallConnected) {
		return rec.call, fmt.Errorf("%s -> %s: %w", rec.call.Status, domain.CallConnected, domain.ErrIllegalTransition)
	}
	rec.call.CalleeConnectionID = conn
	s.applyLocked(rec, domain.CallConnected, "")
	return rec.call, nil
}

func (s *CallStore) UpdateConnectionID(id domain.CallID, user domain.UserID, conn domain.ConnectionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.calls[id]
	if !ok {
		return false
	}
	switch user {
	case rec.call.CallerID:
		rec.call.CallerConnectionID = conn
	case rec.call.CalleeID:
		rec.call.CalleeConnectionID = conn
	default:
		return false
	}
	return true
}

func (s *CallStore) GetCall(id domain.CallID) (domain.Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.calls[id]
	if !ok {
		return domain.Call{}, false
	}
	return rec.call, true
}

func (s *CallStore) GetActiveCall(user domain.UserID) (domain.Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.active[user]
	if !ok {
		return domain.Call{}, false
	}
	return s.calls[id].call, true
}

func (s *CallStore) IsAvailable(user domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.active[user]
	return !busy
}

func (s *CallStore) CanPlaceCall(caller, callee domain.UserID) bool {
	if caller == callee {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, callerBusy := s.active[caller]
	_, calleeBusy := s.active[callee]
	return !callerBusy && !calleeBusy
}

// History lists the user's calls, most recent first.
func (s *CallStore) History(user domain.UserID) []domain.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	ring, ok := s.history[user]
	if !ok {
		return nil
	}
	ids := ring.Newest()
	out := make([]domain.Call, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.calls[id]; ok {
			out = append(out, rec.call)
		}
	}
	return out
}

// ActiveCount is the number of calls not yet in a terminal status.
func (s *CallStore) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[domain.CallID]struct{}, len(s.active))
	for _, id := range s.active {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// SweepExpired fails every active call started more than maxAge ago and
// returns the reclaimed calls.
func (s *CallStore) SweepExpired(maxAge time.Duration) []domain.Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	var expired []domain.Call
	for _, id := range s.active {
		rec := s.calls[id]
		if rec.call.Status.IsTerminal() || !rec.call.StartedAt.Before(cutoff) {
			continue
		}
		s.applyLocked(rec, domain.CallFailed, "")
		expired = append(expired, rec.call)
	}
	if len(expired) > 0 {
		log.Info().Str("module", "app.calls").Int("count", len(expired)).Dur("max_age", maxAge).Msg("expired calls reclaimed")
	}
	return expired
}

func (s *CallStore) applyLocked(rec *callRecord, status domain.CallStatus, reason string) {
	now := s.now()
	prev := rec.call.Status
	rec.call.Status = status
	if status == domain.CallConnected && rec.call.ConnectedAt.IsZero() {
		rec.call.ConnectedAt = now
	}
	if reason != "" {
		rec.call.RejectionReason = reason
	}
	if status.IsTerminal() {
		if rec.call.EndedAt.IsZero() {
			rec.call.EndedAt = now
		}
		for _, u := range []domain.UserID{rec.call.CallerID, rec.call.CalleeID} {
			if s.active[u] == rec.call.ID {
				delete(s.active, u)
			}
		}
		if rec.refs == 0 {
			delete(s.calls, rec.call.ID)
		}
	}
	log.Debug().Str("module", "app.calls").Str("call", rec.call.ID.String()).
		Str("from", string(prev)).Str("to", string(status)).Msg("call status changed")
}

func (s *CallStore) pushHistoryLocked(user domain.UserID, rec *callRecord) {
	ring, ok := s.history[user]
	if !ok {
		ring = newHistoryRing[domain.CallID](s.historyCap)
		s.history[user] = ring
	}
	rec.refs++
	evicted, ok := ring.Push(rec.call.ID)
	if !ok {
		return
	}
	old, ok := s.calls[evicted]
	if !ok {
		return
	}
	old.refs--
	if old.refs == 0 && old.call.Status.IsTerminal() {
		delete(s.calls, evicted)
	}
}
