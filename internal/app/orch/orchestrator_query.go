package orch

import (
	"context"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CallView is the REST shape of a call.
type CallView struct {
	ID              domain.CallID     `json:"id"`
	CallerID        domain.UserID     `json:"callerId"`
	CalleeID        domain.UserID     `json:"calleeId"`
	CallType        domain.CallKind   `json:"callType"`
	Status          domain.CallStatus `json:"status"`
	RoomID          domain.RoomID     `json:"roomId,omitempty"`
	StartedAt       time.Time         `json:"startedAt"`
	ConnectedAt     *time.Time        `json:"connectedAt,omitempty"`
	EndedAt         *time.Time        `json:"endedAt,omitempty"`
	DurationSeconds int64             `json:"durationSeconds"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
}

func NewCallView(c domain.Call) CallView {
	v := CallView{
		ID:              c.ID,
		CallerID:        c.CallerID,
		CalleeID:        c.CalleeID,
		CallType:        c.Kind,
		Status:          c.Status,
		RoomID:          c.RoomID,
		StartedAt:       c.StartedAt,
		DurationSeconds: int64(c.Duration().Seconds()),
		RejectionReason: c.RejectionReason,
	}
	if !c.ConnectedAt.IsZero() {
		v.ConnectedAt = lo.ToPtr(c.ConnectedAt)
	}
	if !c.EndedAt.IsZero() {
		v.EndedAt = lo.ToPtr(c.EndedAt)
	}
	return v
}

type HistoryPage struct {
	Calls      []CallView `json:"calls"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalCount int        `json:"totalCount"`
	TotalPages int        `json:"totalPages"`
}

// CallHistory pages through the user's calls, most recent first. Pages are
// 1-based; out of range values fall back to the defaults.
func (o *Orchestrator) CallHistory(user domain.UserID, page, pageSize int) HistoryPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	all := o.Calls.History(user)
	pages := (len(all) + pageSize - 1) / pageSize
	start := len(all)
	if page <= pages {
		start = (page - 1) * pageSize
	}
	end := min(start+pageSize, len(all))
	return HistoryPage{
		Calls:      lo.Map(all[start:end], func(c domain.Call, _ int) CallView { return NewCallView(c) }),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: len(all),
		TotalPages: pages,
	}
}

func (o *Orchestrator) ActiveCall(user domain.UserID) (CallView, bool) {
	call, ok := o.Calls.GetActiveCall(user)
	if !ok {
		return CallView{}, false
	}
	return NewCallView(call), true
}

// CallForParticipant hides calls from users who were not part of them.
func (o *Orchestrator) CallForParticipant(user domain.UserID, id domain.CallID) (CallView, error) {
	call, ok := o.Calls.GetCall(id)
	if !ok {
		return CallView{}, domain.ErrCallNotFound
	}
	if !call.IsParticipant(user) {
		return CallView{}, domain.ErrNotParticipant
	}
	return NewCallView(call), nil
}

type Availability struct {
	UserID      domain.UserID `json:"userId"`
	IsOnline    bool          `json:"isOnline"`
	IsAvailable bool          `json:"isAvailable"`
	CanCall     bool          `json:"canCall"`
	LastSeen    *time.Time    `json:"lastSeen,omitempty"`
}

// Availability tells user whether target can be called right now.
func (o *Orchestrator) Availability(ctx context.Context, user, target domain.UserID) Availability {
	a := Availability{
		UserID:      target,
		IsOnline:    o.Registry.IsOnline(target),
		IsAvailable: o.Calls.IsAvailable(target),
	}
	a.CanCall = a.IsOnline && o.Calls.CanPlaceCall(user, target)
	if a.IsOnline || o.LastSeen == nil {
		return a
	}
	at, ok, err := o.LastSeen.LastSeen(ctx, target)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("user", target.String()).Msg("last seen lookup failed")
		return a
	}
	if ok {
		a.LastSeen = &at
	}
	return a
}
