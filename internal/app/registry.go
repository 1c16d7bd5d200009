package app

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const DefaultMaxConnectionsPerUser = 5

type connEntry struct {
	user        domain.UserID
	connectedAt time.Time
	seq         uint64
	rooms       map[domain.RoomID]struct{}
}

type connSet = map[domain.ConnectionID]struct{}

// ConnectResult tells the caller what a Connect changed.
type ConnectResult struct {
	// First is true when the user had no connection before.
	First bool
	// Evicted is the connection dropped to respect the per-user cap.
	Evicted domain.ConnectionID
}

type RegistryStats struct {
	Users       int
	Connections int
	Rooms       int
}

// Registry is the presence registry: users, their live connections and the
// rooms each connection joined. One lock covers all three indices so every
// read sees a consistent snapshot.
type Registry struct {
	mu       sync.RWMutex
	maxConns int
	seq      uint64
	conns    map[domain.ConnectionID]*connEntry
	users    map[domain.UserID]connSet
	rooms    map[domain.RoomID]map[domain.UserID]connSet
}

func NewRegistry(maxConnsPerUser int) *Registry {
	if maxConnsPerUser <= 0 {
		maxConnsPerUser = DefaultMaxConnectionsPerUser
	}
	return &Registry{
		maxConns: maxConnsPerUser,
		conns:    make(map[domain.ConnectionID]*connEntry),
		users:    make(map[domain.UserID]connSet),
		rooms:    make(map[domain.RoomID]map[domain.UserID]connSet),
	}
}

func (r *Registry) Connect(user domain.UserID, conn domain.ConnectionID) ConnectResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.conns[conn]; ok {
		if e.user == user {
			return ConnectResult{}
		}
		r.removeLocked(conn)
	}

	res := ConnectResult{First: len(r.users[user]) == 0}
	if len(r.users[user]) >= r.maxConns {
		res.Evicted = r.oldestLocked(user)
		r.removeLocked(res.Evicted)
		log.Warn().Str("module", "app.registry").Str("user", user.String()).
			Str("evicted", res.Evicted.String()).Int("max", r.maxConns).Msg("connection limit reached, evicted oldest")
	}

	r.seq++
	r.conns[conn] = &connEntry{
		user:        user,
		connectedAt: time.Now(),
		seq:         r.seq,
		rooms:       make(map[domain.RoomID]struct{}),
	}
	if r.users[user] == nil {
		r.users[user] = make(connSet)
	}
	r.users[user][conn] = struct{}{}

	log.Info().Str("module", "app.registry").Str("user", user.String()).Str("conn", conn.String()).
		Int("connections", len(r.users[user])).Msg("connected")
	return res
}

// Disconnect drops conn and every room membership it held. It reports
// whether the user still has other live connections.
func (r *Registry) Disconnect(user domain.UserID, conn domain.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.conns[conn]; ok && e.user == user {
		r.removeLocked(conn)
		log.Info().Str("module", "app.registry").Str("user", user.String()).Str("conn", conn.String()).Msg("disconnected")
	}
	return len(r.users[user]) > 0
}

// JoinRoom reports whether conn was added to room; joining twice is a
// no-op that returns false. It fails when conn is not a live connection of
// user.
func (r *Registry) JoinRoom(user domain.UserID, room domain.RoomID, conn domain.ConnectionID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[conn]
	if !ok || e.user != user {
		return false, domain.ErrUserOffline
	}
	if _, in := e.rooms[room]; in {
		return false, nil
	}
	e.rooms[room] = struct{}{}
	members := r.rooms[room]
	if members == nil {
		members = make(map[domain.UserID]connSet)
		r.rooms[room] = members
	}
	if members[user] == nil {
		members[user] = make(connSet)
	}
	members[user][conn] = struct{}{}
	log.Debug().Str("module", "app.registry").Str("user", user.String()).Str("room", room.String()).Msg("joined room")
	return true, nil
}

// LeaveRoom reports whether conn was in room.
func (r *Registry) LeaveRoom(user domain.UserID, room domain.RoomID, conn domain.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[conn]
	if !ok || e.user != user {
		return false
	}
	if _, in := e.rooms[room]; !in {
		return false
	}
	delete(e.rooms, room)
	r.dropRoomMemberLocked(room, user, conn)
	log.Debug().Str("module", "app.registry").Str("user", user.String()).Str("room", room.String()).Msg("left room")
	return true
}

func (r *Registry) IsUserInRoom(user domain.UserID, room domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room][user]) > 0
}

func (r *Registry) IsOnline(user domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[user]) > 0
}

func (r *Registry) ConnectionCount(user domain.UserID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[user])
}

// HasConnection reports whether conn is live and owned by user.
func (r *Registry) HasConnection(user domain.UserID, conn domain.ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[conn]
	return ok && e.user == user
}

func (r *Registry) OwnerOf(conn domain.ConnectionID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[conn]; ok {
		return e.user, true
	}
	return "", false
}

// OnlineConnectionsForUser lists the user's connections, oldest first.
func (r *Registry) OnlineConnectionsForUser(user domain.UserID) []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := lo.Keys(r.users[user])
	slices.SortFunc(out, func(a, b domain.ConnectionID) int {
		return cmp.Compare(r.conns[a].seq, r.conns[b].seq)
	})
	return out
}

// Connections returns snapshots of the user's connections, oldest first.
func (r *Registry) Connections(user domain.UserID) []domain.Connection {
	ids := r.OnlineConnectionsForUser(user)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Connection, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.conns[id]; ok {
			out = append(out, domain.Connection{ID: id, UserID: e.user, ConnectedAt: e.connectedAt})
		}
	}
	return out
}

func (r *Registry) UsersInRoom(room domain.RoomID) []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := lo.Keys(r.rooms[room])
	slices.Sort(out)
	return out
}

func (r *Registry) ConnectionsInRoom(room domain.RoomID) []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ConnectionID
	for _, conns := range r.rooms[room] {
		out = append(out, lo.Keys(conns)...)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) RoomsForUser(user domain.UserID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := make(map[domain.RoomID]struct{})
	for conn := range r.users[user] {
		for room := range r.conns[conn].rooms {
			set[room] = struct{}{}
		}
	}
	out := lo.Keys(set)
	slices.Sort(out)
	return out
}

func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RegistryStats{Users: len(r.users), Connections: len(r.conns), Rooms: len(r.rooms)}
}

func (r *Registry) oldestLocked(user domain.UserID) domain.ConnectionID {
	var (
		oldest domain.ConnectionID
		seq    uint64
	)
	for conn := range r.users[user] {
		if e := r.conns[conn]; oldest == "" || e.seq < seq {
			oldest, seq = conn, e.seq
		}
	}
	return oldest
}

func (r *Registry) removeLocked(conn domain.ConnectionID) {
	e, ok := r.conns[conn]
	if !ok {
		return
	}
	for room := range e.rooms {
		r.dropRoomMemberLocked(room, e.user, conn)
	}
	delete(r.conns, conn)
	if set := r.users[e.user]; set != nil {
		delete(set, conn)
		if len(set) == 0 {
			delete(r.users, e.user)
		}
	}
}

func (r *Registry) dropRoomMemberLocked(room domain.RoomID, user domain.UserID, conn domain.ConnectionID) {
	members := r.rooms[room]
	if members == nil {
		return
	}
	if set := members[user]; set != nil {
		delete(set, conn)
		if len(set) == 0 {
			delete(members, user)
		}
	}
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}
