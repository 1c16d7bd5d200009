package orch

import (
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/core/mock_core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type delivery struct {
	to domain.ConnectionID
	ev core.Event
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []delivery
	closed []domain.ConnectionID
	fail   map[domain.ConnectionID]error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{fail: make(map[domain.ConnectionID]error)}
}

func (f *fakeTransport) Send(to domain.ConnectionID, ev core.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, delivery{to: to, ev: ev})
	return nil
}

func (f *fakeTransport) Close(conn domain.ConnectionID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, conn)
}

// events returns what conn received since the last reset.
func (f *fakeTransport) events(conn domain.ConnectionID) []core.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Event
	for _, d := range f.sent {
		if d.to == conn {
			out = append(out, d.ev)
		}
	}
	return out
}

func (f *fakeTransport) names(conn domain.ConnectionID) []core.EventName {
	var out []core.EventName
	for _, ev := range f.events(conn) {
		out = append(out, ev.Name)
	}
	return out
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	f.sent = nil
	f.mu.Unlock()
}

type fixture struct {
	o   *Orchestrator
	tr  *fakeTransport
	mem *mock_core.MockMembership
	ctl *gomock.Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctl := gomock.NewController(t)
	tr := newFakeTransport()
	mem := mock_core.NewMockMembership(ctl)
	o := &Orchestrator{
		Registry:   app.NewRegistry(app.DefaultMaxConnectionsPerUser),
		Calls:      app.NewCallStore(app.DefaultHistorySize),
		Limiter:    app.NewRateLimiter(app.DefaultRateLimit, time.Minute),
		Policy:     app.SimplePolicy{},
		Membership: mem,
		Transport:  tr,
		Metrics:    metrics.New(prometheus.NewRegistry()),
	}
	return &fixture{o: o, tr: tr, mem: mem, ctl: ctl}
}

func caller(user domain.UserID, conn domain.ConnectionID) core.Caller {
	return core.Caller{Identity: domain.Identity{ID: user, Name: "Name of " + user.String()}, Conn: conn}
}

// connect brings c online; a user's first connection looks up their
// conversations, which the membership mock answers with rooms.
func (fx *fixture) connect(t *testing.T, c core.Caller, rooms ...domain.RoomID) {
	t.Helper()
	if !fx.o.Registry.IsOnline(c.ID) {
		fx.mem.EXPECT().ConversationsOf(gomock.Any(), c.ID).Return(rooms, nil)
	}
	require.NoError(t, fx.o.Connect(t.Context(), c))
}

func (fx *fixture) join(t *testing.T, c core.Caller, room domain.RoomID) {
	t.Helper()
	fx.mem.EXPECT().IsMember(gomock.Any(), c.ID, room).Return(true, nil)
	require.NoError(t, fx.o.JoinRoom(t.Context(), c, room))
}

func (fx *fixture) activeCall(t *testing.T, user domain.UserID) domain.Call {
	t.Helper()
	call, ok := fx.o.Calls.GetActiveCall(user)
	require.True(t, ok, "no active call for %s", user)
	return call
}

const testSDP = "v=0\r\no=- 4215775240449105457 2 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\n"

const testCandidate = `{"candidate":"candidate:1 1 udp 2130706431 192.0.2.1 54400 typ host","sdpMid":"0","sdpMLineIndex":0}`
