package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Parley/internal/adapters/membership"
	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/app/orch"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSDP = "v=0\r\no=- 4215775240449105457 2 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\n"

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type testServer struct {
	url  string
	orch *orch.Orchestrator
	hub  *Hub
}

func newTestServer(t *testing.T, opts ...func(*SignalWSController)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	o := &orch.Orchestrator{
		Registry:   app.NewRegistry(app.DefaultMaxConnectionsPerUser),
		Calls:      app.NewCallStore(app.DefaultHistorySize),
		Limiter:    app.NewRateLimiter(app.DefaultRateLimit, app.DefaultRateWindow),
		Policy:     app.SimplePolicy{},
		Membership: membership.Open{},
		Transport:  hub,
		Metrics:    metrics.New(prometheus.NewRegistry()),
	}
	ctl := NewSignalWSController(o, hub)
	for _, opt := range opts {
		opt(ctl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		user := c.Query("user")
		ctl.HandleSignal(ctx, c, domain.Identity{ID: domain.UserID(user), Name: strings.ToUpper(user)})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &testServer{url: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws", orch: o, hub: hub}
}

// dial connects user and waits until the server processed the connect.
func (s *testServer) dial(t *testing.T, user string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(s.url+"?user="+user, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	send(t, ws, map[string]any{"type": OpPing})
	expect(t, ws, "pong")
	return ws
}

func send(t *testing.T, ws *websocket.Conn, msg any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(msg))
}

func read(t *testing.T, ws *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, ws.ReadJSON(&f))
	return f
}

func expect(t *testing.T, ws *websocket.Conn, typ string) frame {
	t.Helper()
	f := read(t, ws)
	require.Equal(t, typ, f.Type, "payload: %s", f.Data)
	return f
}

func TestSignalCallFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.dial(t, "alice")
	bob := s.dial(t, "bob")

	send(t, alice, map[string]any{"type": OpInitiateCall, "calleeId": "bob", "callType": "video"})

	var incoming struct {
		CallID     string `json:"callId"`
		CallerID   string `json:"callerId"`
		CallerName string `json:"callerName"`
		CallType   string `json:"callType"`
	}
	require.NoError(t, json.Unmarshal(expect(t, bob, "IncomingCall").Data, &incoming))
	assert.Equal(t, "alice", incoming.CallerID)
	assert.Equal(t, "ALICE", incoming.CallerName)
	assert.Equal(t, "video", incoming.CallType)
	expect(t, alice, "CallRinging")

	send(t, bob, map[string]any{"type": OpAcceptCall, "callId": incoming.CallID})
	expect(t, alice, "CallAccepted")
	expect(t, bob, "CallConnected")

	send(t, alice, map[string]any{"type": OpSendOffer, "callId": incoming.CallID, "sdp": testSDP})
	var offer struct {
		SDP string `json:"sdp"`
	}
	require.NoError(t, json.Unmarshal(expect(t, bob, "ReceiveOffer").Data, &offer))
	assert.Equal(t, testSDP, offer.SDP)

	candidate := `{"candidate":"candidate:1 1 udp 2130706431 192.0.2.1 54400 typ host","sdpMid":"0","sdpMLineIndex":0}`
	send(t, bob, map[string]any{"type": OpSendIceCandidate, "callId": incoming.CallID, "candidate": json.RawMessage(candidate)})
	var ice struct {
		Candidate string `json:"candidate"`
	}
	require.NoError(t, json.Unmarshal(expect(t, alice, "ReceiveIceCandidate").Data, &ice))
	assert.JSONEq(t, candidate, ice.Candidate)

	send(t, bob, map[string]any{"type": OpEndCall, "callId": incoming.CallID})
	expect(t, alice, "CallEnded")
	expect(t, bob, "CallEnded")

	call, ok := s.orch.Calls.GetCall(domain.CallID(incoming.CallID))
	require.True(t, ok)
	assert.Equal(t, domain.CallEnded, call.Status)
}

func TestSignalConversationEvents(t *testing.T) {
	s := newTestServer(t)
	alice := s.dial(t, "alice")
	bob := s.dial(t, "bob")

	send(t, alice, map[string]any{"type": OpJoinConversation, "roomId": "r1"})
	expect(t, alice, "UserJoined")
	send(t, bob, map[string]any{"type": OpJoinConversation, "roomId": "r1"})
	expect(t, alice, "UserJoined")
	expect(t, bob, "UserJoined")

	send(t, bob, map[string]any{"type": OpSendTyping, "roomId": "r1"})
	var typing struct {
		UserID   string `json:"userId"`
		IsTyping bool   `json:"isTyping"`
	}
	require.NoError(t, json.Unmarshal(expect(t, alice, "TypingIndicator").Data, &typing))
	assert.Equal(t, "bob", typing.UserID)
	assert.True(t, typing.IsTyping)

	require.NoError(t, bob.Close())
	var presence struct {
		UserID   string `json:"userId"`
		IsOnline bool   `json:"isOnline"`
	}
	require.NoError(t, json.Unmarshal(expect(t, alice, "PresenceUpdated").Data, &presence))
	assert.Equal(t, "bob", presence.UserID)
	assert.False(t, presence.IsOnline)
	assert.Eventually(t, func() bool { return s.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSignalRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	alice := s.dial(t, "alice")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("{not json")))
	expect(t, alice, "Error")

	send(t, alice, map[string]any{"type": "Teleport"})
	expect(t, alice, "Error")

	send(t, alice, map[string]any{"type": OpJoinConversation, "roomId": "  "})
	expect(t, alice, "Error")

	send(t, alice, map[string]any{"type": OpAcceptCall})
	var e struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(expect(t, alice, "CallError").Data, &e))
	assert.Equal(t, "Invalid call id", e.Message)

	send(t, alice, map[string]any{"type": OpInitiateCall, "calleeId": "ghost", "callType": "voice"})
	require.NoError(t, json.Unmarshal(expect(t, alice, "CallError").Data, &e))
	assert.Equal(t, "User is not online", e.Message)
}

func TestSilentSocketIsDropped(t *testing.T) {
	s := newTestServer(t, func(ctl *SignalWSController) {
		ctl.PongWait = 300 * time.Millisecond
	})
	s.dial(t, "alice")
	require.True(t, s.orch.Registry.IsOnline("alice"))

	assert.Eventually(t, func() bool {
		return !s.orch.Registry.IsOnline("alice") && s.hub.Len() == 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestMessageCandidateForms(t *testing.T) {
	obj := `{"candidate":"c","sdpMid":"0"}`
	quoted, err := json.Marshal(obj)
	require.NoError(t, err)

	assert.Equal(t, obj, message{Candidate: json.RawMessage(obj)}.candidate())
	assert.Equal(t, obj, message{Candidate: quoted}.candidate())
}
