package signal

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Lobby/internal/app"
	"github.com/dkeye/Lobby/internal/app/orch"
	"github.com/dkeye/Lobby/internal/core"
)

type wsClient struct {
	t  *testing.T
	ws *websocket.Conn
	id string
}

func newTestServer(t *testing.T) (*httptest.Server, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	o := orch.New(orch.Options{Policy: app.SimplePolicy{}})
	ctl := NewSignalWSController(o, Options{PingPeriod: time.Second, SendBuffer: 16})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c, "") })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, o
}

func dial(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	c := &wsClient{t: t, ws: ws}
	hello := c.expect(core.EventHello)
	c.id = hello["connectionId"].(string)
	require.NotEmpty(t, c.id)
	return c
}

func (c *wsClient) send(v map[string]any) {
	c.t.Helper()
	require.NoError(c.t, c.ws.WriteJSON(v))
}

func (c *wsClient) sendRaw(s string) {
	c.t.Helper()
	require.NoError(c.t, c.ws.WriteMessage(websocket.TextMessage, []byte(s)))
}

// expect reads until an event of type typ arrives, skipping others.
func (c *wsClient) expect(typ string) map[string]any {
	c.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(c.t, c.ws.SetReadDeadline(deadline))
		_, data, err := c.ws.ReadMessage()
		require.NoError(c.t, err, "waiting for %s", typ)
		var msg map[string]any
		require.NoError(c.t, json.Unmarshal(data, &msg))
		if msg["type"] == typ {
			return msg
		}
	}
}

func TestWS_LobbyVoiceAndRelayFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	alice.send(map[string]any{"type": core.CmdCreateLobby, "requestId": "r1", "lobbyName": "Test", "displayName": "alice"})
	res := alice.expect(core.EventCreateLobbyResult)
	require.Equal(t, true, res["ok"])
	assert.Equal(t, "r1", res["requestId"])
	lobby := res["lobby"].(map[string]any)
	code := lobby["inviteCode"].(string)
	lobbyID := lobby["id"].(string)
	assert.Len(t, code, app.InviteCodeLength)
	assert.Len(t, lobby["channels"], 3)

	bob.send(map[string]any{"type": core.CmdJoinLobbyByCode, "inviteCode": code, "displayName": "bob"})
	joined := bob.expect(core.EventJoinLobbyResult)
	require.Equal(t, true, joined["ok"])

	mj := alice.expect(core.EventMemberJoined)
	assert.Equal(t, bob.id, mj["connectionId"])
	assert.Equal(t, "bob", mj["displayName"])

	bob.send(map[string]any{"type": core.CmdJoinVoiceChannel, "lobbyId": lobbyID, "channelId": "voice-genel"})
	existing := bob.expect(core.EventVoiceExistingUsers)
	assert.Empty(t, existing["users"])

	alice.send(map[string]any{"type": core.CmdJoinVoiceChannel, "lobbyId": lobbyID, "channelId": "voice-genel"})
	existing = alice.expect(core.EventVoiceExistingUsers)
	users := existing["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, bob.id, users[0].(map[string]any)["connectionId"])
	vj := bob.expect(core.EventVoiceUserJoined)
	assert.Equal(t, alice.id, vj["connectionId"])

	alice.send(map[string]any{"type": core.CmdRelayOffer, "targetConnectionId": bob.id, "sdp": map[string]any{"type": "offer", "sdp": "v=0"}})
	offer := bob.expect(core.EventOfferReceived)
	assert.Equal(t, alice.id, offer["fromConnectionId"])
	assert.Equal(t, map[string]any{"type": "offer", "sdp": "v=0"}, offer["payload"])

	bob.send(map[string]any{"type": core.CmdRelayIceCandidate, "targetConnectionId": alice.id, "candidate": "candidate:0"})
	cand := alice.expect(core.EventIceCandidateReceived)
	assert.Equal(t, bob.id, cand["fromConnectionId"])
	assert.Equal(t, "candidate:0", cand["payload"])

	require.NoError(t, bob.ws.Close())
	left := alice.expect(core.EventVoiceUserLeft)
	assert.Equal(t, bob.id, left["connectionId"])
	ml := alice.expect(core.EventMemberLeft)
	assert.Equal(t, bob.id, ml["connectionId"])
}

func TestWS_UnknownInviteCode(t *testing.T) {
	srv, o := newTestServer(t)
	c := dial(t, srv)

	c.send(map[string]any{"type": core.CmdJoinLobbyByCode, "requestId": "x", "inviteCode": "NOPE22"})
	res := c.expect(core.EventJoinLobbyResult)
	assert.Equal(t, false, res["ok"])
	assert.Equal(t, core.CodeNotFound, res["error"])
	assert.Equal(t, "x", res["requestId"])
	assert.Empty(t, o.Lobbies.List())
}

func TestWS_BadInputGetsErrorEvent(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dial(t, srv)

	c.sendRaw("{not json")
	assert.Equal(t, core.CodeBadPayload, c.expect(core.EventError)["error"])

	c.send(map[string]any{"type": "launchRockets"})
	assert.Equal(t, core.CodeUnknownType, c.expect(core.EventError)["error"])

	c.sendRaw(`{"type":"createLobby","lobbyName":42}`)
	res := c.expect(core.EventCreateLobbyResult)
	assert.Equal(t, false, res["ok"])
	assert.Equal(t, core.CodeBadPayload, res["error"])

	// still usable afterwards
	c.send(map[string]any{"type": core.CmdPing})
	c.expect(core.EventPong)
}

func TestWS_SetNameAndWhoAmI(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dial(t, srv)

	c.send(map[string]any{"type": core.CmdSetDisplayName, "name": "  zeynep "})
	c.send(map[string]any{"type": core.CmdWhoAmI})
	me := c.expect(core.EventWhoAmI)
	assert.Equal(t, c.id, me["connectionId"])
	assert.Equal(t, "zeynep", me["displayName"])
	assert.Equal(t, "named", me["state"])

	c.send(map[string]any{"type": core.CmdSetDisplayName, "name": ""})
	assert.Equal(t, core.CodeInvalidName, c.expect(core.EventError)["error"])
}

func TestWS_LeaveLobby(t *testing.T) {
	srv, o := newTestServer(t)
	c := dial(t, srv)

	c.send(map[string]any{"type": core.CmdCreateLobby})
	res := c.expect(core.EventCreateLobbyResult)
	lobbyID := res["lobby"].(map[string]any)["id"].(string)

	c.send(map[string]any{"type": core.CmdLeaveLobby})
	left := c.expect(core.EventLobbyLeft)
	assert.Equal(t, lobbyID, left["lobbyId"])
	assert.Empty(t, o.Lobbies.List())
}

func TestWS_DisconnectReleasesLobby(t *testing.T) {
	srv, o := newTestServer(t)
	c := dial(t, srv)

	c.send(map[string]any{"type": core.CmdCreateLobby, "lobbyName": "solo"})
	c.expect(core.EventCreateLobbyResult)
	require.Len(t, o.Lobbies.List(), 1)

	require.NoError(t, c.ws.Close())
	assert.Eventually(t, func() bool {
		return len(o.Lobbies.List()) == 0 && o.Registry.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
