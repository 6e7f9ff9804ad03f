// Package socketio serves the lobby protocol over Socket.IO. Event names and
// payloads match the WebSocket adapter; create/join answer through the ack
// callback when the client supplies one.
package socketio

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"

	"github.com/dkeye/Lobby/internal/app/orch"
	"github.com/dkeye/Lobby/internal/core"
)

const maxHTTPBufferSize = 64 << 10

type Options struct {
	AllowedOrigin string
	SendBuffer    int
	PingInterval  time.Duration
}

type Server struct {
	Orch *orch.Orchestrator
	sio  *socket.Server
	opts *socket.ServerOptions

	sendBuffer int
}

func NewServer(o *orch.Orchestrator, opts Options) *Server {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 25 * time.Second
	}
	origin := opts.AllowedOrigin
	if origin == "" {
		origin = "*"
	}

	c := socket.DefaultServerOptions()
	c.SetServeClient(false)
	c.SetPingInterval(opts.PingInterval)
	c.SetPingTimeout(opts.PingInterval / 2)
	c.SetMaxHttpBufferSize(maxHTTPBufferSize)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      origin,
		Credentials: true,
	})

	s := &Server{
		Orch:       o,
		sio:        socket.NewServer(nil, nil),
		opts:       c,
		sendBuffer: opts.SendBuffer,
	}
	s.sio.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		s.onConnection(client)
	})
	return s
}

// Mount registers the Socket.IO endpoints on r.
func (s *Server) Mount(r gin.IRoutes) {
	h := gin.WrapH(s.sio.ServeHandler(s.opts))
	r.GET("/socket.io/*f", h)
	r.POST("/socket.io/*f", h)
	log.Info().Str("module", "socketio").Msg("mounted /socket.io")
}

func (s *Server) Close() {
	s.sio.Close(nil)
}

func (s *Server) onConnection(client *socket.Socket) {
	sid := core.SessionID(client.Id())
	conn := newSocketConn(client, s.sendBuffer)

	// Disconnect re-enters the disconnect listener, so never call it inline.
	kick := func() { go client.Disconnect(true) }
	s.Orch.Connect(sid, conn, kick, handshakeName(client))
	log.Info().Str("module", "socketio").Str("sid", string(sid)).Msg("new socket.io connection")

	h := &handlers{orch: s.Orch, sid: sid, conn: conn}
	client.On(core.CmdSetDisplayName, h.setDisplayName)
	client.On(core.CmdCreateLobby, h.createLobby)
	client.On(core.CmdJoinLobbyByCode, h.joinLobbyByCode)
	client.On(core.CmdLeaveLobby, h.leaveLobby)
	client.On(core.CmdJoinVoiceChannel, h.joinVoice)
	client.On(core.CmdLeaveVoiceChannel, h.leaveVoice)
	client.On(core.CmdRelayOffer, h.relay(core.SignalOffer))
	client.On(core.CmdRelayAnswer, h.relay(core.SignalAnswer))
	client.On(core.CmdRelayIceCandidate, h.relay(core.SignalCandidate))
	client.On(core.CmdWhoAmI, h.whoami)
	client.On(core.CmdPing, h.ping)
	client.On("disconnect", func(...any) {
		s.Orch.OnDisconnect(sid)
		conn.Close()
		log.Info().Str("module", "socketio").Str("sid", string(sid)).Msg("socket.io disconnected")
	})
}

// handshakeName reads an optional auth.displayName sent with the handshake.
func handshakeName(client *socket.Socket) string {
	hs := client.Handshake()
	if hs == nil {
		return ""
	}
	auth, ok := hs.Auth.(map[string]any)
	if !ok {
		return ""
	}
	name, _ := auth["displayName"].(string)
	return name
}
