package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/app/orch"
	"github.com/dkeye/Lobby/internal/core"
)

const writeWait = 5 * time.Second

type Options struct {
	ReadLimit     int64
	PingPeriod    time.Duration
	SendBuffer    int
	AllowedOrigin string
}

type SignalWSController struct {
	Orch *orch.Orchestrator
	opts Options

	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 64 << 10
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	ctl := &SignalWSController{Orch: o, opts: opts}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: ctl.checkOrigin}
	return ctl
}

func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	allowed := ctl.opts.AllowedOrigin
	if allowed == "" || allowed == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == allowed
}

// WsSignalConn is the core.SignalConnection of one WebSocket. Events are
// queued on send and written by writePump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Event

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(ev core.Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- ev:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and runs the connection until either
// side goes away or ctx is canceled. Every socket gets a fresh connection id.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, rememberedName string) {
	sid := core.SessionID(uuid.NewString())

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("remote", c.ClientIP()).Msg("new WS connection")

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Event, ctl.opts.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(sid, conn, cancel, rememberedName)

	// a kick or shutdown closes the socket, which unblocks readPump
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
