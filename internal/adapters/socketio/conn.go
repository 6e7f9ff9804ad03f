package socketio

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/core"
)

// emitter is the part of *socket.Socket the outbox writes to.
type emitter interface {
	Emit(ev string, args ...any) error
}

// outbound is one queued item: an event to emit or an ack to invoke.
type outbound struct {
	ev  core.Event
	ack func()
}

// socketConn queues events and acks and runs them from one goroutine, so
// TrySend never blocks on the engine.io write path and an ack is never
// delivered ahead of the events queued before it.
type socketConn struct {
	out  emitter
	send chan outbound

	mu     sync.RWMutex
	closed bool
}

func newSocketConn(out emitter, buffer int) *socketConn {
	c := &socketConn{out: out, send: make(chan outbound, buffer)}
	go c.writeLoop()
	return c
}

func (c *socketConn) TrySend(ev core.Event) error {
	return c.enqueue(outbound{ev: ev})
}

// TrySendAck queues fn behind everything already sent.
func (c *socketConn) TrySendAck(fn func()) error {
	return c.enqueue(outbound{ack: fn})
}

func (c *socketConn) enqueue(item outbound) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- item:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *socketConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *socketConn) writeLoop() {
	for item := range c.send {
		if item.ack != nil {
			item.ack()
			continue
		}
		if err := c.out.Emit(item.ev.EventName(), item.ev); err != nil {
			log.Debug().Err(err).Str("module", "socketio").Str("event", item.ev.EventName()).Msg("emit failed")
		}
	}
}
