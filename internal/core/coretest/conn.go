// Package coretest provides a recording SignalConnection for tests.
package coretest

import (
	"sync"

	"github.com/dkeye/Lobby/internal/core"
)

// Conn records every event sent to it. Full makes TrySend fail with
// core.ErrBackpressure, Close makes it fail with core.ErrConnectionClosed.
type Conn struct {
	mu     sync.Mutex
	events []core.Event
	full   bool
	closed bool
}

func NewConn() *Conn { return &Conn{} }

func (c *Conn) TrySend(ev core.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Conn) SetFull(full bool) {
	c.mu.Lock()
	c.full = full
	c.mu.Unlock()
}

func (c *Conn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Events returns a copy of everything received so far.
func (c *Conn) Events() []core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Event(nil), c.events...)
}

// Named returns the received events with the given name, in order.
func (c *Conn) Named(name string) []core.Event {
	var out []core.Event
	for _, ev := range c.Events() {
		if ev.EventName() == name {
			out = append(out, ev)
		}
	}
	return out
}

func (c *Conn) Reset() {
	c.mu.Lock()
	c.events = nil
	c.mu.Unlock()
}
