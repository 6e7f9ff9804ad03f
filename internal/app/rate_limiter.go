package app

import (
	"sync"
	"time"

	"github.com/dkeye/Lobby/internal/core"
)

// JoinRateLimiter is a sliding-window limiter per connection for lobby
// create/join requests, so invite codes cannot be brute-forced over one socket.
type JoinRateLimiter struct {
	mu       sync.Mutex
	history  map[core.SessionID][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewJoinRateLimiter(limit int, interval time.Duration) *JoinRateLimiter {
	return &JoinRateLimiter{
		history:  make(map[core.SessionID][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *JoinRateLimiter) Allow(sid core.SessionID) bool {
	if rl == nil || rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	// 1. drop attempts that fell out of the window
	attempts := rl.history[sid]
	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	// 2. full window blocks
	if len(fresh) >= rl.limit {
		rl.history[sid] = fresh
		return false
	}

	// 3. otherwise record this attempt
	rl.history[sid] = append(fresh, now)
	return true
}

// Forget drops the history of a terminated connection.
func (rl *JoinRateLimiter) Forget(sid core.SessionID) {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	delete(rl.history, sid)
	rl.mu.Unlock()
}
