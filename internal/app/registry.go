package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
)

type sessionEntry struct {
	LobbyID domain.LobbyID
	Session core.MemberSession
	Cancel  context.CancelFunc
	State   domain.ConnState

	// op serializes inbound events of one connection.
	op sync.Mutex
}

// Registry tracks every live connection: its transport session, its display
// name and the one lobby it is bound to. Terminated connections are forgotten,
// so an unknown sid reads as StateTerminated.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	users    map[core.SessionID]*domain.User
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		users:    make(map[core.SessionID]*domain.User),
	}
}

func (r *Registry) BindSignal(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel, State: domain.StateUnbound}
	r.users[sid] = &domain.User{ID: sid}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

// GetUser returns a copy of the connection's user record.
func (r *Registry) GetUser(sid core.SessionID) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[sid]
	if !ok {
		return domain.User{}, false
	}
	return *u, true
}

func (r *Registry) DisplayName(sid core.SessionID) string {
	u, _ := r.GetUser(sid)
	return u.Username
}

// UpdateUsername sets the per-connection name. Unbound connections become Named.
func (r *Registry) UpdateUsername(sid core.SessionID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[sid]
	if !ok || !u.SetUsername(name) {
		return false
	}
	if e := r.sessions[sid]; e != nil && e.State == domain.StateUnbound {
		e.State = domain.StateNamed
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("username", u.Username).Msg("updated username")
	return true
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) State(sid core.SessionID) domain.ConnState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.State
	}
	return domain.StateTerminated
}

func (r *Registry) LobbyOf(sid core.SessionID) (domain.LobbyID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.LobbyID == "" {
		return "", false
	}
	return entry.LobbyID, true
}

func (r *Registry) UpdateLobby(sid core.SessionID, lobby domain.LobbyID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.LobbyID = lobby
	entry.State = domain.StateInLobby
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("lobby", string(lobby)).Msg("updated lobby")
	return true
}

// RemoveLobby drops the lobby binding; the connection falls back to Named or Unbound.
func (r *Registry) RemoveLobby(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return
	}
	entry.LobbyID = ""
	entry.State = domain.StateUnbound
	if u := r.users[sid]; u != nil && u.Username != "" {
		entry.State = domain.StateNamed
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed lobby association")
}

// Terminate forgets sid and returns the lobby it was bound to, if any.
// It reports false when sid was already terminated.
func (r *Registry) Terminate(sid core.SessionID) (domain.LobbyID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return "", false
	}
	delete(r.sessions, sid)
	delete(r.users, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("lobby", string(entry.LobbyID)).Msg("terminated session")
	return entry.LobbyID, true
}

// Cancel asks the transport owning sid to shut down. Teardown then arrives
// through the normal disconnect path.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

// WithSession runs fn while holding sid's event lock, so events of one
// connection never interleave. It reports false if sid is terminated.
func (r *Registry) WithSession(sid core.SessionID, fn func()) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	e.op.Lock()
	defer e.op.Unlock()

	r.mu.RLock()
	current := r.sessions[sid] == e
	r.mu.RUnlock()
	if !current {
		return false
	}
	fn()
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
