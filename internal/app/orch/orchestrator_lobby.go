package orch

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
)

// CreateLobby makes a new lobby with sid as its only member. A connection
// already in another lobby leaves it first.
func (o *Orchestrator) CreateLobby(sid core.SessionID, lobbyName, displayName string) (core.LobbySnapshot, error) {
	var (
		snap core.LobbySnapshot
		err  error
	)
	if !o.Registry.WithSession(sid, func() {
		snap, err = o.createLobby(sid, lobbyName, displayName)
	}) {
		return core.LobbySnapshot{}, core.ErrAlreadyTerminated
	}
	return snap, err
}

func (o *Orchestrator) createLobby(sid core.SessionID, lobbyName, displayName string) (core.LobbySnapshot, error) {
	if !o.Limiter.Allow(sid) {
		return core.LobbySnapshot{}, core.ErrRateLimited
	}
	conn, err := o.signalOf(sid)
	if err != nil {
		return core.LobbySnapshot{}, err
	}

	name := o.displayName(sid, displayName)
	// only an explicit name is remembered for later requests
	o.Registry.UpdateUsername(sid, displayName)
	o.leaveCurrent(sid)

	title := domain.ResolveName(domain.MaxLobbyNameLen, lobbyName, o.defaultLobbyName())
	lobby, snap, res := o.Lobbies.Create(title, sid, name, conn)
	o.Registry.UpdateLobby(sid, lobby.Lobby().ID)
	o.applyPolicy(res)
	return snap, nil
}

// JoinByCode adds sid to the lobby holding code. An unknown code fails with
// core.ErrNotFound before anything is changed. Joining the lobby sid is
// already in is a safe repeat.
func (o *Orchestrator) JoinByCode(sid core.SessionID, code domain.InviteCode, displayName string) (core.LobbySnapshot, error) {
	var (
		snap core.LobbySnapshot
		err  error
	)
	if !o.Registry.WithSession(sid, func() {
		snap, err = o.joinByCode(sid, code, displayName)
	}) {
		return core.LobbySnapshot{}, core.ErrAlreadyTerminated
	}
	return snap, err
}

func (o *Orchestrator) joinByCode(sid core.SessionID, code domain.InviteCode, displayName string) (core.LobbySnapshot, error) {
	if !o.Limiter.Allow(sid) {
		return core.LobbySnapshot{}, core.ErrRateLimited
	}
	lobby, ok := o.Lobbies.ResolveInviteCode(code)
	if !ok {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("code", string(code)).Msg("unknown invite code")
		return core.LobbySnapshot{}, fmt.Errorf("invite code %q: %w", code, core.ErrNotFound)
	}
	conn, err := o.signalOf(sid)
	if err != nil {
		return core.LobbySnapshot{}, err
	}

	name := o.displayName(sid, displayName)
	if current, ok := o.Registry.LobbyOf(sid); ok && current != lobby.Lobby().ID {
		o.leaveCurrent(sid)
	}

	snap, res, err := lobby.AddMember(sid, name, conn)
	if err != nil {
		// the last member left between lookup and join
		return core.LobbySnapshot{}, fmt.Errorf("lobby %s: %w", lobby.Lobby().ID, err)
	}
	o.Registry.UpdateUsername(sid, displayName)
	o.Registry.UpdateLobby(sid, lobby.Lobby().ID)
	o.applyPolicy(res)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("lobby", string(lobby.Lobby().ID)).Msg("joined by code")
	return snap, nil
}

// LeaveLobby is the explicit form of the disconnect teardown; the connection
// stays open and falls back to Named or Unbound.
func (o *Orchestrator) LeaveLobby(sid core.SessionID) error {
	var err error
	if !o.Registry.WithSession(sid, func() {
		id, ok := o.leaveCurrent(sid)
		if !ok {
			err = fmt.Errorf("leave: %w", core.ErrNotMember)
			return
		}
		conn, serr := o.signalOf(sid)
		if serr != nil {
			err = serr
			return
		}
		if sendErr := conn.TrySend(core.LobbyLeft{Envelope: core.Envelope{Type: core.EventLobbyLeft}, LobbyID: id}); sendErr != nil {
			o.applyPolicy(core.PublishResult{Dropped: []core.SessionID{sid}})
		}
	}) {
		return core.ErrAlreadyTerminated
	}
	return err
}

// leaveCurrent removes sid from the lobby it is bound to, if any.
func (o *Orchestrator) leaveCurrent(sid core.SessionID) (domain.LobbyID, bool) {
	id, ok := o.Registry.LobbyOf(sid)
	if !ok {
		return "", false
	}
	o.removeFromLobby(sid, id)
	o.Registry.RemoveLobby(sid)
	return id, true
}

// removeFromLobby runs the roster teardown and deletes the lobby once empty.
func (o *Orchestrator) removeFromLobby(sid core.SessionID, id domain.LobbyID) {
	lobby, ok := o.Lobbies.Get(id)
	if !ok {
		return
	}
	removed, empty, res := lobby.RemoveMember(sid)
	if empty {
		o.Lobbies.Remove(id)
	}
	o.applyPolicy(res)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("lobby", string(id)).Bool("removed", removed).Bool("lobby_closed", empty).Msg("left lobby")
}
