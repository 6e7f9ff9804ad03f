package orch

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
)

// JoinVoice puts sid into a voice channel of a lobby it is a member of.
// Failures are reported for logging only; the caller sends nothing back.
func (o *Orchestrator) JoinVoice(sid core.SessionID, lobbyID domain.LobbyID, ch domain.ChannelID, displayName string) error {
	var err error
	if !o.Registry.WithSession(sid, func() {
		lobby, ok := o.Lobbies.Get(lobbyID)
		if !ok {
			err = fmt.Errorf("lobby %s: %w", lobbyID, core.ErrNotFound)
			return
		}
		// empty falls back to the roster name under the lobby lock
		res, jerr := lobby.JoinVoice(ch, sid, domain.NormalizeName(displayName, domain.MaxUsernameLen))
		if jerr != nil {
			err = fmt.Errorf("voice %s/%s: %w", lobbyID, ch, jerr)
			return
		}
		o.applyPolicy(res)
	}) {
		return core.ErrAlreadyTerminated
	}
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("lobby", string(lobbyID)).Str("channel", string(ch)).Msg("join voice ignored")
	}
	return err
}

func (o *Orchestrator) LeaveVoice(sid core.SessionID, lobbyID domain.LobbyID, ch domain.ChannelID) error {
	var err error
	if !o.Registry.WithSession(sid, func() {
		lobby, ok := o.Lobbies.Get(lobbyID)
		if !ok {
			err = fmt.Errorf("lobby %s: %w", lobbyID, core.ErrNotFound)
			return
		}
		present, res := lobby.LeaveVoice(ch, sid)
		if !present {
			err = fmt.Errorf("voice %s/%s: %w", lobbyID, ch, core.ErrNotFound)
		}
		o.applyPolicy(res)
	}) {
		return core.ErrAlreadyTerminated
	}
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("lobby", string(lobbyID)).Str("channel", string(ch)).Msg("leave voice ignored")
	}
	return err
}

// Relay forwards one negotiation message from -> to. Unknown targets are
// dropped; the returned error is never shown to the sender.
func (o *Orchestrator) Relay(kind core.SignalKind, from, to core.SessionID, payload json.RawMessage) error {
	var err error
	if !o.Registry.WithSession(from, func() {
		var res core.PublishResult
		res, err = o.Relays.Forward(kind, from, to, payload)
		o.applyPolicy(res)
	}) {
		return core.ErrAlreadyTerminated
	}
	return err
}
