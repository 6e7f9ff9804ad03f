package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/core"
)

func (ctl *SignalWSController) handleCreateLobby(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p core.CreateLobbyRequest
	if err := decodeInto(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad createLobby payload")
		ctl.send(conn, core.NewLobbyResult(core.EventCreateLobbyResult, "", nil, err))
		return
	}
	snap, err := ctl.Orch.CreateLobby(sid, p.LobbyName, p.DisplayName)
	if err != nil {
		ctl.send(conn, core.NewLobbyResult(core.EventCreateLobbyResult, p.RequestID, nil, err))
		return
	}
	ctl.send(conn, core.NewLobbyResult(core.EventCreateLobbyResult, p.RequestID, &snap, nil))
}

func (ctl *SignalWSController) handleJoinLobbyByCode(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p core.JoinLobbyRequest
	if err := decodeInto(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad joinLobbyByCode payload")
		ctl.send(conn, core.NewLobbyResult(core.EventJoinLobbyResult, "", nil, err))
		return
	}
	snap, err := ctl.Orch.JoinByCode(sid, p.InviteCode, p.DisplayName)
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join by code failed")
		ctl.send(conn, core.NewLobbyResult(core.EventJoinLobbyResult, p.RequestID, nil, err))
		return
	}
	ctl.send(conn, core.NewLobbyResult(core.EventJoinLobbyResult, p.RequestID, &snap, nil))
}

// handleLeaveLobby keeps the socket open; lobbyLeft is sent by the orchestrator.
func (ctl *SignalWSController) handleLeaveLobby(sid core.SessionID) {
	if err := ctl.Orch.LeaveLobby(sid); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("leave ignored")
	}
}
