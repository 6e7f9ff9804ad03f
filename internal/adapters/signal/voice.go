package signal

import "github.com/dkeye/Lobby/internal/core"

// Voice requests never get a reply; failures are logged by the orchestrator.

func (ctl *SignalWSController) handleJoinVoice(sid core.SessionID, conn *WsSignalConn, data []byte) {
	var p core.VoiceRequest
	if !ctl.decode(conn, data, &p) {
		return
	}
	_ = ctl.Orch.JoinVoice(sid, p.LobbyID, p.ChannelID, p.DisplayName)
}

func (ctl *SignalWSController) handleLeaveVoice(sid core.SessionID, conn *WsSignalConn, data []byte) {
	var p core.VoiceRequest
	if !ctl.decode(conn, data, &p) {
		return
	}
	_ = ctl.Orch.LeaveVoice(sid, p.LobbyID, p.ChannelID)
}
