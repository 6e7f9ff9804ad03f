package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/core"
)

// handleRelay forwards an offer, answer or ICE candidate to its target.
// The payload is never parsed and the sender never hears about drops.
func (ctl *SignalWSController) handleRelay(
	sid core.SessionID,
	conn *WsSignalConn,
	cmd string,
	data []byte,
) {
	kind, _ := core.RelayKind(cmd)
	var p core.RelayRequest
	if !ctl.decode(conn, data, &p) {
		return
	}
	if err := ctl.Orch.Relay(kind, sid, p.TargetConnectionID, p.Payload(kind)); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("target", string(p.TargetConnectionID)).Msg("relay dropped")
	}
}
