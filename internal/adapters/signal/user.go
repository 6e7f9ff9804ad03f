package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/core"
)

func (ctl *SignalWSController) handleSetDisplayName(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p core.SetDisplayNameRequest
	if !ctl.decode(conn, data, &p) {
		return
	}
	if err := ctl.Orch.SetName(sid, p.Name); err != nil {
		if errors.Is(err, core.ErrInvalidName) {
			ctl.sendError(conn, core.CodeInvalidName)
		}
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("rename")
}

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	ctl.send(conn, ctl.Orch.WhoAmI(sid))
}
