package signal

import "github.com/dkeye/Lobby/internal/core"

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	ctl.send(conn, core.NewPong())
}
