package app

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/core"
)

// SessionLookup is the slice of Registry the relay needs.
type SessionLookup interface {
	GetSession(sid core.SessionID) (core.MemberSession, bool)
}

// SignalRelay forwards offers, answers and ICE candidates to one target
// connection, tagged with the sender. It keeps no state and never inspects
// the payload. Unknown targets are dropped: delivery is best effort,
// at most once, and ordered per sender/target pair only because each
// transport connection is.
type SignalRelay struct {
	Sessions SessionLookup
}

func NewSignalRelay(sessions SessionLookup) *SignalRelay {
	return &SignalRelay{Sessions: sessions}
}

// Forward returns core.ErrNotFound for an unknown target; the error is for
// logging only and must not reach the sender.
func (r *SignalRelay) Forward(kind core.SignalKind, from, to core.SessionID, payload json.RawMessage) (core.PublishResult, error) {
	res := core.PublishResult{}
	event := kind.ReceivedEvent()
	if event == "" {
		return res, fmt.Errorf("signal kind %q: %w", kind, core.ErrNotFound)
	}
	target, ok := r.Sessions.GetSession(to)
	if !ok || target.Signal() == nil {
		log.Debug().Str("module", "app.relay").Str("kind", string(kind)).Str("from", string(from)).Str("target", string(to)).Msg("target gone, dropped")
		return res, fmt.Errorf("relay target %s: %w", to, core.ErrNotFound)
	}

	err := target.Signal().TrySend(core.SignalReceived{
		Envelope:         core.Envelope{Type: event},
		FromConnectionID: from,
		Payload:          payload,
	})
	if err != nil {
		log.Debug().Err(err).Str("module", "app.relay").Str("kind", string(kind)).Str("from", string(from)).Str("target", string(to)).Msg("send failed, dropped")
		res.Dropped = append(res.Dropped, to)
		return res, nil
	}
	res.SendTo = 1
	return res, nil
}
