package socketio

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/app/orch"
	"github.com/dkeye/Lobby/internal/core"
)

type handlers struct {
	orch *orch.Orchestrator
	sid  core.SessionID
	conn *socketConn
}

func (h *handlers) setDisplayName(args ...any) {
	var p core.SetDisplayNameRequest
	if err := decodeArgs(args, &p); err != nil {
		h.fail(err)
		return
	}
	if err := h.orch.SetName(h.sid, p.Name); err != nil && errors.Is(err, core.ErrInvalidName) {
		h.fail(err)
	}
}

func (h *handlers) createLobby(args ...any) {
	var p core.CreateLobbyRequest
	if err := decodeArgs(args, &p); err != nil {
		h.reply(args, core.NewLobbyResult(core.EventCreateLobbyResult, "", nil, err))
		return
	}
	snap, err := h.orch.CreateLobby(h.sid, p.LobbyName, p.DisplayName)
	if err != nil {
		h.reply(args, core.NewLobbyResult(core.EventCreateLobbyResult, p.RequestID, nil, err))
		return
	}
	h.reply(args, core.NewLobbyResult(core.EventCreateLobbyResult, p.RequestID, &snap, nil))
}

func (h *handlers) joinLobbyByCode(args ...any) {
	var p core.JoinLobbyRequest
	if err := decodeArgs(args, &p); err != nil {
		h.reply(args, core.NewLobbyResult(core.EventJoinLobbyResult, "", nil, err))
		return
	}
	snap, err := h.orch.JoinByCode(h.sid, p.InviteCode, p.DisplayName)
	if err != nil {
		log.Info().Err(err).Str("module", "socketio").Str("sid", string(h.sid)).Msg("join by code failed")
		h.reply(args, core.NewLobbyResult(core.EventJoinLobbyResult, p.RequestID, nil, err))
		return
	}
	h.reply(args, core.NewLobbyResult(core.EventJoinLobbyResult, p.RequestID, &snap, nil))
}

func (h *handlers) leaveLobby(...any) {
	_ = h.orch.LeaveLobby(h.sid)
}

func (h *handlers) joinVoice(args ...any) {
	var p core.VoiceRequest
	if err := decodeArgs(args, &p); err != nil {
		h.fail(err)
		return
	}
	_ = h.orch.JoinVoice(h.sid, p.LobbyID, p.ChannelID, p.DisplayName)
}

func (h *handlers) leaveVoice(args ...any) {
	var p core.VoiceRequest
	if err := decodeArgs(args, &p); err != nil {
		h.fail(err)
		return
	}
	_ = h.orch.LeaveVoice(h.sid, p.LobbyID, p.ChannelID)
}

func (h *handlers) relay(kind core.SignalKind) func(...any) {
	return func(args ...any) {
		var p core.RelayRequest
		if err := decodeArgs(args, &p); err != nil {
			h.fail(err)
			return
		}
		if err := h.orch.Relay(kind, h.sid, p.TargetConnectionID, p.Payload(kind)); err != nil {
			log.Debug().Err(err).Str("module", "socketio").Str("sid", string(h.sid)).Str("target", string(p.TargetConnectionID)).Msg("relay dropped")
		}
	}
}

func (h *handlers) whoami(args ...any) {
	h.reply(args, h.orch.WhoAmI(h.sid))
}

func (h *handlers) ping(args ...any) {
	h.reply(args, core.NewPong())
}

func (h *handlers) fail(err error) {
	_ = h.conn.TrySend(core.NewErrorEvent(core.ErrorCode(err)))
}

// reply answers through the ack callback if the client sent one, otherwise
// as a regular event. Both go through the connection queue, so a result
// never overtakes the lobbyJoined sent for the same request.
func (h *handlers) reply(args []any, ev core.Event) {
	if ack := findAck(args); ack.IsValid() {
		if err := h.conn.TrySendAck(func() { callAck(ack, ev) }); err != nil {
			log.Debug().Err(err).Str("module", "socketio").Str("event", ev.EventName()).Msg("ack dropped")
		}
		return
	}
	if err := h.conn.TrySend(ev); err != nil {
		log.Debug().Err(err).Str("module", "socketio").Str("event", ev.EventName()).Msg("reply dropped")
	}
}

// decodeArgs maps the first non-callback argument onto v. Missing
// arguments leave v zero.
func decodeArgs(args []any, v any) error {
	if len(args) == 0 || isFunc(args[0]) || args[0] == nil {
		return nil
	}
	data, err := json.Marshal(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrBadPayload, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrBadPayload, err)
	}
	return nil
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// findAck returns the trailing callback, if any.
func findAck(args []any) reflect.Value {
	if len(args) == 0 || !isFunc(args[len(args)-1]) {
		return reflect.Value{}
	}
	return reflect.ValueOf(args[len(args)-1])
}

// callAck invokes an ack of shape func([]any, error) or func(...any).
func callAck(ack reflect.Value, payload any) {
	t := ack.Type()
	switch {
	case t.IsVariadic() && t.NumIn() == 1:
		ack.Call([]reflect.Value{reflect.ValueOf(payload)})
	case t.NumIn() == 2 && t.In(0).Kind() == reflect.Slice:
		in := []reflect.Value{reflect.ValueOf([]any{payload}), reflect.Zero(t.In(1))}
		ack.Call(in)
	case t.NumIn() == 1:
		arg := reflect.ValueOf(payload)
		if !arg.Type().AssignableTo(t.In(0)) {
			if t.In(0).Kind() == reflect.Slice {
				arg = reflect.ValueOf([]any{payload})
			} else {
				log.Warn().Str("module", "socketio").Str("ack", t.String()).Msg("unsupported ack signature")
				return
			}
		}
		ack.Call([]reflect.Value{arg})
	default:
		log.Warn().Str("module", "socketio").Str("ack", t.String()).Msg("unsupported ack signature")
	}
}
