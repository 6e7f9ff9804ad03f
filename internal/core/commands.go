package core

import (
	"encoding/json"

	"github.com/dkeye/Lobby/internal/domain"
)

// Inbound command names. WebSocket clients send them as the "type" field,
// Socket.IO clients as the event name.
const (
	CmdSetDisplayName    = "setDisplayName"
	CmdCreateLobby       = "createLobby"
	CmdJoinLobbyByCode   = "joinLobbyByCode"
	CmdLeaveLobby        = "leaveLobby"
	CmdJoinVoiceChannel  = "joinVoiceChannel"
	CmdLeaveVoiceChannel = "leaveVoiceChannel"
	CmdRelayOffer        = "relayOffer"
	CmdRelayAnswer       = "relayAnswer"
	CmdRelayIceCandidate = "relayIceCandidate"
	CmdWhoAmI            = "whoami"
	CmdPing              = "ping"
)

type SetDisplayNameRequest struct {
	Name string `json:"name"`
}

type CreateLobbyRequest struct {
	RequestID   string `json:"requestId,omitempty"`
	LobbyName   string `json:"lobbyName,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type JoinLobbyRequest struct {
	RequestID   string            `json:"requestId,omitempty"`
	InviteCode  domain.InviteCode `json:"inviteCode"`
	DisplayName string            `json:"displayName,omitempty"`
}

type VoiceRequest struct {
	LobbyID     domain.LobbyID   `json:"lobbyId"`
	ChannelID   domain.ChannelID `json:"channelId"`
	DisplayName string           `json:"displayName,omitempty"`
}

// RelayRequest carries one negotiation message. Offers and answers use sdp,
// candidates use candidate; both are forwarded untouched.
type RelayRequest struct {
	TargetConnectionID SessionID       `json:"targetConnectionId"`
	SDP                json.RawMessage `json:"sdp,omitempty"`
	Candidate          json.RawMessage `json:"candidate,omitempty"`
}

// RelayKind maps a relay command to its signal kind.
func RelayKind(cmd string) (SignalKind, bool) {
	switch cmd {
	case CmdRelayOffer:
		return SignalOffer, true
	case CmdRelayAnswer:
		return SignalAnswer, true
	case CmdRelayIceCandidate:
		return SignalCandidate, true
	}
	return "", false
}

// Payload picks the field that matters for kind.
func (r RelayRequest) Payload(kind SignalKind) json.RawMessage {
	if kind == SignalCandidate {
		return r.Candidate
	}
	return r.SDP
}

// Pong answers ping.
type Pong struct {
	Envelope
}

func NewPong() Pong { return Pong{Envelope: Envelope{Type: EventPong}} }
