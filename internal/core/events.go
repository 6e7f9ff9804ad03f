package core

import (
	"encoding/json"

	"github.com/dkeye/Lobby/internal/domain"
)

const (
	EventHello                = "hello"
	EventCreateLobbyResult    = "createLobbyResult"
	EventJoinLobbyResult      = "joinLobbyByCodeResult"
	EventLobbyJoined          = "lobbyJoined"
	EventLobbyLeft            = "lobbyLeft"
	EventMemberJoined         = "memberJoined"
	EventMemberLeft           = "memberLeft"
	EventVoiceExistingUsers   = "voiceExistingUsers"
	EventVoiceUserJoined      = "voiceUserJoined"
	EventVoiceUserLeft        = "voiceUserLeft"
	EventOfferReceived        = "offerReceived"
	EventAnswerReceived       = "answerReceived"
	EventIceCandidateReceived = "iceCandidateReceived"
	EventWhoAmI               = "whoami"
	EventPong                 = "pong"
	EventError                = "error"
)

// Envelope carries the event name as a flat "type" field.
type Envelope struct {
	Type string `json:"type"`
}

func (e Envelope) EventName() string { return e.Type }

type Hello struct {
	Envelope
	ConnectionID SessionID `json:"connectionId"`
}

// LobbyResult answers createLobby and joinLobbyByCode.
type LobbyResult struct {
	Envelope
	RequestID string         `json:"requestId,omitempty"`
	OK        bool           `json:"ok"`
	Lobby     *LobbySnapshot `json:"lobby,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func NewLobbyResult(event, requestID string, snap *LobbySnapshot, err error) LobbyResult {
	res := LobbyResult{Envelope: Envelope{Type: event}, RequestID: requestID}
	if err != nil {
		res.Error = ErrorCode(err)
		return res
	}
	res.OK = true
	res.Lobby = snap
	return res
}

type LobbyJoined struct {
	Envelope
	Lobby LobbySnapshot `json:"lobby"`
}

type LobbyLeft struct {
	Envelope
	LobbyID domain.LobbyID `json:"lobbyId"`
}

type MemberJoined struct {
	Envelope
	LobbyID      domain.LobbyID `json:"lobbyId"`
	ConnectionID SessionID      `json:"connectionId"`
	DisplayName  string         `json:"displayName"`
}

type MemberLeft struct {
	Envelope
	LobbyID      domain.LobbyID `json:"lobbyId"`
	ConnectionID SessionID      `json:"connectionId"`
}

type VoiceExistingUsers struct {
	Envelope
	LobbyID   domain.LobbyID   `json:"lobbyId"`
	ChannelID domain.ChannelID `json:"channelId"`
	Users     []MemberDTO      `json:"users"`
}

type VoiceUserJoined struct {
	Envelope
	LobbyID      domain.LobbyID   `json:"lobbyId"`
	ChannelID    domain.ChannelID `json:"channelId"`
	ConnectionID SessionID        `json:"connectionId"`
	DisplayName  string           `json:"displayName"`
}

type VoiceUserLeft struct {
	Envelope
	LobbyID      domain.LobbyID   `json:"lobbyId"`
	ChannelID    domain.ChannelID `json:"channelId"`
	ConnectionID SessionID        `json:"connectionId"`
}

// SignalKind is one of the three WebRTC negotiation messages the relay carries.
type SignalKind string

const (
	SignalOffer     SignalKind = "offer"
	SignalAnswer    SignalKind = "answer"
	SignalCandidate SignalKind = "candidate"
)

// ReceivedEvent is the outbound event name for a relayed message of kind k.
func (k SignalKind) ReceivedEvent() string {
	switch k {
	case SignalOffer:
		return EventOfferReceived
	case SignalAnswer:
		return EventAnswerReceived
	case SignalCandidate:
		return EventIceCandidateReceived
	}
	return ""
}

// SignalReceived is a relayed offer/answer/candidate. Payload is forwarded verbatim.
type SignalReceived struct {
	Envelope
	FromConnectionID SessionID       `json:"fromConnectionId"`
	Payload          json.RawMessage `json:"payload"`
}

type WhoAmI struct {
	Envelope
	ConnectionID SessionID      `json:"connectionId"`
	DisplayName  string         `json:"displayName,omitempty"`
	LobbyID      domain.LobbyID `json:"lobbyId,omitempty"`
	State        string         `json:"state"`
}

type ErrorEvent struct {
	Envelope
	Error string `json:"error"`
}

func NewErrorEvent(code string) ErrorEvent {
	return ErrorEvent{Envelope: Envelope{Type: EventError}, Error: code}
}
