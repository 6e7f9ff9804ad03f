package domain

import "time"

type (
	LobbyID    string
	InviteCode string
	ChannelID  string
)

type ChannelKind string

const (
	ChannelText  ChannelKind = "text"
	ChannelVoice ChannelKind = "voice"
)

type Channel struct {
	ID   ChannelID   `json:"id"`
	Name string      `json:"name"`
	Kind ChannelKind `json:"type"`
}

const (
	ChannelChat         ChannelID = "text-sohbet"
	ChannelGame         ChannelID = "text-oyun"
	ChannelVoiceGeneral ChannelID = "voice-genel"
)

// DefaultChannels returns a fresh copy of the channel set every lobby starts with.
func DefaultChannels() []Channel {
	return []Channel{
		{ID: ChannelChat, Name: "# Sohbet", Kind: ChannelText},
		{ID: ChannelGame, Name: "# Oyun", Kind: ChannelText},
		{ID: ChannelVoiceGeneral, Name: "🔊 Genel Sohbet", Kind: ChannelVoice},
	}
}

// Lobby is the immutable part of a lobby. Rosters live in core.
type Lobby struct {
	ID         LobbyID
	Name       string
	InviteCode InviteCode
	OwnerID    ConnID
	CreatedAt  time.Time
	Channels   []Channel
}

func (l *Lobby) Channel(id ChannelID) (Channel, bool) {
	for _, c := range l.Channels {
		if c.ID == id {
			return c, true
		}
	}
	return Channel{}, false
}

func (l *Lobby) IsVoiceChannel(id ChannelID) bool {
	c, ok := l.Channel(id)
	return ok && c.Kind == ChannelVoice
}
