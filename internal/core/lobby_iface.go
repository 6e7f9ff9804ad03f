package core

import "github.com/dkeye/Lobby/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ConnectionID SessionID `json:"connectionId"`
	DisplayName  string    `json:"displayName"`
}

// LobbySnapshot is the serialized, read-only view of one lobby.
type LobbySnapshot struct {
	ID           domain.LobbyID                   `json:"id"`
	Name         string                           `json:"name"`
	InviteCode   domain.InviteCode                `json:"inviteCode"`
	OwnerID      SessionID                        `json:"ownerId"`
	CreatedAt    int64                            `json:"createdAt"`
	Channels     []domain.Channel                 `json:"channels"`
	Members      []MemberDTO                      `json:"members"`
	VoiceMembers map[domain.ChannelID][]MemberDTO `json:"voiceChannelMembers"`
}

// LobbyInfo is the public listing entry; it never carries the invite code.
type LobbyInfo struct {
	ID          domain.LobbyID `json:"id"`
	Name        string         `json:"name"`
	MemberCount int            `json:"memberCount"`
	VoiceCount  int            `json:"voiceCount"`
	CreatedAt   int64          `json:"createdAt"`
}

// LobbyService is the core-facing API of a lobby.
// It owns the roster and voice membership behind one mutex and sends
// every resulting event before releasing it. It never closes transports.
type LobbyService interface {
	Lobby() *domain.Lobby
	Info() LobbyInfo
	MemberCount() int
	HasMember(sid SessionID) bool
	Snapshot() LobbySnapshot
	Closed() bool

	// AddMember inserts or overwrites sid, sends it a lobbyJoined snapshot and
	// tells every other member with memberJoined.
	AddMember(sid SessionID, name string, conn SignalConnection) (LobbySnapshot, PublishResult, error)
	// RemoveMember tears sid down: every voice channel first, then the roster.
	// empty reports that the lobby is now closed for good.
	RemoveMember(sid SessionID) (removed, empty bool, res PublishResult)

	JoinVoice(ch domain.ChannelID, sid SessionID, name string) (PublishResult, error)
	LeaveVoice(ch domain.ChannelID, sid SessionID) (bool, PublishResult)
	VoiceChannelsOf(sid SessionID) []domain.ChannelID
}

// LobbyManager is the process-wide lobby registry.
type LobbyManager interface {
	Create(name string, owner SessionID, ownerName string, conn SignalConnection) (LobbyService, LobbySnapshot, PublishResult)
	Get(id domain.LobbyID) (LobbyService, bool)
	ResolveInviteCode(code domain.InviteCode) (LobbyService, bool)
	Remove(id domain.LobbyID) bool
	List() []LobbyInfo
}
