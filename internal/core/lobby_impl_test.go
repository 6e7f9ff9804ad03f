package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/core/coretest"
	"github.com/dkeye/Lobby/internal/domain"
)

func newTestLobby() core.LobbyService {
	return core.NewLobbyService(&domain.Lobby{
		ID:         "lobby-1",
		Name:       "Test",
		InviteCode: "ABC234",
		OwnerID:    "a",
		CreatedAt:  time.UnixMilli(1700000000000),
		Channels:   domain.DefaultChannels(),
	})
}

func TestAddMember_SnapshotToJoinerBroadcastToOthers(t *testing.T) {
	l := newTestLobby()
	a, b := coretest.NewConn(), coretest.NewConn()

	_, res, err := l.AddMember("a", "alice", a)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SendTo)

	snap, res, err := l.AddMember("b", "bob", b)
	require.NoError(t, err)
	assert.Equal(t, 2, res.SendTo)
	assert.Empty(t, res.Dropped)

	assert.Equal(t, []core.MemberDTO{
		{ConnectionID: "a", DisplayName: "alice"},
		{ConnectionID: "b", DisplayName: "bob"},
	}, snap.Members)
	assert.Equal(t, domain.InviteCode("ABC234"), snap.InviteCode)
	assert.Len(t, snap.Channels, 3)
	assert.Contains(t, snap.VoiceMembers, domain.ChannelVoiceGeneral)
	assert.Empty(t, snap.VoiceMembers[domain.ChannelVoiceGeneral])

	joined := a.Named(core.EventMemberJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, core.SessionID("b"), joined[0].(core.MemberJoined).ConnectionID)
	assert.Equal(t, "bob", joined[0].(core.MemberJoined).DisplayName)

	assert.Empty(t, b.Named(core.EventMemberJoined), "joiner must not hear about itself")
	require.Len(t, b.Named(core.EventLobbyJoined), 1)
	assert.Equal(t, snap, b.Named(core.EventLobbyJoined)[0].(core.LobbyJoined).Lobby)
}

func TestAddMember_IsIdempotentPerConnection(t *testing.T) {
	l := newTestLobby()
	a, b := coretest.NewConn(), coretest.NewConn()
	_, _, _ = l.AddMember("a", "alice", a)
	_, _, _ = l.AddMember("b", "bob", b)

	snap, _, err := l.AddMember("b", "bobby", b)
	require.NoError(t, err)
	assert.Equal(t, 2, l.MemberCount())
	assert.Equal(t, "bobby", snap.Members[1].DisplayName)
	assert.Len(t, a.Named(core.EventMemberJoined), 2)
}

func TestRemoveMember_BroadcastsDepartureAndClosesWhenEmpty(t *testing.T) {
	l := newTestLobby()
	a, b := coretest.NewConn(), coretest.NewConn()
	_, _, _ = l.AddMember("a", "alice", a)
	_, _, _ = l.AddMember("b", "bob", b)

	removed, empty, _ := l.RemoveMember("b")
	assert.True(t, removed)
	assert.False(t, empty)
	left := a.Named(core.EventMemberLeft)
	require.Len(t, left, 1)
	assert.Equal(t, core.SessionID("b"), left[0].(core.MemberLeft).ConnectionID)

	removed, empty, _ = l.RemoveMember("b")
	assert.False(t, removed)
	assert.False(t, empty)

	removed, empty, _ = l.RemoveMember("a")
	assert.True(t, removed)
	assert.True(t, empty)
	assert.True(t, l.Closed())

	_, _, err := l.AddMember("c", "carol", coretest.NewConn())
	assert.ErrorIs(t, err, core.ErrLobbyClosed)
}

func TestRemoveMember_LeavesVoiceBeforeRoster(t *testing.T) {
	l := newTestLobby()
	a, b := coretest.NewConn(), coretest.NewConn()
	_, _, _ = l.AddMember("a", "alice", a)
	_, _, _ = l.AddMember("b", "bob", b)
	_, err := l.JoinVoice(domain.ChannelVoiceGeneral, "b", "")
	require.NoError(t, err)
	a.Reset()

	_, _, _ = l.RemoveMember("b")

	events := a.Events()
	require.Len(t, events, 2)
	assert.Equal(t, core.EventVoiceUserLeft, events[0].EventName())
	assert.Equal(t, core.EventMemberLeft, events[1].EventName())
	assert.Empty(t, l.VoiceChannelsOf("b"))
	assert.Empty(t, l.Snapshot().VoiceMembers[domain.ChannelVoiceGeneral])
}

func TestBroadcast_ReportsDroppedSessions(t *testing.T) {
	l := newTestLobby()
	a, b := coretest.NewConn(), coretest.NewConn()
	_, _, _ = l.AddMember("a", "alice", a)
	a.SetFull(true)

	_, res, err := l.AddMember("b", "bob", b)
	require.NoError(t, err)
	assert.Equal(t, []core.SessionID{"a"}, res.Dropped)
	assert.Equal(t, 1, res.SendTo)
}

func TestInfo_CountsMembersAndVoice(t *testing.T) {
	l := newTestLobby()
	_, _, _ = l.AddMember("a", "alice", coretest.NewConn())
	_, _, _ = l.AddMember("b", "bob", coretest.NewConn())
	_, _ = l.JoinVoice(domain.ChannelVoiceGeneral, "a", "")

	info := l.Info()
	assert.Equal(t, 2, info.MemberCount)
	assert.Equal(t, 1, info.VoiceCount)
	assert.Equal(t, int64(1700000000000), info.CreatedAt)
}
