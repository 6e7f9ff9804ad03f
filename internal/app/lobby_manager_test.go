package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/core/coretest"
	"github.com/dkeye/Lobby/internal/domain"
)

// scriptedCodes replays a fixed list of codes, then repeats the last one.
type scriptedCodes struct {
	codes []domain.InviteCode
	calls int
}

func (s *scriptedCodes) Generate() domain.InviteCode {
	i := s.calls
	if i >= len(s.codes) {
		i = len(s.codes) - 1
	}
	s.calls++
	return s.codes[i]
}

func TestCreate_OwnerIsOnlyMember(t *testing.T) {
	m := NewLobbyManager(nil)
	conn := coretest.NewConn()

	lobby, snap, res := m.Create("Test", "a", "alice", conn)
	require.NotNil(t, lobby)
	assert.Equal(t, 1, res.SendTo)
	assert.Equal(t, "Test", snap.Name)
	assert.True(t, ValidInviteCode(string(snap.InviteCode)))
	assert.Equal(t, core.SessionID("a"), snap.OwnerID)
	assert.Equal(t, []core.MemberDTO{{ConnectionID: "a", DisplayName: "alice"}}, snap.Members)

	text, voice := 0, 0
	for _, c := range snap.Channels {
		switch c.Kind {
		case domain.ChannelText:
			text++
		case domain.ChannelVoice:
			voice++
		}
	}
	assert.Equal(t, 2, text)
	assert.Equal(t, 1, voice)

	got, ok := m.ResolveInviteCode(snap.InviteCode)
	require.True(t, ok)
	assert.Equal(t, snap.ID, got.Lobby().ID)
	require.Len(t, conn.Named(core.EventLobbyJoined), 1)
}

func TestCreate_RetriesUntilCodeIsFree(t *testing.T) {
	gen := &scriptedCodes{codes: []domain.InviteCode{"AAAAAA", "AAAAAA", "AAAAAA", "BBBBBB"}}
	m := NewLobbyManager(gen)

	_, first, _ := m.Create("one", "a", "alice", coretest.NewConn())
	_, second, _ := m.Create("two", "b", "bob", coretest.NewConn())

	assert.Equal(t, domain.InviteCode("AAAAAA"), first.InviteCode)
	assert.Equal(t, domain.InviteCode("BBBBBB"), second.InviteCode)
	assert.Equal(t, 4, gen.calls)
}

func TestResolveInviteCode_IsCaseSensitive(t *testing.T) {
	m := NewLobbyManager(&scriptedCodes{codes: []domain.InviteCode{"ABCDEF"}})
	_, _, _ = m.Create("one", "a", "alice", coretest.NewConn())

	_, ok := m.ResolveInviteCode("abcdef")
	assert.False(t, ok)
	_, ok = m.ResolveInviteCode("ABCDEF")
	assert.True(t, ok)
}

func TestRemove_ReleasesCodeOnlyWhenClosed(t *testing.T) {
	gen := &scriptedCodes{codes: []domain.InviteCode{"AAAAAA"}}
	m := NewLobbyManager(gen)
	lobby, snap, _ := m.Create("one", "a", "alice", coretest.NewConn())

	assert.False(t, m.Remove(snap.ID), "live lobby must not be removed")

	_, empty, _ := lobby.RemoveMember("a")
	require.True(t, empty)
	assert.True(t, m.Remove(snap.ID))
	assert.False(t, m.Remove(snap.ID))

	_, ok := m.ResolveInviteCode("AAAAAA")
	assert.False(t, ok)
	_, ok = m.Get(snap.ID)
	assert.False(t, ok)

	// the code is free again
	_, again, _ := m.Create("two", "b", "bob", coretest.NewConn())
	assert.Equal(t, domain.InviteCode("AAAAAA"), again.InviteCode)
}

func TestList_HidesInviteCodes(t *testing.T) {
	m := NewLobbyManager(nil)
	_, _, _ = m.Create("one", "a", "alice", coretest.NewConn())
	_, _, _ = m.Create("two", "b", "bob", coretest.NewConn())

	list := m.List()
	require.Len(t, list, 2)
	for _, info := range list {
		assert.Equal(t, 1, info.MemberCount)
	}
}
