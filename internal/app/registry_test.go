package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/core/coretest"
	"github.com/dkeye/Lobby/internal/domain"
)

func TestRegistry_StateMachine(t *testing.T) {
	r := NewRegistry()
	r.BindSignal("a", core.NewMemberSession("a", coretest.NewConn()), nil)
	assert.Equal(t, domain.StateUnbound, r.State("a"))

	assert.False(t, r.UpdateUsername("a", "   "))
	assert.Equal(t, domain.StateUnbound, r.State("a"))

	require.True(t, r.UpdateUsername("a", "  alice "))
	assert.Equal(t, domain.StateNamed, r.State("a"))
	assert.Equal(t, "alice", r.DisplayName("a"))

	require.True(t, r.UpdateLobby("a", "lobby-1"))
	assert.Equal(t, domain.StateInLobby, r.State("a"))
	id, ok := r.LobbyOf("a")
	assert.True(t, ok)
	assert.Equal(t, domain.LobbyID("lobby-1"), id)

	// renaming while in a lobby keeps the lobby state
	require.True(t, r.UpdateUsername("a", "al"))
	assert.Equal(t, domain.StateInLobby, r.State("a"))

	r.RemoveLobby("a")
	assert.Equal(t, domain.StateNamed, r.State("a"))

	require.True(t, r.UpdateLobby("a", "lobby-2"))
	id, ok = r.Terminate("a")
	assert.True(t, ok)
	assert.Equal(t, domain.LobbyID("lobby-2"), id)
	assert.Equal(t, domain.StateTerminated, r.State("a"))

	_, ok = r.Terminate("a")
	assert.False(t, ok)
	assert.False(t, r.UpdateUsername("a", "ghost"))
	assert.False(t, r.UpdateLobby("a", "lobby-3"))
}

func TestRegistry_TruncatesLongNames(t *testing.T) {
	r := NewRegistry()
	r.BindSignal("a", core.NewMemberSession("a", coretest.NewConn()), nil)
	long := "ääääääääääääääääääääääääääääääääääääääää" // 40 runes
	require.True(t, r.UpdateUsername("a", long))
	assert.Equal(t, []rune(long)[:domain.MaxUsernameLen], []rune(r.DisplayName("a")))
}

func TestRegistry_CancelInvokesTransportCancel(t *testing.T) {
	r := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	r.BindSignal("a", core.NewMemberSession("a", coretest.NewConn()), cancel)

	assert.True(t, r.Cancel("a"))
	assert.Error(t, ctx.Err())
	assert.False(t, r.Cancel("missing"))
}

func TestRegistry_WithSession(t *testing.T) {
	r := NewRegistry()
	r.BindSignal("a", core.NewMemberSession("a", coretest.NewConn()), nil)

	ran := false
	assert.True(t, r.WithSession("a", func() { ran = true }))
	assert.True(t, ran)

	// terminating inside the lock is allowed
	assert.True(t, r.WithSession("a", func() { r.Terminate("a") }))
	assert.False(t, r.WithSession("a", func() { t.Fatal("must not run") }))
}
