package app

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
)

type LobbyManagerImpl struct {
	mu      sync.RWMutex
	lobbies map[domain.LobbyID]core.LobbyService
	codes   map[domain.InviteCode]domain.LobbyID

	gen InviteCodeGenerator
	now func() time.Time
}

func NewLobbyManager(gen InviteCodeGenerator) core.LobbyManager {
	if gen == nil {
		gen = NewRandomInviteCodes()
	}
	return &LobbyManagerImpl{
		lobbies: make(map[domain.LobbyID]core.LobbyService),
		codes:   make(map[domain.InviteCode]domain.LobbyID),
		gen:     gen,
		now:     time.Now,
	}
}

// Create registers a new lobby with owner as its only member. The invite code
// is regenerated until it is not held by any live lobby.
func (m *LobbyManagerImpl) Create(name string, owner core.SessionID, ownerName string, conn core.SignalConnection) (core.LobbyService, core.LobbySnapshot, core.PublishResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := m.gen.Generate()
	attempts := 1
	for {
		if _, taken := m.codes[code]; !taken {
			break
		}
		code = m.gen.Generate()
		attempts++
	}

	lobby := &domain.Lobby{
		ID:         domain.LobbyID("lobby_" + uuid.NewString()),
		Name:       name,
		InviteCode: code,
		OwnerID:    owner,
		CreatedAt:  m.now(),
		Channels:   domain.DefaultChannels(),
	}
	svc := core.NewLobbyService(lobby)
	// A fresh lobby is never closed, AddMember cannot fail here.
	snap, res, _ := svc.AddMember(owner, ownerName, conn)

	m.lobbies[lobby.ID] = svc
	m.codes[code] = lobby.ID
	log.Info().Str("module", "app.lobbies").Str("lobby", string(lobby.ID)).Str("code", string(code)).Int("attempts", attempts).Str("owner", string(owner)).Msg("lobby created")
	return svc, snap, res
}

func (m *LobbyManagerImpl) Get(id domain.LobbyID) (core.LobbyService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lobbies[id]
	return l, ok
}

// ResolveInviteCode is an exact, case-sensitive lookup.
func (m *LobbyManagerImpl) ResolveInviteCode(code domain.InviteCode) (core.LobbyService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.codes[code]
	if !ok {
		return nil, false
	}
	l, ok := m.lobbies[id]
	return l, ok
}

// Remove deletes a closed lobby and releases its invite code.
// Lobbies that still have members are left alone.
func (m *LobbyManagerImpl) Remove(id domain.LobbyID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lobbies[id]
	if !ok || !l.Closed() {
		return false
	}
	delete(m.lobbies, id)
	code := l.Lobby().InviteCode
	if m.codes[code] == id {
		delete(m.codes, code)
	}
	log.Info().Str("module", "app.lobbies").Str("lobby", string(id)).Str("code", string(code)).Msg("lobby removed")
	return true
}

func (m *LobbyManagerImpl) List() []core.LobbyInfo {
	m.mu.RLock()
	out := make([]core.LobbyInfo, 0, len(m.lobbies))
	for _, l := range m.lobbies {
		out = append(out, l.Info())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt == out[j].CreatedAt {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out
}
