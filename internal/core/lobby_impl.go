package core

import (
	"sort"
	"sync"

	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

type rosterEntry struct {
	name string
	conn SignalConnection
	seq  uint64
}

type voiceEntry struct {
	name string
	seq  uint64
}

// lobbyImpl is a threadsafe in-memory lobby.
// It never closes adapter-owned resources.
type lobbyImpl struct {
	lobby *domain.Lobby

	mu     sync.RWMutex
	closed bool
	seq    uint64
	roster map[SessionID]*rosterEntry
	voice  map[domain.ChannelID]map[SessionID]*voiceEntry
}

func NewLobbyService(lobby *domain.Lobby) LobbyService {
	return &lobbyImpl{
		lobby:  lobby,
		roster: make(map[SessionID]*rosterEntry),
		voice:  make(map[domain.ChannelID]map[SessionID]*voiceEntry),
	}
}

func (l *lobbyImpl) Lobby() *domain.Lobby { return l.lobby }

func (l *lobbyImpl) MemberCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.roster)
}

func (l *lobbyImpl) HasMember(sid SessionID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.roster[sid]
	return ok
}

func (l *lobbyImpl) Closed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

func (l *lobbyImpl) Info() LobbyInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	voice := 0
	for _, members := range l.voice {
		voice += len(members)
	}
	return LobbyInfo{
		ID:          l.lobby.ID,
		Name:        l.lobby.Name,
		MemberCount: len(l.roster),
		VoiceCount:  voice,
		CreatedAt:   l.lobby.CreatedAt.UnixMilli(),
	}
}

func (l *lobbyImpl) AddMember(sid SessionID, name string, conn SignalConnection) (LobbySnapshot, PublishResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := PublishResult{}
	if l.closed {
		return LobbySnapshot{}, res, ErrLobbyClosed
	}

	if e, ok := l.roster[sid]; ok {
		e.name = name
		e.conn = conn
	} else {
		l.seq++
		l.roster[sid] = &rosterEntry{name: name, conn: conn, seq: l.seq}
	}

	snap := l.snapshotLocked()
	l.sendLocked(sid, LobbyJoined{Envelope: Envelope{Type: EventLobbyJoined}, Lobby: snap}, &res)
	l.broadcastLocked(sid, MemberJoined{
		Envelope:     Envelope{Type: EventMemberJoined},
		LobbyID:      l.lobby.ID,
		ConnectionID: sid,
		DisplayName:  name,
	}, &res)

	log.Info().Str("module", "core.lobby").Str("lobby", string(l.lobby.ID)).Str("sid", string(sid)).Str("name", name).Msg("member added")
	return snap, res, nil
}

func (l *lobbyImpl) RemoveMember(sid SessionID) (bool, bool, PublishResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := PublishResult{}
	if _, ok := l.roster[sid]; !ok {
		return false, l.closed, res
	}

	for _, ch := range l.voiceChannelsLocked(sid) {
		l.leaveVoiceLocked(ch, sid, &res)
	}
	delete(l.roster, sid)

	if len(l.roster) == 0 {
		l.closed = true
		log.Info().Str("module", "core.lobby").Str("lobby", string(l.lobby.ID)).Str("sid", string(sid)).Msg("last member removed, lobby closed")
		return true, true, res
	}

	l.broadcastLocked(sid, MemberLeft{
		Envelope:     Envelope{Type: EventMemberLeft},
		LobbyID:      l.lobby.ID,
		ConnectionID: sid,
	}, &res)
	log.Info().Str("module", "core.lobby").Str("lobby", string(l.lobby.ID)).Str("sid", string(sid)).Msg("member removed")
	return true, false, res
}

func (l *lobbyImpl) Snapshot() LobbySnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *lobbyImpl) snapshotLocked() LobbySnapshot {
	snap := LobbySnapshot{
		ID:           l.lobby.ID,
		Name:         l.lobby.Name,
		InviteCode:   l.lobby.InviteCode,
		OwnerID:      l.lobby.OwnerID,
		CreatedAt:    l.lobby.CreatedAt.UnixMilli(),
		Channels:     append([]domain.Channel(nil), l.lobby.Channels...),
		Members:      l.membersLocked(),
		VoiceMembers: make(map[domain.ChannelID][]MemberDTO),
	}
	for _, c := range l.lobby.Channels {
		if c.Kind == domain.ChannelVoice {
			snap.VoiceMembers[c.ID] = l.voiceMembersLocked(c.ID, "")
		}
	}
	return snap
}

// membersLocked returns the roster in join order.
func (l *lobbyImpl) membersLocked() []MemberDTO {
	ids := make([]SessionID, 0, len(l.roster))
	for sid := range l.roster {
		ids = append(ids, sid)
	}
	sort.Slice(ids, func(i, j int) bool { return l.roster[ids[i]].seq < l.roster[ids[j]].seq })
	out := make([]MemberDTO, 0, len(ids))
	for _, sid := range ids {
		out = append(out, MemberDTO{ConnectionID: sid, DisplayName: l.roster[sid].name})
	}
	return out
}

func (l *lobbyImpl) sendLocked(to SessionID, ev Event, res *PublishResult) {
	e, ok := l.roster[to]
	if !ok || e.conn == nil {
		return
	}
	if err := e.conn.TrySend(ev); err != nil {
		res.Dropped = append(res.Dropped, to)
		return
	}
	res.SendTo++
}

func (l *lobbyImpl) broadcastLocked(except SessionID, ev Event, res *PublishResult) {
	before := res.SendTo
	dropped := len(res.Dropped)
	for sid := range l.roster {
		if sid == except {
			continue
		}
		l.sendLocked(sid, ev, res)
	}
	log.Debug().Str("module", "core.lobby").Str("lobby", string(l.lobby.ID)).Str("event", ev.EventName()).Str("from", string(except)).Int("sent_to", res.SendTo-before).Int("dropped", len(res.Dropped)-dropped).Msg("broadcast result")
}
