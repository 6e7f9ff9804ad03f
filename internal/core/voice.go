package core

import (
	"sort"

	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

// JoinVoice puts sid into voice channel ch. The joiner gets the participants
// already present; every other lobby member gets one voiceUserJoined.
func (l *lobbyImpl) JoinVoice(ch domain.ChannelID, sid SessionID, name string) (PublishResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := PublishResult{}
	if l.closed {
		return res, ErrLobbyClosed
	}
	if !l.lobby.IsVoiceChannel(ch) {
		return res, ErrNotFound
	}
	member, ok := l.roster[sid]
	if !ok {
		return res, ErrNotMember
	}
	if name == "" {
		name = member.name
	}

	participants, ok := l.voice[ch]
	if !ok {
		participants = make(map[SessionID]*voiceEntry)
		l.voice[ch] = participants
	}
	if p, ok := participants[sid]; ok {
		p.name = name
	} else {
		l.seq++
		participants[sid] = &voiceEntry{name: name, seq: l.seq}
	}

	l.sendLocked(sid, VoiceExistingUsers{
		Envelope:  Envelope{Type: EventVoiceExistingUsers},
		LobbyID:   l.lobby.ID,
		ChannelID: ch,
		Users:     l.voiceMembersLocked(ch, sid),
	}, &res)
	l.broadcastLocked(sid, VoiceUserJoined{
		Envelope:     Envelope{Type: EventVoiceUserJoined},
		LobbyID:      l.lobby.ID,
		ChannelID:    ch,
		ConnectionID: sid,
		DisplayName:  name,
	}, &res)

	log.Info().Str("module", "core.voice").Str("lobby", string(l.lobby.ID)).Str("channel", string(ch)).Str("sid", string(sid)).Msg("voice joined")
	return res, nil
}

// LeaveVoice reports whether sid was actually present. Redundant leaves emit nothing.
func (l *lobbyImpl) LeaveVoice(ch domain.ChannelID, sid SessionID) (bool, PublishResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := PublishResult{}
	return l.leaveVoiceLocked(ch, sid, &res), res
}

func (l *lobbyImpl) VoiceChannelsOf(sid SessionID) []domain.ChannelID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.voiceChannelsLocked(sid)
}

func (l *lobbyImpl) leaveVoiceLocked(ch domain.ChannelID, sid SessionID, res *PublishResult) bool {
	participants, ok := l.voice[ch]
	if !ok {
		return false
	}
	if _, ok := participants[sid]; !ok {
		return false
	}
	delete(participants, sid)

	l.broadcastLocked(sid, VoiceUserLeft{
		Envelope:     Envelope{Type: EventVoiceUserLeft},
		LobbyID:      l.lobby.ID,
		ChannelID:    ch,
		ConnectionID: sid,
	}, res)
	log.Info().Str("module", "core.voice").Str("lobby", string(l.lobby.ID)).Str("channel", string(ch)).Str("sid", string(sid)).Msg("voice left")
	return true
}

// voiceChannelsLocked lists the channels sid occupies in channel-list order.
func (l *lobbyImpl) voiceChannelsLocked(sid SessionID) []domain.ChannelID {
	var out []domain.ChannelID
	for _, c := range l.lobby.Channels {
		if _, ok := l.voice[c.ID][sid]; ok {
			out = append(out, c.ID)
		}
	}
	return out
}

// voiceMembersLocked returns ch's participants in join order, minus except.
func (l *lobbyImpl) voiceMembersLocked(ch domain.ChannelID, except SessionID) []MemberDTO {
	participants := l.voice[ch]
	ids := make([]SessionID, 0, len(participants))
	for sid := range participants {
		if sid != except {
			ids = append(ids, sid)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return participants[ids[i]].seq < participants[ids[j]].seq })
	out := make([]MemberDTO, 0, len(ids))
	for _, sid := range ids {
		out = append(out, MemberDTO{ConnectionID: sid, DisplayName: participants[sid].name})
	}
	return out
}
