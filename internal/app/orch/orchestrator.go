// Package orch is the connection lifecycle manager. Transports call it and
// nothing else; it owns the Unbound -> Named -> InLobby -> Terminated
// transitions and applies the backpressure policy to every delivery result.
package orch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/app"
	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
)

const (
	DefaultDisplayName = "Kullanici"
	DefaultLobbyName   = "Yeni Lobi"
)

type Orchestrator struct {
	Registry *app.Registry
	Lobbies  core.LobbyManager
	Relays   *app.SignalRelay
	Policy   app.Policy
	Limiter  *app.JoinRateLimiter

	DefaultDisplayName string
	DefaultLobbyName   string
}

// Options configures New. Zero values fall back to fresh in-memory
// registries and the package defaults.
type Options struct {
	Lobbies core.LobbyManager
	Policy  app.Policy
	Limiter *app.JoinRateLimiter

	DefaultDisplayName string
	DefaultLobbyName   string
}

// New wires an orchestrator over a fresh connection registry.
func New(opts Options) *Orchestrator {
	reg := app.NewRegistry()
	lobbies := opts.Lobbies
	if lobbies == nil {
		lobbies = app.NewLobbyManager(nil)
	}
	policy := opts.Policy
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	o := &Orchestrator{
		Registry:           reg,
		Lobbies:            lobbies,
		Relays:             app.NewSignalRelay(reg),
		Policy:             policy,
		Limiter:            opts.Limiter,
		DefaultDisplayName: opts.DefaultDisplayName,
		DefaultLobbyName:   opts.DefaultLobbyName,
	}
	if o.DefaultDisplayName == "" {
		o.DefaultDisplayName = DefaultDisplayName
	}
	if o.DefaultLobbyName == "" {
		o.DefaultLobbyName = DefaultLobbyName
	}
	return o
}

// Connect registers a new transport connection and greets it with its id.
// rememberedName seeds the display name, e.g. from a cookie session.
func (o *Orchestrator) Connect(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc, rememberedName string) {
	o.Registry.BindSignal(sid, core.NewMemberSession(sid, conn), cancel)
	if rememberedName != "" {
		o.Registry.UpdateUsername(sid, rememberedName)
	}
	if err := conn.TrySend(core.Hello{Envelope: core.Envelope{Type: core.EventHello}, ConnectionID: sid}); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("hello not delivered")
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Int("connections", o.Registry.Count()).Msg("connected")
}

// SetName stores the per-connection display name. It does not touch any
// lobby roster; the name is used by later create/join/voice requests.
func (o *Orchestrator) SetName(sid core.SessionID, name string) error {
	var err error
	if !o.Registry.WithSession(sid, func() {
		if !o.Registry.UpdateUsername(sid, name) {
			err = core.ErrInvalidName
		}
	}) {
		return core.ErrAlreadyTerminated
	}
	return err
}

func (o *Orchestrator) WhoAmI(sid core.SessionID) core.WhoAmI {
	ev := core.WhoAmI{
		Envelope:     core.Envelope{Type: core.EventWhoAmI},
		ConnectionID: sid,
		DisplayName:  o.Registry.DisplayName(sid),
		State:        o.Registry.State(sid).String(),
	}
	if id, ok := o.Registry.LobbyOf(sid); ok {
		ev.LobbyID = id
	}
	return ev
}

// OnDisconnect moves sid to Terminated. If it was in a lobby it leaves every
// voice channel and then the roster, under the lobby lock, so no other
// connection observes a half-removed member. Calling it twice is a no-op.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	var (
		lobbyID domain.LobbyID
		was     bool
	)
	o.Registry.WithSession(sid, func() {
		lobbyID, was = o.Registry.Terminate(sid)
	})
	if !was {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("disconnect of terminated connection ignored")
		return
	}
	o.Limiter.Forget(sid)
	if lobbyID != "" {
		o.removeFromLobby(sid, lobbyID)
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("lobby", string(lobbyID)).Msg("disconnected")
}

// applyPolicy runs the backpressure policy for every connection whose
// buffer was full during one operation.
func (o *Orchestrator) applyPolicy(res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	seen := make(map[core.SessionID]struct{}, len(res.Dropped))
	for _, slow := range res.Dropped {
		if _, dup := seen[slow]; dup {
			continue
		}
		seen[slow] = struct{}{}
		switch o.Policy.OnBackPressure(slow) {
		case app.KickMember:
			if o.Registry.Cancel(slow) {
				log.Warn().Str("module", "orch").Str("sid", string(slow)).Msg("slow connection kicked")
			}
		case app.DropFrame, app.NoAction:
			log.Debug().Str("module", "orch").Str("sid", string(slow)).Msg("event dropped for slow connection")
		}
	}
}

func (o *Orchestrator) displayName(sid core.SessionID, explicit string) string {
	return domain.ResolveName(domain.MaxUsernameLen, explicit, o.Registry.DisplayName(sid), o.defaultDisplayName())
}

func (o *Orchestrator) defaultDisplayName() string {
	if o.DefaultDisplayName != "" {
		return o.DefaultDisplayName
	}
	return DefaultDisplayName
}

func (o *Orchestrator) defaultLobbyName() string {
	if o.DefaultLobbyName != "" {
		return o.DefaultLobbyName
	}
	return DefaultLobbyName
}

func (o *Orchestrator) signalOf(sid core.SessionID) (core.SignalConnection, error) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sid, core.ErrAlreadyTerminated)
	}
	return sess.Signal(), nil
}
