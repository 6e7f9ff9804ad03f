package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/core/coretest"
)

func TestSignalRelay_ForwardsVerbatimTaggedWithSender(t *testing.T) {
	r := NewRegistry()
	target := coretest.NewConn()
	r.BindSignal("b", core.NewMemberSession("b", target), nil)
	relay := NewSignalRelay(r)

	payload := json.RawMessage(`{"type":"offer","sdp":"v=0\r\n"}`)
	res, err := relay.Forward(core.SignalOffer, "a", "b", payload)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SendTo)

	got := target.Named(core.EventOfferReceived)
	require.Len(t, got, 1)
	ev := got[0].(core.SignalReceived)
	assert.Equal(t, core.SessionID("a"), ev.FromConnectionID)
	assert.JSONEq(t, string(payload), string(ev.Payload))
}

func TestSignalRelay_KindsMapToReceivedEvents(t *testing.T) {
	r := NewRegistry()
	target := coretest.NewConn()
	r.BindSignal("b", core.NewMemberSession("b", target), nil)
	relay := NewSignalRelay(r)

	_, _ = relay.Forward(core.SignalOffer, "a", "b", json.RawMessage(`1`))
	_, _ = relay.Forward(core.SignalAnswer, "a", "b", json.RawMessage(`2`))
	_, _ = relay.Forward(core.SignalCandidate, "a", "b", json.RawMessage(`3`))

	events := target.Events()
	require.Len(t, events, 3)
	assert.Equal(t, core.EventOfferReceived, events[0].EventName())
	assert.Equal(t, core.EventAnswerReceived, events[1].EventName())
	assert.Equal(t, core.EventIceCandidateReceived, events[2].EventName())
}

func TestSignalRelay_UnknownTargetIsDropped(t *testing.T) {
	relay := NewSignalRelay(NewRegistry())
	res, err := relay.Forward(core.SignalAnswer, "a", "nobody", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Zero(t, res.SendTo)
	assert.Empty(t, res.Dropped)
}

func TestSignalRelay_FullTargetReportsDrop(t *testing.T) {
	r := NewRegistry()
	target := coretest.NewConn()
	target.SetFull(true)
	r.BindSignal("b", core.NewMemberSession("b", target), nil)

	res, err := NewSignalRelay(r).Forward(core.SignalCandidate, "a", "b", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, []core.SessionID{"b"}, res.Dropped)
}
