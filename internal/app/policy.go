package app

import (
	"strings"

	"github.com/dkeye/Lobby/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a connection whose send buffer was full.
type Policy interface {
	OnBackPressure(sid core.SessionID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.SessionID) BackpressureAction {
	return KickMember
}

// DropPolicy keeps slow connections and loses the event.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.SessionID) BackpressureAction {
	return DropFrame
}

// PolicyByName maps the backpressure_policy config value. Anything but "drop" kicks.
func PolicyByName(name string) Policy {
	if strings.EqualFold(name, "drop") {
		return DropPolicy{}
	}
	return SimplePolicy{}
}
