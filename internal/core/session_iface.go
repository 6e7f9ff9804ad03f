package core

import "github.com/dkeye/Lobby/internal/domain"

// SessionID is the connection id peers address each other by.
type SessionID = domain.ConnID

// MemberSession binds a connection id and its transport endpoint.
// This is what the connection registry stores and the relay fans out to.
type MemberSession interface {
	ID() SessionID
	Signal() SignalConnection
}
