package domain

// ConnState is the lifecycle of one connection.
//
//	Unbound -> Named -> InLobby -> Terminated
//
// Voice presence is orthogonal and tracked by the lobby itself.
type ConnState int

const (
	StateUnbound ConnState = iota
	StateNamed
	StateInLobby
	StateTerminated
)

func (s ConnState) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateNamed:
		return "named"
	case StateInLobby:
		return "in_lobby"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}
