package core

// Event is one outbound message. Transports pick the encoding; the event
// name doubles as the JSON "type" field and the Socket.IO event name.
type Event interface {
	EventName() string
}

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
//
// TrySend must never block: callers hold lobby locks while sending.
type SignalConnection interface {
	TrySend(Event) error
	Close()
}
