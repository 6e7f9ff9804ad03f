package domain

// ConnID identifies one transport connection for its whole lifetime.
// Peers address each other by it when relaying signaling messages.
type ConnID string
