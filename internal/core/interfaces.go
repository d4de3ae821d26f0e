package core

import "huddle/internal/domain"

// Frame is a raw outbound payload, already encoded for the wire.
type Frame []byte

// SignalConnection abstracts the messaging transport for one client.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Sink executes the outbound directives produced by the router. The
// production sink encodes payloads and hands them to live connections;
// tests substitute a capturing fake. Delivery is best-effort: a dead
// or saturated connection swallows the payload.
type Sink interface {
	Send(to domain.ConnID, v any)
}
