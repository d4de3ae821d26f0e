package app

import (
	"strings"
	"sync"
	"time"

	"huddle/internal/core"
	"huddle/internal/domain"
)

const DefaultOfferTimeout = 30 * time.Second

// Router classifies inbound events and turns each into outbound
// directives executed through the Sink. A single mutex serializes
// every event end to end, so a registry mutation and its presence
// fan-out form one atomic unit; two concurrent disconnects can never
// interleave their broadcasts.
type Router struct {
	mu   sync.Mutex
	reg  *Registry
	sink core.Sink

	typing map[domain.ConnID]struct{}
	calls  *callTable

	offerTimeout time.Duration
}

func NewRouter(reg *Registry, sink core.Sink, offerTimeout time.Duration) *Router {
	if offerTimeout <= 0 {
		offerTimeout = DefaultOfferTimeout
	}
	return &Router{
		reg:          reg,
		sink:         sink,
		typing:       make(map[domain.ConnID]struct{}),
		calls:        newCallTable(),
		offerTimeout: offerTimeout,
	}
}

// Join registers the connection under the supplied identity and fans
// out the updated presence snapshot. A repeated join on the same
// connection overwrites the session.
func (r *Router) Join(id domain.ConnID, conn core.SignalConnection, deviceKey, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if strings.TrimSpace(name) == "" {
		name = "guest"
	}
	r.reg.Register(id, deviceKey, name, conn)
	r.broadcastPresence()
}

// Disconnect clears every trace of the connection: typing state, any
// call it was party to (notifying the remaining peer), and finally the
// session itself. Safe to call for connections that never joined.
func (r *Router) Disconnect(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.typing, id)
	r.endCallFor(id, EndReasonPeerDisconnected)
	if r.reg.Remove(id) {
		r.broadcastPresence()
	}
}

// Chat delivers a broadcast message to every connected session,
// including the sender; the sender renders its own message from the
// broadcast, there is no client-side optimistic echo.
func (r *Router) Chat(id domain.ConnID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sender, ok := r.reg.Lookup(id)
	if !ok {
		return // sender vanished mid-send
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	p := ChatPayload{Type: "message", Message: domain.NewMessage(sender, text)}
	for _, s := range r.reg.Snapshot() {
		r.sink.Send(s.ID, p)
	}
}

// Direct delivers a message to one target and echoes it back to the
// sender with the From fields swapped. The echo is unconditional even
// when the target is offline; the sender gets no delivery feedback.
func (r *Router) Direct(id, to domain.ConnID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sender, ok := r.reg.Lookup(id)
	if !ok {
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	msg := domain.NewMessage(sender, text)
	if _, ok := r.reg.Lookup(to); ok {
		r.sink.Send(to, DMPayload{Type: "dm", From: id, Message: msg})
	}
	r.sink.Send(id, DMPayload{Type: "dm", From: to, Message: msg})
}

// Typing updates the ephemeral typing set and notifies every other
// connection. The set add/remove is idempotent; repeated identical
// signals are re-broadcast as received.
func (r *Router) Typing(id domain.ConnID, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sender, ok := r.reg.Lookup(id)
	if !ok {
		return
	}
	if isTyping {
		r.typing[id] = struct{}{}
	} else {
		delete(r.typing, id)
	}
	p := TypingPayload{Type: "typing", ID: id, Name: sender.Name, IsTyping: isTyping}
	for _, s := range r.reg.Snapshot() {
		if s.ID == id {
			continue
		}
		r.sink.Send(s.ID, p)
	}
}

// Stats reports the online session count and the number of calls in
// negotiation or active.
func (r *Router) Stats() (online, calls int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reg.Len(), len(r.calls.pairs)
}
