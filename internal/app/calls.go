package app

import (
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"huddle/internal/domain"
)

type callState int

const (
	callOffering callState = iota + 1
	callActive
)

type call struct {
	caller, callee domain.ConnID
	state          callState
	timer          *time.Timer
}

// pairKey identifies a call by its unordered connection pair.
type pairKey struct{ lo, hi domain.ConnID }

func keyFor(a, b domain.ConnID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// callTable tracks at most one negotiation per connection. Guarded by
// the router mutex; no internal locking.
type callTable struct {
	pairs  map[pairKey]*call
	byConn map[domain.ConnID]pairKey
}

func newCallTable() *callTable {
	return &callTable{
		pairs:  make(map[pairKey]*call),
		byConn: make(map[domain.ConnID]pairKey),
	}
}

func (t *callTable) busy(id domain.ConnID) bool {
	_, ok := t.byConn[id]
	return ok
}

func (t *callTable) begin(caller, callee domain.ConnID) *call {
	c := &call{caller: caller, callee: callee, state: callOffering}
	k := keyFor(caller, callee)
	t.pairs[k] = c
	t.byConn[caller] = k
	t.byConn[callee] = k
	return c
}

func (t *callTable) get(a, b domain.ConnID) (*call, bool) {
	c, ok := t.pairs[keyFor(a, b)]
	return c, ok
}

// drop clears the record for a pair and stops its pending timer.
func (t *callTable) drop(a, b domain.ConnID) (*call, bool) {
	k := keyFor(a, b)
	c, ok := t.pairs[k]
	if !ok {
		return nil, false
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	delete(t.pairs, k)
	delete(t.byConn, c.caller)
	delete(t.byConn, c.callee)
	return c, true
}

func (t *callTable) dropConn(id domain.ConnID) (*call, bool) {
	k, ok := t.byConn[id]
	if !ok {
		return nil, false
	}
	c := t.pairs[k]
	return t.drop(c.caller, c.callee)
}

// CallOffer starts a negotiation. An offline target or a party already
// in a call rejects the offer with a synthetic call-ended instead of
// leaving the caller hanging. The offer itself is enriched with the
// caller's display name so the callee can render an identity before
// accepting.
func (r *Router) CallOffer(id, to domain.ConnID, offer webrtc.SessionDescription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	caller, ok := r.reg.Lookup(id)
	if !ok {
		return
	}
	if _, ok := r.reg.Lookup(to); !ok {
		r.sink.Send(id, CallEndedPayload{Type: "call-ended", Reason: EndReasonUnavailable})
		return
	}
	if r.calls.busy(id) || r.calls.busy(to) {
		r.sink.Send(id, CallEndedPayload{Type: "call-ended", Reason: EndReasonBusy})
		return
	}
	c := r.calls.begin(id, to)
	c.timer = time.AfterFunc(r.offerTimeout, func() { r.expireOffer(id, to) })
	log.Info().Str("module", "app.calls").Str("caller", string(id)).Str("callee", string(to)).Msg("call offering")
	r.sink.Send(to, CallOfferPayload{Type: "call-offer", From: id, FromName: caller.Name, Offer: offer})
}

// CallAnswer confirms a pending offer and relays the answer to the
// caller. An answer for a pair with no Offering record raced with a
// timeout or disconnect and is dropped; forwarding it would resurrect
// a call already torn down.
func (r *Router) CallAnswer(id, to domain.ConnID, answer webrtc.SessionDescription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls.get(id, to)
	if !ok || c.state != callOffering || c.callee != id {
		log.Debug().Str("module", "app.calls").Str("conn", string(id)).Msg("answer without pending offer, dropped")
		return
	}
	c.state = callActive
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	log.Info().Str("module", "app.calls").Str("caller", string(to)).Str("callee", string(id)).Msg("call active")
	if _, ok := r.reg.Lookup(to); ok {
		r.sink.Send(to, CallAnswerPayload{Type: "call-answer", Answer: answer})
	}
}

// Candidate relays an ICE candidate verbatim. Candidates for a dead
// target are silently dropped; trickle ICE tolerates loss.
func (r *Router) Candidate(id, to domain.ConnID, cand webrtc.ICECandidateInit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reg.Lookup(to); !ok {
		return
	}
	r.sink.Send(to, CandidatePayload{Type: "ice-candidate", Candidate: cand})
}

// CallEnd relays an explicit hang-up and clears the pair's record,
// whatever state it was in.
func (r *Router) CallEnd(id, to domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calls.drop(id, to); ok {
		log.Info().Str("module", "app.calls").Str("conn", string(id)).Msg("call ended")
	}
	if _, ok := r.reg.Lookup(to); ok {
		r.sink.Send(to, CallEndedPayload{Type: "call-ended"})
	}
}

// expireOffer fires from the offer timer. It re-enters the router
// mutex and re-validates state: the call may have been answered, ended
// or cleaned up by a disconnect in the meantime.
func (r *Router) expireOffer(a, b domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls.get(a, b)
	if !ok || c.state != callOffering {
		return
	}
	r.calls.drop(a, b)
	log.Info().Str("module", "app.calls").Str("caller", string(c.caller)).Str("callee", string(c.callee)).Msg("offer timed out")
	for _, id := range []domain.ConnID{c.caller, c.callee} {
		if _, ok := r.reg.Lookup(id); ok {
			r.sink.Send(id, CallEndedPayload{Type: "call-ended", Reason: EndReasonTimeout})
		}
	}
}

// endCallFor clears any call involving a disconnected connection and
// sends the remaining peer a synthetic call-ended so its client tears
// down media and UI state. Called under r.mu.
func (r *Router) endCallFor(id domain.ConnID, reason string) {
	c, ok := r.calls.dropConn(id)
	if !ok {
		return
	}
	peer := c.caller
	if peer == id {
		peer = c.callee
	}
	log.Info().Str("module", "app.calls").Str("conn", string(id)).Str("peer", string(peer)).Msg("call cleared on disconnect")
	if _, ok := r.reg.Lookup(peer); ok {
		r.sink.Send(peer, CallEndedPayload{Type: "call-ended", Reason: reason})
	}
}
