package app

// broadcastPresence fans the full registry snapshot out to every
// connected session. Called under r.mu immediately after each registry
// mutation; never batched or debounced. The client replaces its whole
// presence view on receipt, so back-to-back snapshots are harmless.
func (r *Router) broadcastPresence() {
	users := r.reg.Snapshot()
	p := UsersPayload{Type: "users", Users: users}
	for _, s := range users {
		r.sink.Send(s.ID, p)
	}
}
