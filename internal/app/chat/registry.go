/*
Package chat contains the real-time delivery layer: live WebSocket sessions,
the user-to-session registry used for fan-out, and the wire frame types.

This file defines the Registry, the process-wide mapping from a user identity
to the set of its currently-connected live sessions. It is constructed once at
startup and injected wherever fan-out is needed; there is no package-level state.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"pairchat/internal/pkg/logx"
)

// Sink is the push side of a live session. Fan-out only needs to address and
// write to a session, so the registry stores this interface rather than the
// concrete WebSocket session.
type Sink interface {
	// ID identifies the session in logs.
	ID() string

	// Send queues a payload for delivery. It must not block.
	Send(payload []byte) error
}

// Registry maps user identities to their live sessions. All methods are safe
// for concurrent use.
type Registry struct {
	// mu protects groups and members.
	mu sync.RWMutex

	// groups maps a user identity to the set of its live sessions.
	groups map[int64]map[Sink]struct{}

	// members is the reverse index: which group each session currently belongs to.
	members map[Sink]int64

	// structured logger with Registry context.
	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		groups:  make(map[int64]map[Sink]struct{}),
		members: make(map[Sink]int64),
		logger:  logx.Logger().With().Str("component", "Registry").Logger(),
	}
}

// Register associates a session with the delivery group for userID.
// Registering the same session to the same user again has no effect.
// A session already registered under a different identity is moved: the last
// registration wins, so a session belongs to at most one group at a time.
// Unknown user identities are accepted; the registry does not validate them.
func (r *Registry) Register(sink Sink, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.members[sink]; ok {
		if current == userID {
			return
		}
		r.removeLocked(sink, current)
		r.logger.Info().
			Str("session_id", sink.ID()).
			Int64("previous_user_id", current).
			Int64("user_id", userID).
			Msg("Session re-registered under a new identity.")
	}

	group, ok := r.groups[userID]
	if !ok {
		group = make(map[Sink]struct{})
		r.groups[userID] = group
	}
	group[sink] = struct{}{}
	r.members[sink] = userID

	r.logger.Info().
		Str("session_id", sink.ID()).
		Int64("user_id", userID).
		Int("group_size", len(group)).
		Msg("Session registered.")
}

// UnregisterAll removes a session from whichever group it belongs to.
// It is safe to call for a session that was never registered.
func (r *Registry) UnregisterAll(sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.members[sink]
	if !ok {
		return
	}

	r.removeLocked(sink, userID)

	r.logger.Info().
		Str("session_id", sink.ID()).
		Int64("user_id", userID).
		Msg("Session unregistered.")
}

// removeLocked deletes the session from the given group and the reverse index.
// Callers must hold mu.
func (r *Registry) removeLocked(sink Sink, userID int64) {
	delete(r.members, sink)

	group, ok := r.groups[userID]
	if !ok {
		return
	}
	delete(group, sink)
	if len(group) == 0 {
		delete(r.groups, userID)
	}
}

// SessionsFor returns a snapshot of the user's current live sessions.
// The returned slice is owned by the caller; concurrent register/unregister
// calls do not mutate it. An empty slice means no sessions are online.
func (r *Registry) SessionsFor(userID int64) []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Keys(r.groups[userID])
}

// Shutdown drops every registered session and closes those that support closing.
// Called during graceful shutdown, after the HTTP server has stopped accepting
// new connections.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sinks := lo.Keys(r.members)
	r.groups = make(map[int64]map[Sink]struct{})
	r.members = make(map[Sink]int64)
	r.mu.Unlock()

	for _, sink := range sinks {
		if closer, ok := sink.(interface{ Close() }); ok {
			closer.Close()
		}
	}

	r.logger.Info().Int("session_count", len(sinks)).Msg("Registry shutdown complete.")
}
