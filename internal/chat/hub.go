// Package chat provides the internal staff messaging layer: a user-keyed
// pub-sub hub over WebSockets, message persistence, and Echo handlers.
package chat

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Subscriber represents one active session for a user. A user may hold any
// number of concurrent sessions (several tabs, a phone and a workstation);
// every session receives every message addressed to the user.
type Subscriber struct {
	ID     string
	UserID string
	Send   chan []byte
}

// Hub tracks active subscribers keyed by user id and fans out payloads to
// all of a user's sessions. All operations are safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	byUser map[string]map[*Subscriber]struct{}
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		byUser: make(map[string]map[*Subscriber]struct{}),
		logger: logger,
	}
}

// Register adds a subscriber for its user. Unlike a single-slot handler
// table, registering a second session never displaces the first.
func (h *Hub) Register(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.byUser[sub.UserID] == nil {
		h.byUser[sub.UserID] = make(map[*Subscriber]struct{})
	}
	h.byUser[sub.UserID][sub] = struct{}{}
}

// Unregister removes a subscriber and closes its Send channel. Removing an
// unknown subscriber is a no-op.
func (h *Hub) Unregister(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.byUser[sub.UserID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.byUser, sub.UserID)
	}
	close(sub.Send)
}

// Push marshals the payload and delivers it to every active session of the
// user. Sessions with a full buffer are skipped rather than blocked on;
// there is no queue and no redelivery. A user with no sessions is not an
// error.
func (h *Hub) Push(_ context.Context, userID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.byUser[userID] {
		select {
		case sub.Send <- data:
		default:
			h.logger.Warn().
				Str("user_id", userID).
				Str("subscriber_id", sub.ID).
				Msg("subscriber buffer full, message dropped")
		}
	}
	return nil
}

// SubscriberCount returns the number of active sessions for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// UserCount returns the number of users with at least one active session.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser)
}
