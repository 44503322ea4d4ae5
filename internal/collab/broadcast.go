package collab

import (
	"encoding/json"
	"log"
)

/*
LEARNING: BROADCAST FAN-OUT

All room fan-out funnels through broadcastLocked, called under the session
mutex. That single chokepoint is what makes every participant observe
presence and edit events in the same relative order. Delivery into each
connection's buffered channel is non-blocking: a full buffer means the peer
is slow or dead, and the connection is dropped instead of stalling the rest
of the room.
*/

// broadcastLocked serializes v once and queues it to every member except
// excludeUserID. Callers hold s.mu. Members whose buffers are full are
// returned so the caller can drop them after releasing the lock.
func (s *Session) broadcastLocked(v any, excludeUserID string) (stale []*Client) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal broadcast for session %s: %v", s.id, err)
		return nil
	}

	for userID, m := range s.users {
		if excludeUserID != "" && userID == excludeUserID {
			continue
		}
		if m.client == nil {
			continue
		}
		if !m.client.deliver(data) {
			log.Printf("⚠️  User %s buffer full in session %s, dropping connection", userID, s.id)
			stale = append(stale, m.client)
		}
	}
	return stale
}

// Broadcast sends a message to every participant of a session, optionally
// excluding one user. Unknown sessions are ignored.
func (r *Registry) Broadcast(sessionID string, v any, excludeUserID string) {
	s := r.lookup(sessionID)
	if s == nil {
		return
	}
	s.mu.Lock()
	stale := s.broadcastLocked(v, excludeUserID)
	s.mu.Unlock()
	r.dropStale(stale)
}

// dropStale tears down connections whose outbound buffers overflowed.
// Callers must not hold any session lock.
func (r *Registry) dropStale(stale []*Client) {
	for _, c := range stale {
		r.Disconnect(c)
	}
}
