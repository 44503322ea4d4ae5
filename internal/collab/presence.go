package collab

import (
	"hash/fnv"
	"time"

	"github.com/Shatzii/ArtistTech-sub007/internal/models"
)

// cursorPalette is the set of colors handed out to participants. Assignment
// hashes the user id, so the same user keeps the same color across
// reconnects.
var cursorPalette = []string{
	"#e6194b", // red
	"#3cb44b", // green
	"#4363d8", // blue
	"#f58231", // orange
	"#911eb4", // purple
	"#42d4f4", // cyan
	"#f032e6", // magenta
	"#bfef45", // lime
	"#fabed4", // pink
	"#469990", // teal
}

// colorFor deterministically assigns a palette color to a user id.
func colorFor(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return cursorPalette[h.Sum32()%uint32(len(cursorPalette))]
}

// UpdateCursor records a participant's cursor position and relays it to
// everyone else in the session. Presence events are never echoed back to
// their source, and last update always wins. Unknown session/user pairs are
// stale network traffic and are silently dropped.
func (r *Registry) UpdateCursor(sessionID, userID string, pos models.CursorPosition) {
	s := r.lookup(sessionID)
	if s == nil {
		return
	}

	s.mu.Lock()
	m := s.users[userID]
	if m == nil {
		s.mu.Unlock()
		return
	}
	cursor := pos
	m.participant.Cursor = &cursor
	m.participant.LastActiveAt = time.Now()
	s.touchLocked()

	stale := s.broadcastLocked(models.CursorBroadcast{
		Type:   models.TypeCursorUpdate,
		UserID: userID,
		Cursor: pos,
	}, userID)
	s.mu.Unlock()

	r.dropStale(stale)
}

// UpdateSelection records which track/element a participant has selected
// and relays it to everyone else in the session. Same semantics as
// UpdateCursor.
func (r *Registry) UpdateSelection(sessionID, userID, trackID string) {
	s := r.lookup(sessionID)
	if s == nil {
		return
	}

	s.mu.Lock()
	m := s.users[userID]
	if m == nil {
		s.mu.Unlock()
		return
	}
	m.participant.SelectedTarget = trackID
	m.participant.LastActiveAt = time.Now()
	s.touchLocked()

	stale := s.broadcastLocked(models.SelectionBroadcast{
		Type:    models.TypeTrackSelection,
		UserID:  userID,
		TrackID: trackID,
	}, userID)
	s.mu.Unlock()

	r.dropStale(stale)
}
