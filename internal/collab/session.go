package collab

import (
	"sync"
	"time"

	"github.com/Shatzii/ArtistTech-sub007/internal/models"
)

// member pairs a participant's presence state with the connection that owns
// it. The client handle is exclusively owned here; nothing else closes it.
type member struct {
	participant *models.Participant
	client      *Client
}

// Session is the live collaborative context for one project. All state is
// guarded by mu: every message handler for this session runs to completion
// under it, which is the serialization boundary that gives each recipient a
// consistent event order. Different sessions proceed in parallel.
type Session struct {
	id        string
	projectID string
	createdAt time.Time

	mu           sync.Mutex
	users        map[string]*member
	edits        []*models.Edit
	lastActivity time.Time
	closed       bool // set when the registry removes the session
}

func newSession(projectID string) *Session {
	now := time.Now()
	return &Session{
		id:           models.NewSessionID(),
		projectID:    projectID,
		createdAt:    now,
		users:        make(map[string]*member),
		lastActivity: now,
	}
}

// touchLocked refreshes the activity clock; callers hold mu.
func (s *Session) touchLocked() {
	s.lastActivity = time.Now()
}

// participantsLocked snapshots the roster; callers hold mu. No ordering is
// guaranteed.
func (s *Session) participantsLocked() []models.Participant {
	roster := make([]models.Participant, 0, len(s.users))
	for _, m := range s.users {
		roster = append(roster, *m.participant)
	}
	return roster
}

// infoLocked snapshots session metadata; callers hold mu.
func (s *Session) infoLocked() models.SessionInfo {
	return models.SessionInfo{
		ID:               s.id,
		ProjectID:        s.projectID,
		CreatedAt:        s.createdAt,
		LastActivity:     s.lastActivity,
		ParticipantCount: len(s.users),
		EditCount:        len(s.edits),
	}
}

// appendEditLocked adds an applied edit and trims the ring buffer; callers
// hold mu.
func (s *Session) appendEditLocked(e *models.Edit, maxLog int) {
	s.edits = append(s.edits, e)
	if len(s.edits) > maxLog {
		s.edits = s.edits[len(s.edits)-maxLog:]
	}
}

// recentEditsLocked returns up to depth most recent edits, newest last;
// callers hold mu. The returned slice aliases the log and must not be
// retained past the lock.
func (s *Session) recentEditsLocked(depth int) []*models.Edit {
	if len(s.edits) <= depth {
		return s.edits
	}
	return s.edits[len(s.edits)-depth:]
}
