package collab

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shatzii/ArtistTech-sub007/internal/models"
)

/*
LEARNING: SESSION REGISTRY

Central owner of all live collaboration sessions, keyed by project. The
registry map is guarded by its own RWMutex and only changes on session
create/remove; per-message traffic is serialized by each session's mutex,
so rooms never contend with each other.

Lock order is always registry.mu before session.mu, never the reverse.
*/

// Registry owns the set of live sessions. Construct with NewRegistry, then
// Start to run the idle sweep; Stop cancels the sweep and force-closes
// every connection.
type Registry struct {
	cfg Config

	mu        sync.RWMutex
	byProject map[string]*Session // projectID -> session
	byID      map[string]*Session // sessionID -> session

	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewRegistry creates a registry with the given tuning. Zero-valued knobs
// fall back to the defaults so partial configs stay usable.
func NewRegistry(cfg Config) *Registry {
	def := DefaultConfig()
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = def.HeartbeatInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.EditLogSize <= 0 {
		cfg.EditLogSize = def.EditLogSize
	}
	if cfg.ConflictWindow <= 0 {
		cfg.ConflictWindow = def.ConflictWindow
	}
	if cfg.ConflictScanDepth <= 0 {
		cfg.ConflictScanDepth = def.ConflictScanDepth
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = def.SendBufferSize
	}

	return &Registry{
		cfg:       cfg,
		byProject: make(map[string]*Session),
		byID:      make(map[string]*Session),
		done:      make(chan struct{}),
	}
}

// Start launches the idle-sweep goroutine.
func (r *Registry) Start() {
	r.startOnce.Do(func() {
		log.Println("🔄 Starting collaboration session registry...")
		r.wg.Add(1)
		go r.sweepLoop()
		log.Println("✓ Session registry started")
	})
}

// Stop cancels the sweep and closes every remaining connection.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		log.Println("🛑 Shutting down session registry...")
		close(r.done)
		r.wg.Wait()

		r.mu.Lock()
		defer r.mu.Unlock()
		for _, s := range r.byProject {
			s.mu.Lock()
			s.closed = true
			for _, m := range s.users {
				if m.client != nil {
					m.client.unbind()
					m.client.close()
				}
			}
			s.users = make(map[string]*member)
			s.mu.Unlock()
		}
		r.byProject = make(map[string]*Session)
		r.byID = make(map[string]*Session)
		log.Println("✓ Session registry shutdown complete")
	})
}

// Join attaches a participant to the project's session, creating the
// session on first join. isHost reports whether the participant was first
// in; the engine grants no special powers with it, that is a consumer
// concern.
func (r *Registry) Join(projectID string, user models.UserInfo, c *Client) (sessionID string, p models.Participant, isHost bool) {
	for {
		r.mu.Lock()
		s, ok := r.byProject[projectID]
		if !ok {
			s = newSession(projectID)
			r.byProject[projectID] = s
			r.byID[s.id] = s
			log.Printf("  Session %s created for project %s", s.id, projectID)
		}
		r.mu.Unlock()

		s.mu.Lock()
		if s.closed {
			// Lost a race with removal; the next lookup recreates it.
			s.mu.Unlock()
			continue
		}

		participant := newParticipant(user)
		isHost = len(s.users) == 0

		// A second connection for the same user replaces the first; the
		// old connection's eventual disconnect must not evict the new one,
		// which the member.client identity check guarantees.
		s.users[participant.ID] = &member{participant: participant, client: c}
		if c != nil {
			c.bind(s.id, participant.ID)
		}
		s.touchLocked()

		log.Printf("  User %s joined session %s (total: %d users)",
			participant.ID, s.id, len(s.users))

		roster := s.participantsLocked()
		if c != nil {
			c.sendJSON(models.SessionJoined{
				Type:         models.TypeSessionJoined,
				SessionID:    s.id,
				ProjectID:    projectID,
				IsHost:       isHost,
				You:          *participant,
				Participants: roster,
			})
		}

		stale := s.broadcastLocked(models.UserJoined{
			Type: models.TypeUserJoined,
			User: *participant,
		}, participant.ID)

		// Roster refresh goes to everyone, the joiner included.
		stale = append(stale, s.broadcastLocked(models.UsersList{
			Type:         models.TypeUsersList,
			SessionID:    s.id,
			Participants: roster,
		}, "")...)

		sessionID, p = s.id, *participant
		s.mu.Unlock()

		r.dropStale(stale)
		return sessionID, p, isHost
	}
}

// Leave removes a participant without closing their connection; the client
// may join another project afterwards.
func (r *Registry) Leave(sessionID, userID string) {
	r.mu.RLock()
	s := r.byID[sessionID]
	r.mu.RUnlock()
	if s == nil {
		return
	}

	s.mu.Lock()
	m := s.users[userID]
	if m != nil && m.client != nil {
		m.client.unbind()
	}
	s.mu.Unlock()

	r.removeParticipant(sessionID, userID, nil)
}

// Disconnect tears down a connection: unbound clients are just closed,
// bound ones are removed from their session first. Safe to call multiple
// times for the same client.
func (r *Registry) Disconnect(c *Client) {
	sessionID, userID, ok := c.binding()
	c.close()
	if !ok {
		return
	}
	c.unbind()
	r.removeParticipant(sessionID, userID, c)
}

// removeParticipant removes userID from the session. When conn is non-nil
// the removal only happens if that connection still owns the membership.
// The last participant out deletes the session immediately.
func (r *Registry) removeParticipant(sessionID, userID string, conn *Client) {
	r.mu.RLock()
	s := r.byID[sessionID]
	r.mu.RUnlock()
	if s == nil {
		return
	}

	s.mu.Lock()
	m := s.users[userID]
	if m == nil || (conn != nil && m.client != conn) {
		s.mu.Unlock()
		return
	}
	delete(s.users, userID)
	m.participant.IsActive = false
	s.touchLocked()

	log.Printf("  User %s left session %s (remaining: %d users)",
		userID, s.id, len(s.users))

	var stale []*Client
	if len(s.users) > 0 {
		stale = s.broadcastLocked(models.UserLeft{
			Type:   models.TypeUserLeft,
			UserID: userID,
			Name:   m.participant.Name,
		}, "")
		stale = append(stale, s.broadcastLocked(models.UsersList{
			Type:         models.TypeUsersList,
			SessionID:    s.id,
			Participants: s.participantsLocked(),
		}, "")...)
	}
	empty := len(s.users) == 0
	s.mu.Unlock()

	r.dropStale(stale)
	if empty {
		r.removeIfEmpty(s)
	}
}

// removeIfEmpty deletes a session that has no participants left.
func (r *Registry) removeIfEmpty(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.users) > 0 {
		return
	}
	s.closed = true
	delete(r.byProject, s.projectID)
	delete(r.byID, s.id)
	log.Printf("  Session %s removed (empty)", s.id)
}

// lookup resolves a session by id.
func (r *Registry) lookup(sessionID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[sessionID]
}

// sessionFor returns the session a bound client may act on, or nil when the
// message is stale (wrong session, never joined). Stale presence/edit
// traffic is routine during reconnects and is silently dropped.
func (r *Registry) sessionFor(c *Client, sessionID string) (*Session, string) {
	boundSession, userID, ok := c.binding()
	if !ok || boundSession != sessionID {
		return nil, ""
	}
	return r.lookup(sessionID), userID
}

// sweepLoop periodically evicts idle sessions.
func (r *Registry) sweepLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep removes sessions idle past the threshold, force-closing whatever
// connections they still hold. Catches sessions whose participants vanished
// without a clean leave.
func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.cfg.IdleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()

	for projectID, s := range r.byProject {
		s.mu.Lock()
		if s.lastActivity.Before(cutoff) || len(s.users) == 0 {
			log.Printf("  Evicting idle session %s (project %s, %d users)",
				s.id, projectID, len(s.users))
			s.closed = true
			for _, m := range s.users {
				if m.client != nil {
					m.client.unbind()
					m.client.close()
				}
			}
			s.users = make(map[string]*member)
			delete(r.byProject, projectID)
			delete(r.byID, s.id)
		}
		s.mu.Unlock()
	}
}

// Sessions snapshots every live session for the inspection API, newest
// first.
func (r *Registry) Sessions() []models.SessionInfo {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.byProject))
	for _, s := range r.byProject {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	infos := make([]models.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		infos = append(infos, s.infoLocked())
		s.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos
}

// SessionDetail snapshots one session with its roster.
func (r *Registry) SessionDetail(sessionID string) (models.SessionInfo, []models.Participant, bool) {
	s := r.lookup(sessionID)
	if s == nil {
		return models.SessionInfo{}, nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoLocked(), s.participantsLocked(), true
}

func newParticipant(user models.UserInfo) *models.Participant {
	id := user.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()
	return &models.Participant{
		ID:           id,
		Name:         user.Name,
		Email:        user.Email,
		Color:        colorFor(id),
		IsActive:     true,
		JoinedAt:     now,
		LastActiveAt: now,
	}
}
