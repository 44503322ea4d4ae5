package collab

import (
	"context"
	"errors"
	"log"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Shatzii/ArtistTech-sub007/internal/middleware"
	"github.com/Shatzii/ArtistTech-sub007/internal/models"
)

// HandleMessage processes one inbound frame from a connection. The error
// policy, in order: malformed envelopes get an error reply on that
// connection only; unknown types are logged and ignored so newer clients
// keep working; stale session references are dropped silently. Nothing a
// client sends can take down the registry or another session.
func (r *Registry) HandleMessage(ctx context.Context, c *Client, raw []byte) {
	msg, err := models.DecodeInbound(raw)
	if err != nil {
		var unknown *models.ErrUnknownType
		if errors.As(err, &unknown) {
			log.Printf("Ignoring unknown message type %q from connection %s", unknown.Type, c.ID)
			return
		}
		middleware.AddSpanError(ctx, err)
		c.sendError(err.Error())
		return
	}

	switch m := msg.(type) {
	case models.JoinSession:
		r.handleJoin(ctx, c, m)

	case models.LeaveSession:
		// Only the connection that owns the membership may leave it.
		if s, userID := r.sessionFor(c, m.SessionID); s != nil && userID == m.UserID {
			c.unbind()
			r.removeParticipant(m.SessionID, userID, c)
		}

	case models.CursorUpdate:
		if _, userID := r.sessionFor(c, m.SessionID); userID != "" {
			r.UpdateCursor(m.SessionID, userID, m.Cursor)
		}

	case models.TrackSelection:
		if _, userID := r.sessionFor(c, m.SessionID); userID != "" {
			r.UpdateSelection(m.SessionID, userID, m.TrackID)
		}

	case models.ApplyEdit:
		if _, userID := r.sessionFor(c, m.SessionID); userID != "" {
			middleware.AddSpanEvent(ctx, "collab.propose_edit",
				attribute.String("edit.target", m.Edit.Target),
				attribute.String("edit.type", string(m.Edit.Type)),
			)
			r.ProposeEdit(m.SessionID, userID, m.Edit)
		}

	case models.ResolveConflict:
		r.handleResolveConflict(c, m)

	case models.ChatMessage:
		r.handleChat(c, m)

	case models.Ping:
		c.sendJSON(models.Pong{Type: models.TypePong})
	}
}

// handleJoin attaches the connection to the project's session. A join on an
// already-bound connection is a rejoin: the old membership is released
// first, exactly as if the client had sent leave_session.
func (r *Registry) handleJoin(ctx context.Context, c *Client, m models.JoinSession) {
	if sessionID, userID, ok := c.binding(); ok {
		c.unbind()
		r.removeParticipant(sessionID, userID, c)
	}

	sessionID, p, isHost := r.Join(m.ProjectID, m.User, c)
	middleware.AddSpanEvent(ctx, "collab.session_joined",
		attribute.String("session.id", sessionID),
		attribute.String("user.id", p.ID),
		attribute.Bool("user.is_host", isHost),
	)
}

// handleResolveConflict rebroadcasts a client-side resolution to the whole
// session, tagged with who resolved it. The engine does not validate the
// resolution against either original edit; picking a winner is a human
// decision by design.
func (r *Registry) handleResolveConflict(c *Client, m models.ResolveConflict) {
	s, userID := r.sessionFor(c, m.SessionID)
	if s == nil {
		return
	}
	resolvedBy := m.UserID
	if resolvedBy == "" {
		resolvedBy = userID
	}

	s.mu.Lock()
	stale := s.broadcastLocked(models.ConflictResolved{
		Type:       models.TypeConflictResolved,
		ConflictID: m.ConflictID,
		Resolution: m.Resolution,
		ResolvedBy: resolvedBy,
	}, "")
	s.touchLocked()
	s.mu.Unlock()

	r.dropStale(stale)
}

// handleChat relays an opaque chat payload to the rest of the session.
func (r *Registry) handleChat(c *Client, m models.ChatMessage) {
	s, userID := r.sessionFor(c, m.SessionID)
	if s == nil {
		return
	}

	s.mu.Lock()
	stale := s.broadcastLocked(models.ChatBroadcast{
		Type:      models.TypeChatMessage,
		SessionID: m.SessionID,
		UserID:    userID,
		Message:   m.Message,
	}, userID)
	s.touchLocked()
	s.mu.Unlock()

	r.dropStale(stale)
}
