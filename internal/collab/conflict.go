package collab

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/Shatzii/ArtistTech-sub007/internal/models"
)

/*
LEARNING: CONFLICT AWARENESS, NOT MERGE

The engine never merges concurrent edits. Two users touching the same
state inside a short window get a conflict_detected notification carrying
both edits, and a human picks the winner via resolve_conflict. Silent
auto-merge of, say, two volume changes on the same track confuses people
more than a visible prompt does, so full OT/CRDT machinery is deliberately
absent.
*/

// Outcome is the result of conflict evaluation for one proposed edit.
type Outcome struct {
	Edit *models.Edit
	// ConflictsWith is nil when the edit was applied; otherwise it is the
	// prior edit the proposal collided with.
	ConflictsWith *models.Edit
	// ConflictID identifies the conflict for a later resolve_conflict.
	ConflictID string
}

// Applied reports whether the edit cleared conflict evaluation.
func (o Outcome) Applied() bool {
	return o.ConflictsWith == nil
}

// ProposeEdit evaluates a proposed mutation against the session's recent
// edit log. A clear edit is stamped applied, appended to the log (ring
// trimmed), and broadcast to everyone but its author. A conflicting edit is
// not appended; the whole session, author included, gets the
// conflict_detected notification instead.
//
// Unknown sessions or users are stale traffic and return a zero Outcome.
func (r *Registry) ProposeEdit(sessionID, userID string, proposal models.EditProposal) Outcome {
	s := r.lookup(sessionID)
	if s == nil {
		return Outcome{}
	}

	s.mu.Lock()
	if s.users[userID] == nil {
		s.mu.Unlock()
		return Outcome{}
	}

	edit := models.NewEdit(userID, proposal)
	prior := findConflict(s.recentEditsLocked(r.cfg.ConflictScanDepth), edit, r.cfg.ConflictWindow)

	var (
		out   Outcome
		stale []*Client
	)
	if prior != nil {
		edit.Status = models.EditStatusConflicting
		out = Outcome{
			Edit:          edit,
			ConflictsWith: prior,
			ConflictID:    ksuid.New().String(),
		}
		// Conflicts are first-class outcomes: everyone hears about them,
		// the author included.
		stale = s.broadcastLocked(models.ConflictDetected{
			Type:       models.TypeConflictDetected,
			ConflictID: out.ConflictID,
			Proposed:   edit,
			Existing:   prior,
		}, "")
	} else {
		edit.Status = models.EditStatusApplied
		s.appendEditLocked(edit, r.cfg.EditLogSize)
		out = Outcome{Edit: edit}
		stale = s.broadcastLocked(models.EditApplied{
			Type: models.TypeEditApplied,
			Edit: edit,
		}, userID)
	}
	s.touchLocked()
	s.mu.Unlock()

	r.dropStale(stale)
	return out
}

// findConflict scans recent edits, newest first, for one the proposal
// collides with. An incoming edit conflicts with a prior edit iff all of:
// the prior edit is inside the time window, targets the same thing, comes
// from a different user, and either their changed-key sets intersect or
// neither carries key information and the edit types match.
func findConflict(recent []*models.Edit, proposed *models.Edit, window time.Duration) *models.Edit {
	horizon := proposed.Timestamp.Add(-window)

	for i := len(recent) - 1; i >= 0; i-- {
		prior := recent[i]
		if prior.Timestamp.Before(horizon) {
			continue
		}
		if prior.Target != proposed.Target {
			continue
		}
		if prior.UserID == proposed.UserID {
			// A user's own sequential edits never conflict with themselves.
			continue
		}
		if keysOverlap(prior.ChangedKeys, proposed.ChangedKeys) {
			return prior
		}
		if len(prior.ChangedKeys) == 0 && len(proposed.ChangedKeys) == 0 && prior.Type == proposed.Type {
			return prior
		}
	}
	return nil
}

// keysOverlap reports whether the two key sets intersect.
func keysOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	for _, k := range b {
		if _, ok := set[k]; ok {
			return true
		}
	}
	return false
}
