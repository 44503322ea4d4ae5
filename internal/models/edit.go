package models

import (
	"time"

	"github.com/segmentio/ksuid"
)

// EditStatus tracks the outcome of conflict evaluation for an edit.
type EditStatus string

const (
	EditStatusApplied     EditStatus = "applied"
	EditStatusConflicting EditStatus = "conflicting"
)

// EditType categorizes a mutation to the shared arrangement. The set is
// open: unknown types are relayed untouched, these constants exist for
// clients and tests.
type EditType string

const (
	EditTypeTrack    EditType = "track_edit"
	EditTypeVolume   EditType = "volume_change"
	EditTypeEffect   EditType = "effect_change"
	EditTypeTimeline EditType = "timeline_edit"
)

// Edit is a single proposed mutation to shared project state. After creation
// only Status changes; everything else is immutable.
type Edit struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Type        EditType       `json:"type"`
	Target      string         `json:"target"`
	ChangedKeys []string       `json:"changedKeys,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Status      EditStatus     `json:"status"`
}

// EditProposal is the client-supplied part of an apply_edit message. The
// engine fills in author, id, timestamp and status.
type EditProposal struct {
	Type        EditType       `json:"type"`
	Target      string         `json:"target"`
	ChangedKeys []string       `json:"changedKeys,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// NewEdit stamps a proposal into a full Edit record for conflict evaluation.
func NewEdit(userID string, p EditProposal) *Edit {
	return &Edit{
		ID:          ksuid.New().String(),
		UserID:      userID,
		Type:        p.Type,
		Target:      p.Target,
		ChangedKeys: p.ChangedKeys,
		Data:        p.Data,
		Timestamp:   time.Now(),
	}
}
