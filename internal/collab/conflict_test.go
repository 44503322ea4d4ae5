package collab

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shatzii/ArtistTech-sub007/internal/models"
)

func TestOverlappingKeysConflict(t *testing.T) {
	r := newTestRegistry(t, testConfig())
	a, sessionID := join(t, r, "p1", "alice", "Alice")
	b, _ := join(t, r, "p1", "bob", "Bob")
	drain(a)

	first := r.ProposeEdit(sessionID, "alice", models.EditProposal{
		Type:        models.EditTypeVolume,
		Target:      "track3",
		ChangedKeys: []string{"volume"},
	})
	require.True(t, first.Applied())
	recvType(t, b, models.TypeEditApplied)

	second := r.ProposeEdit(sessionID, "bob", models.EditProposal{
		Type:        models.EditTypeVolume,
		Target:      "track3",
		ChangedKeys: []string{"volume"},
	})
	require.False(t, second.Applied())
	assert.Equal(t, first.Edit.ID, second.ConflictsWith.ID)
	assert.Equal(t, models.EditStatusConflicting, second.Edit.Status)
	assert.NotEmpty(t, second.ConflictID)

	// Everyone hears about the conflict, the author included.
	conflictA := recvType(t, a, models.TypeConflictDetected)
	conflictB := recvType(t, b, models.TypeConflictDetected)
	assert.Equal(t, conflictA["conflictId"], conflictB["conflictId"])

	// The conflicting edit never entered the log.
	s := r.lookup(sessionID)
	s.mu.Lock()
	require.Len(t, s.edits, 1)
	assert.Equal(t, models.EditStatusApplied, s.edits[0].Status)
	assert.Equal(t, "alice", s.edits[0].UserID)
	s.mu.Unlock()
}

func TestDisjointKeysDoNotConflict(t *testing.T) {
	r := newTestRegistry(t, testConfig())
	_, sessionID := join(t, r, "p1", "alice", "Alice")
	_, _ = join(t, r, "p1", "bob", "Bob")

	r.ProposeEdit(sessionID, "alice", models.EditProposal{
		Type:        models.EditTypeVolume,
		Target:      "track3",
		ChangedKeys: []string{"volume"},
	})
	out := r.ProposeEdit(sessionID, "bob", models.EditProposal{
		Type:        models.EditTypeVolume,
		Target:      "track3",
		ChangedKeys: []string{"pan"},
	})
	assert.True(t, out.Applied())
}

func TestSelfEditsNeverConflict(t *testing.T) {
	r := newTestRegistry(t, testConfig())
	_, sessionID := join(t, r, "p1", "alice", "Alice")

	for i := 0; i < 3; i++ {
		out := r.ProposeEdit(sessionID, "alice", models.EditProposal{
			Type:        models.EditTypeVolume,
			Target:      "track3",
			ChangedKeys: []string{"volume"},
		})
		require.True(t, out.Applied(), "edit %d", i)
	}
}

func TestDifferentTargetsDoNotConflict(t *testing.T) {
	r := newTestRegistry(t, testConfig())
	_, sessionID := join(t, r, "p1", "alice", "Alice")
	_, _ = join(t, r, "p1", "bob", "Bob")

	r.ProposeEdit(sessionID, "alice", models.EditProposal{
		Type:        models.EditTypeVolume,
		Target:      "track1",
		ChangedKeys: []string{"volume"},
	})
	out := r.ProposeEdit(sessionID, "bob", models.EditProposal{
		Type:        models.EditTypeVolume,
		Target:      "track2",
		ChangedKeys: []string{"volume"},
	})
	assert.True(t, out.Applied())
}

func TestConflictWindowExpires(t *testing.T) {
	r := newTestRegistry(t, testConfig())
	_, sessionID := join(t, r, "p1", "alice", "Alice")
	_, _ = join(t, r, "p1", "bob", "Bob")

	r.ProposeEdit(sessionID, "alice", models.EditProposal{
		Type:        models.EditTypeVolume,
		Target:      "track3",
		ChangedKeys: []string{"volume"},
	})

	// Age alice's edit past the conflict window.
	s := r.lookup(sessionID)
	s.mu.Lock()
	s.edits[0].Timestamp = time.Now().Add(-10 * time.Second)
	s.mu.Unlock()

	out := r.ProposeEdit(sessionID, "bob", models.EditProposal{
		Type:        models.EditTypeVolume,
		Target:      "track3",
		ChangedKeys: []string{"volume"},
	})
	assert.True(t, out.Applied(), "edits outside the window never conflict")
}

func TestKeylessEditsConflictOnSameTypeAndTarget(t *testing.T) {
	r := newTestRegistry(t, testConfig())
	_, sessionID := join(t, r, "p1", "alice", "Alice")
	_, _ = join(t, r, "p1", "bob", "Bob")

	r.ProposeEdit(sessionID, "alice", models.EditProposal{
		Type:   models.EditTypeTimeline,
		Target: "clip7",
	})

	sameType := r.ProposeEdit(sessionID, "bob", models.EditProposal{
		Type:   models.EditTypeTimeline,
		Target: "clip7",
	})
	assert.False(t, sameType.Applied())

	otherType := r.ProposeEdit(sessionID, "bob", models.EditProposal{
		Type:   models.EditTypeEffect,
		Target: "clip7",
	})
	assert.True(t, otherType.Applied(), "keyless edits of different types pass")
}

func TestConflictScanDepthIsBounded(t *testing.T) {
	cfg := testConfig()
	cfg.ConflictScanDepth = 10
	r := newTestRegistry(t, cfg)
	_, sessionID := join(t, r, "p1", "alice", "Alice")
	_, _ = join(t, r, "p1", "bob", "Bob")

	r.ProposeEdit(sessionID, "alice", models.EditProposal{
		Type:        models.EditTypeVolume,
		Target:      "track3",
		ChangedKeys: []string{"volume"},
	})

	// Push alice's edit beyond the scan depth with unrelated edits.
	for i := 0; i < 10; i++ {
		out := r.ProposeEdit(sessionID, "alice", models.EditProposal{
			Type:        models.EditTypeTrack,
			Target:      fmt.Sprintf("other-%d", i),
			ChangedKeys: []string{"name"},
		})
		require.True(t, out.Applied())
	}

	out := r.ProposeEdit(sessionID, "bob", models.EditProposal{
		Type:        models.EditTypeVolume,
		Target:      "track3",
		ChangedKeys: []string{"volume"},
	})
	assert.True(t, out.Applied(), "edits older than the scan depth are not examined")
}

func TestEditLogIsARingBuffer(t *testing.T) {
	cfg := testConfig()
	cfg.EditLogSize = 5
	r := newTestRegistry(t, cfg)
	_, sessionID := join(t, r, "p1", "alice", "Alice")

	for i := 0; i < 8; i++ {
		out := r.ProposeEdit(sessionID, "alice", models.EditProposal{
			Type:        models.EditTypeTrack,
			Target:      fmt.Sprintf("track-%d", i),
			ChangedKeys: []string{"name"},
		})
		require.True(t, out.Applied())
	}

	s := r.lookup(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.edits, 5)
	assert.Equal(t, "track-3", s.edits[0].Target, "oldest entries were dropped")
	assert.Equal(t, "track-7", s.edits[4].Target)
}

func TestProposeEditFromUnknownSessionIsIgnored(t *testing.T) {
	r := newTestRegistry(t, testConfig())

	out := r.ProposeEdit("nope", "alice", models.EditProposal{
		Type:   models.EditTypeTrack,
		Target: "track1",
	})
	assert.Nil(t, out.Edit)
}

func TestProposeEditFromNonMemberIsIgnored(t *testing.T) {
	r := newTestRegistry(t, testConfig())
	_, sessionID := join(t, r, "p1", "alice", "Alice")

	out := r.ProposeEdit(sessionID, "eve", models.EditProposal{
		Type:   models.EditTypeTrack,
		Target: "track1",
	})
	assert.Nil(t, out.Edit)
}

func TestKeysOverlap(t *testing.T) {
	assert.True(t, keysOverlap([]string{"volume", "pan"}, []string{"pan"}))
	assert.False(t, keysOverlap([]string{"volume"}, []string{"pan"}))
	assert.False(t, keysOverlap(nil, []string{"pan"}))
	assert.False(t, keysOverlap(nil, nil))
}
