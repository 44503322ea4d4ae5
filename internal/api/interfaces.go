package api

import (
	"github.com/Shatzii/ArtistTech-sub007/internal/models"
)

/*
LEARNING: CONSUMER-DRIVEN INTERFACES (Go Idiom)

This package is the CONSUMER of the collaboration engine, so the interface
it needs lives here, not next to the implementation. The handlers only read
session snapshots; they declare exactly that and nothing more, which keeps
the engine free to change and the handlers trivial to test with a fake.
*/

// SessionDirectory is the read-only view of the session registry the
// inspection API needs.
type SessionDirectory interface {
	Sessions() []models.SessionInfo
	SessionDetail(sessionID string) (models.SessionInfo, []models.Participant, bool)
}
