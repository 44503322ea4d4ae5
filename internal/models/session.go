package models

import (
	"time"

	"github.com/segmentio/ksuid"
)

// SessionInfo is the read-only snapshot of a live collaboration session,
// served by the inspection API.
type SessionInfo struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"projectId"`
	CreatedAt        time.Time `json:"createdAt"`
	LastActivity     time.Time `json:"lastActivity"`
	ParticipantCount int       `json:"participantCount"`
	EditCount        int       `json:"editCount"`
}

// Participant represents one connected user's live collaboration state
// within a session.
type Participant struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	Color          string          `json:"color"` // Hex color for cursor/highlight
	Cursor         *CursorPosition `json:"cursor,omitempty"`
	SelectedTarget string          `json:"selectedTarget,omitempty"`
	IsActive       bool            `json:"isActive"`
	JoinedAt       time.Time       `json:"joinedAt"`
	LastActiveAt   time.Time       `json:"lastActiveAt"`
}

// CursorPosition represents where a user's pointer is on the arrangement
// canvas. Coordinates are client-defined; the engine only relays them.
type CursorPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UserInfo is the identity a client supplies on join. The engine trusts it;
// authentication happens upstream.
type UserInfo struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// NewSessionID generates a session identifier.
// Learning: Using KSUID instead of UUID provides:
// - Time-based sorting (first 32 bits are timestamp)
// - Smaller string representation (27 chars vs 36 for UUID)
// - No collisions across distributed systems
func NewSessionID() string {
	return ksuid.New().String()
}
