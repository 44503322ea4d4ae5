package models

import (
	"encoding/json"
	"fmt"
)

/*
LEARNING: TAGGED-UNION MESSAGE DISPATCH

Every inbound frame is a JSON envelope carrying a "type" tag plus that
type's required fields. Instead of decoding into map[string]interface{}
and probing keys at runtime, each message kind gets its own struct and
DecodeInbound returns the Inbound sum type. The gateway then does an
exhaustive type switch, so adding a message kind is a compile-time
checked change.
*/

// Inbound message type tags.
const (
	TypeJoinSession     = "join_session"
	TypeLeaveSession    = "leave_session"
	TypeCursorUpdate    = "cursor_update"
	TypeTrackSelection  = "track_selection"
	TypeApplyEdit       = "apply_edit"
	TypeResolveConflict = "resolve_conflict"
	TypeChatMessage     = "chat_message"
	TypePing            = "ping"
)

// Outbound message type tags.
const (
	TypeSessionJoined    = "session_joined"
	TypeUserJoined       = "user_joined"
	TypeUserLeft         = "user_left"
	TypeUsersList        = "users_list"
	TypeEditApplied      = "edit_applied"
	TypeConflictDetected = "conflict_detected"
	TypeConflictResolved = "conflict_resolved"
	TypePong             = "pong"
	TypeError            = "error"
)

// Inbound is the sum type of client-to-engine messages.
type Inbound interface {
	inbound()
}

// JoinSession attaches the sending connection to the project's session,
// creating the session if none is live.
type JoinSession struct {
	ProjectID string   `json:"projectId"`
	User      UserInfo `json:"user"`
}

// LeaveSession removes the user from the session without closing the
// connection.
type LeaveSession struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

// CursorUpdate moves the sender's cursor on the arrangement canvas.
type CursorUpdate struct {
	SessionID string         `json:"sessionId"`
	Cursor    CursorPosition `json:"cursor"`
}

// TrackSelection marks which track or element the sender has selected.
type TrackSelection struct {
	SessionID string `json:"sessionId"`
	TrackID   string `json:"trackId"`
}

// ApplyEdit proposes a mutation to shared project state.
type ApplyEdit struct {
	SessionID string       `json:"sessionId"`
	Edit      EditProposal `json:"edit"`
}

// ResolveConflict is a client-side resolution of an earlier conflict. The
// engine rebroadcasts it verbatim; it never merges or validates the choice.
type ResolveConflict struct {
	SessionID  string          `json:"sessionId"`
	ConflictID string          `json:"conflictId"`
	Resolution json.RawMessage `json:"resolution"`
	UserID     string          `json:"userId"`
}

// ChatMessage is an opaque passthrough; the engine relays it without
// interpretation.
type ChatMessage struct {
	SessionID string          `json:"sessionId"`
	Message   json.RawMessage `json:"message"`
}

// Ping requests a pong on the same connection.
type Ping struct{}

func (JoinSession) inbound()     {}
func (LeaveSession) inbound()    {}
func (CursorUpdate) inbound()    {}
func (TrackSelection) inbound()  {}
func (ApplyEdit) inbound()       {}
func (ResolveConflict) inbound() {}
func (ChatMessage) inbound()     {}
func (Ping) inbound()            {}

// ErrUnknownType marks envelope types the engine does not recognize.
// Callers ignore these rather than erroring, so that newer clients don't
// break older servers.
type ErrUnknownType struct {
	Type string
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Type)
}

// DecodeInbound parses an envelope into its typed message. A malformed
// envelope or a missing required field is an error; an unrecognized type
// tag returns *ErrUnknownType so the caller can apply its
// forward-compatibility policy.
func DecodeInbound(data []byte) (Inbound, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed message envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("message envelope missing type")
	}

	switch env.Type {
	case TypeJoinSession:
		var m JoinSession
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", env.Type, err)
		}
		if m.ProjectID == "" {
			return nil, fmt.Errorf("%s requires projectId", env.Type)
		}
		if m.User.Name == "" {
			return nil, fmt.Errorf("%s requires user.name", env.Type)
		}
		return m, nil

	case TypeLeaveSession:
		var m LeaveSession
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", env.Type, err)
		}
		if m.SessionID == "" || m.UserID == "" {
			return nil, fmt.Errorf("%s requires sessionId and userId", env.Type)
		}
		return m, nil

	case TypeCursorUpdate:
		var m CursorUpdate
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", env.Type, err)
		}
		if m.SessionID == "" {
			return nil, fmt.Errorf("%s requires sessionId", env.Type)
		}
		return m, nil

	case TypeTrackSelection:
		var m TrackSelection
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", env.Type, err)
		}
		if m.SessionID == "" {
			return nil, fmt.Errorf("%s requires sessionId", env.Type)
		}
		return m, nil

	case TypeApplyEdit:
		var m ApplyEdit
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", env.Type, err)
		}
		if m.SessionID == "" {
			return nil, fmt.Errorf("%s requires sessionId", env.Type)
		}
		if m.Edit.Target == "" {
			return nil, fmt.Errorf("%s requires edit.target", env.Type)
		}
		return m, nil

	case TypeResolveConflict:
		var m ResolveConflict
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", env.Type, err)
		}
		if m.SessionID == "" || m.ConflictID == "" {
			return nil, fmt.Errorf("%s requires sessionId and conflictId", env.Type)
		}
		return m, nil

	case TypeChatMessage:
		var m ChatMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", env.Type, err)
		}
		if m.SessionID == "" {
			return nil, fmt.Errorf("%s requires sessionId", env.Type)
		}
		return m, nil

	case TypePing:
		return Ping{}, nil

	default:
		return nil, &ErrUnknownType{Type: env.Type}
	}
}

// Outbound payloads. Each marshals to a flat envelope with its type tag
// baked in, so the broadcast router serializes exactly once.

// SessionJoined is the direct reply to a successful join.
type SessionJoined struct {
	Type         string        `json:"type"`
	SessionID    string        `json:"sessionId"`
	ProjectID    string        `json:"projectId"`
	IsHost       bool          `json:"isHost"`
	You          Participant   `json:"you"`
	Participants []Participant `json:"participants"`
}

// UserJoined notifies existing members of a new participant.
type UserJoined struct {
	Type string      `json:"type"`
	User Participant `json:"user"`
}

// UserLeft notifies members that a participant left or disconnected.
type UserLeft struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// UsersList carries the full roster of a session.
type UsersList struct {
	Type         string        `json:"type"`
	SessionID    string        `json:"sessionId"`
	Participants []Participant `json:"participants"`
}

// CursorBroadcast relays a participant's cursor move to the rest of the
// session.
type CursorBroadcast struct {
	Type   string         `json:"type"`
	UserID string         `json:"userId"`
	Cursor CursorPosition `json:"cursor"`
}

// SelectionBroadcast relays a participant's track selection.
type SelectionBroadcast struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	TrackID string `json:"trackId"`
}

// EditApplied relays an edit that passed conflict evaluation.
type EditApplied struct {
	Type string `json:"type"`
	Edit *Edit  `json:"edit"`
}

// ConflictDetected reports that a proposed edit collided with a recent one.
// Both edits are included so clients can present the choice to a human.
type ConflictDetected struct {
	Type       string `json:"type"`
	ConflictID string `json:"conflictId"`
	Proposed   *Edit  `json:"proposed"`
	Existing   *Edit  `json:"existing"`
}

// ConflictResolved rebroadcasts a client's resolution, tagged with who
// resolved it.
type ConflictResolved struct {
	Type       string          `json:"type"`
	ConflictID string          `json:"conflictId"`
	Resolution json.RawMessage `json:"resolution,omitempty"`
	ResolvedBy string          `json:"resolvedBy"`
}

// ChatBroadcast relays an opaque chat payload.
type ChatBroadcast struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	Message   json.RawMessage `json:"message"`
}

// Pong answers a ping.
type Pong struct {
	Type string `json:"type"`
}

// ErrorReply reports a problem with one specific inbound message. The
// connection stays open.
type ErrorReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
