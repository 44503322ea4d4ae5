package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Shatzii/ArtistTech-sub007/internal/collab"
	"github.com/Shatzii/ArtistTech-sub007/internal/models"
)

// Handler handles HTTP requests
// Learning: Uses INTERFACES defined in this package (consumer-driven)
type Handler struct {
	directory SessionDirectory // Interface defined in this package!
	gateway   *collab.Gateway  // WebSocket entry point for real-time collab
}

func NewHandler(directory SessionDirectory, gateway *collab.Gateway) *Handler {
	return &Handler{
		directory: directory,
		gateway:   gateway,
	}
}

// Session inspection handlers

// ListSessions returns a snapshot of every live collaboration session.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.directory.Sessions()

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSession returns one session's snapshot with its participant roster.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	info, participants, ok := h.directory.SessionDetail(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, sessionDetailResponse{
		SessionInfo:  info,
		Participants: participants,
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionDetailResponse struct {
	models.SessionInfo
	Participants []models.Participant `json:"participants"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
