package api

import (
	"net/http"
)

// WebSocket endpoints

// HandleCollabWebSocket upgrades the connection and hands it to the
// collaboration engine.
func (h *Handler) HandleCollabWebSocket(w http.ResponseWriter, r *http.Request) {
	h.gateway.HandleCollabConnection(w, r)
}
