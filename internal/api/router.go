package api

import (
	"github.com/gorilla/mux"

	"github.com/Shatzii/ArtistTech-sub007/internal/middleware"
)

func SetupRoutes(h *Handler) *mux.Router {
	r := mux.NewRouter()

	// Middleware runs in order - tracing first, then recovery, then CORS
	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.ErrorRecoveryMiddleware)
	r.Use(middleware.CORSMiddleware)

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Session inspection endpoints
	api.HandleFunc("/sessions", h.ListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")

	// Health check endpoint
	api.HandleFunc("/health", h.Health).Methods("GET")

	// WebSocket routes
	r.HandleFunc("/ws/collab", h.HandleCollabWebSocket)

	return r
}
