package collab

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Shatzii/ArtistTech-sub007/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: In production, validate origin properly
		return true
	},
}

// Gateway upgrades HTTP connections to websockets and hands them to the
// registry. A fresh connection is unbound: the client introduces itself
// with a join_session message (ping is also allowed before joining).
type Gateway struct {
	registry *Registry
}

// NewGateway creates a gateway for the given registry.
func NewGateway(registry *Registry) *Gateway {
	return &Gateway{registry: registry}
}

// HandleCollabConnection upgrades the request and starts the connection's
// read and write pumps.
func (g *Gateway) HandleCollabConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		middleware.AddSpanError(ctx, err)
		return
	}

	client := newClient(g.registry, conn)

	ctx, span := middleware.StartSpan(ctx, "Collab.Connect",
		attribute.String("connection.id", client.ID),
	)
	defer span.End()

	// Separate goroutines prevent deadlock between reading and writing.
	go client.WritePump(ctx)
	go client.ReadPump(ctx)

	log.Printf("✓ WebSocket connection %s established", client.ID)
}
