package collab

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Shatzii/ArtistTech-sub007/internal/middleware"
	"github.com/Shatzii/ArtistTech-sub007/internal/models"
)

// Client is one persistent websocket connection. A client starts unbound;
// processing its first join_session binds it to a (session, user) pair.
// The binding is the disconnect index: tearing down a dead connection never
// scans session maps.
type Client struct {
	ID       string
	conn     *websocket.Conn
	registry *Registry

	// Buffered channel of outbound frames. The write pump is the only
	// reader; delivery is non-blocking so a slow peer cannot stall a
	// broadcast.
	send chan []byte

	mu        sync.Mutex
	sessionID string
	userID    string
	closed    bool
}

func newClient(registry *Registry, conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.New().String(),
		conn:     conn,
		registry: registry,
		send:     make(chan []byte, registry.cfg.SendBufferSize),
	}
}

// bind records which session/user this connection now speaks for.
func (c *Client) bind(sessionID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
	c.userID = userID
}

func (c *Client) unbind() {
	c.bind("", "")
}

// binding returns the (sessionID, userID) pair, or ok=false for a
// connection that never joined or already left.
func (c *Client) binding() (sessionID, userID string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID, c.userID, c.sessionID != ""
}

// deliver queues a frame for the write pump. Returns false when the buffer
// is full or the client is closed; the caller decides whether that means
// the connection should be dropped.
func (c *Client) deliver(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// sendJSON marshals and queues a single direct message (replies, errors).
func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal outbound message: %v", err)
		return
	}
	c.deliver(data)
}

func (c *Client) sendError(message string) {
	c.sendJSON(models.ErrorReply{Type: models.TypeError, Message: message})
}

// close shuts the send channel exactly once. The write pump drains and
// closes the underlying connection.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump reads frames from the websocket and hands them to the registry.
// Learning: Each connection has its own goroutine reading from the WebSocket
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.registry.Disconnect(c)
		_ = c.conn.Close()
	}()

	// Missed pongs surface as a read deadline error, which tears the
	// connection down.
	readDeadline := 2 * c.registry.cfg.HeartbeatInterval
	_ = c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error on %s: %v", c.ID, err)
			}
			break
		}

		msgCtx, span := middleware.StartSpan(ctx, "Collab.ProcessMessage",
			attribute.String("connection.id", c.ID),
			attribute.Int("message.size", len(message)),
		)

		c.registry.HandleMessage(msgCtx, c, message)

		span.End()
	}
}

// WritePump writes queued frames to the websocket and keeps the heartbeat
// going.
// Learning: Separate goroutine for writing prevents blocking on slow clients
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(c.registry.cfg.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.registry.cfg.WriteTimeout))
			if !ok {
				// Channel closed
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.registry.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
