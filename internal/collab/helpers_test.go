package collab

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Shatzii/ArtistTech-sub007/internal/models"
)

// testConfig keeps timers long enough that nothing fires mid-test.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.IdleTimeout = 30 * time.Minute
	cfg.SweepInterval = time.Hour
	return cfg
}

func newTestRegistry(t *testing.T, cfg Config) *Registry {
	t.Helper()
	r := NewRegistry(cfg)
	t.Cleanup(r.Stop)
	return r
}

// newTestClient builds a client with no underlying websocket. Delivery goes
// through the same send channel the write pump would drain, so fan-out
// behavior is observable without sockets.
func newTestClient(r *Registry) *Client {
	return &Client{
		ID:       "test-conn",
		registry: r,
		send:     make(chan []byte, r.cfg.SendBufferSize),
	}
}

// join attaches a fresh test client as the named user and returns both
// sides, with the join-time chatter drained.
func join(t *testing.T, r *Registry, projectID, userID, name string) (*Client, string) {
	t.Helper()
	c := newTestClient(r)
	sessionID, _, _ := r.Join(projectID, models.UserInfo{ID: userID, Name: name}, c)
	drain(c)
	return c, sessionID
}

// recv pops the next queued frame and decodes it. Everything in the engine
// enqueues synchronously, so an empty channel means the message was never
// sent.
func recv(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	default:
		t.Fatal("expected a queued message, channel empty")
		return nil
	}
}

// recvType asserts the next frame's type tag and returns the frame.
func recvType(t *testing.T, c *Client, want string) map[string]any {
	t.Helper()
	m := recv(t, c)
	require.Equal(t, want, m["type"])
	return m
}

// requireSilent asserts nothing is queued for the client.
func requireSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if ok {
			t.Fatalf("expected no message, got %s", data)
		}
	default:
	}
}

// requireClosed drains the client and asserts its send channel was closed.
func requireClosed(t *testing.T, c *Client) {
	t.Helper()
	for {
		select {
		case _, ok := <-c.send:
			if !ok {
				return
			}
		default:
			t.Fatal("send channel still open")
		}
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}
