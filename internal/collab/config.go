package collab

import "time"

// Config carries the engine's tuning knobs. The registry takes it by value
// at construction, so isolated instances (and tests) never share state.
type Config struct {
	// IdleTimeout is how long a session may go without activity before the
	// sweep evicts it.
	IdleTimeout time.Duration
	// SweepInterval is how often the idle sweep runs.
	SweepInterval time.Duration
	// HeartbeatInterval is the ping cadence; the read deadline is twice it.
	HeartbeatInterval time.Duration
	// WriteTimeout bounds a single websocket write.
	WriteTimeout time.Duration
	// EditLogSize bounds the per-session edit ring buffer.
	EditLogSize int
	// ConflictWindow is how recent a prior edit must be to conflict.
	ConflictWindow time.Duration
	// ConflictScanDepth is how many log entries back conflict evaluation
	// looks.
	ConflictScanDepth int
	// SendBufferSize is the per-connection outbound queue; a full queue
	// drops the connection rather than stalling the room.
	SendBufferSize int
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:       30 * time.Minute,
		SweepInterval:     5 * time.Minute,
		HeartbeatInterval: 30 * time.Second,
		WriteTimeout:      10 * time.Second,
		EditLogSize:       100,
		ConflictWindow:    5 * time.Second,
		ConflictScanDepth: 10,
		SendBufferSize:    256,
	}
}
