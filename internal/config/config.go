package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shatzii/ArtistTech-sub007/internal/collab"
)

type Config struct {
	ServerHost string
	ServerPort string

	// Collaboration engine tuning
	IdleTimeout       time.Duration
	SweepInterval     time.Duration
	HeartbeatInterval time.Duration
	EditLogSize       int
	ConflictWindow    time.Duration
	ConflictScanDepth int
	SendBufferSize    int

	// Observability
	JaegerEndpoint string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	def := collab.DefaultConfig()

	cfg := &Config{
		ServerHost: getEnv("SERVER_HOST", "localhost"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		IdleTimeout:       getEnvDuration("COLLAB_IDLE_TIMEOUT", def.IdleTimeout),
		SweepInterval:     getEnvDuration("COLLAB_SWEEP_INTERVAL", def.SweepInterval),
		HeartbeatInterval: getEnvDuration("COLLAB_HEARTBEAT_INTERVAL", def.HeartbeatInterval),
		EditLogSize:       getEnvInt("COLLAB_EDIT_LOG_SIZE", def.EditLogSize),
		ConflictWindow:    getEnvDuration("COLLAB_CONFLICT_WINDOW", def.ConflictWindow),
		ConflictScanDepth: getEnvInt("COLLAB_CONFLICT_SCAN_DEPTH", def.ConflictScanDepth),
		SendBufferSize:    getEnvInt("COLLAB_SEND_BUFFER_SIZE", def.SendBufferSize),

		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
	}

	return cfg, nil
}

// Collab maps the env-derived knobs onto the engine's config.
func (c *Config) Collab() collab.Config {
	cfg := collab.DefaultConfig()
	cfg.IdleTimeout = c.IdleTimeout
	cfg.SweepInterval = c.SweepInterval
	cfg.HeartbeatInterval = c.HeartbeatInterval
	cfg.EditLogSize = c.EditLogSize
	cfg.ConflictWindow = c.ConflictWindow
	cfg.ConflictScanDepth = c.ConflictScanDepth
	cfg.SendBufferSize = c.SendBufferSize
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
