// Package config sources every runtime knob from the environment, with an
// optional .env overlay for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Port the HTTP server listens on.
	Port string

	// CORSOrigin is the allowed browser origin.
	CORSOrigin string

	// MongoURI selects the Mongo store when set; empty selects the
	// in-memory store with a JSON snapshot file.
	MongoURI string
	MongoDB  string

	// JWTSecret signs and verifies staff bearer tokens.
	JWTSecret string

	// DataFile is the in-memory store's snapshot path. Empty disables
	// persistence.
	DataFile string

	// QueueSlot is the estimated wait added per queue position on the
	// public board.
	QueueSlot time.Duration

	// SeedDemo loads the demo job into an empty in-memory store.
	SeedDemo bool

	// LogDir holds the application log file.
	LogDir string
}

// Load reads .env when present, then the process environment. JWT_SECRET is
// required; everything else has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getenv("PORT", "5001"),
		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:3000"),
		MongoURI:   os.Getenv("MONGO_URI"),
		MongoDB:    getenv("MONGO_DB", "repairtrack"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		DataFile:   getenv("DATA_FILE", "data/jobs.json"),
		LogDir:     getenv("LOG_DIR", "logs"),
		SeedDemo:   getenv("SEED_DEMO", "false") == "true",
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	slotMinutes, err := strconv.Atoi(getenv("QUEUE_SLOT_MINUTES", "30"))
	if err != nil || slotMinutes <= 0 {
		return nil, fmt.Errorf("QUEUE_SLOT_MINUTES must be a positive integer")
	}
	cfg.QueueSlot = time.Duration(slotMinutes) * time.Minute

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
