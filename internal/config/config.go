package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the per-run settings read from the environment. Lists and rule
// tables live in the Sources file (see sources.go); this struct is the knobs.
type Config struct {
	// Delivery
	SlackWebhookURL string
	ChunkLimit      int           // max bytes per webhook message
	SendDelay       time.Duration // pause between ordered chunks

	// Collection
	SourcesPath   string
	RequestTimeout time.Duration
	ThrottleMin   time.Duration // politeness delay between queries, lower bound
	ThrottleMax   time.Duration
	MinResults    int // below this the next collection strategy is tried

	// Output caps, per track
	GeneralLimit int
	TopicLimit   int

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		SourcesPath:    "configs/sources.yaml",
		ChunkLimit:     3500,
		SendDelay:      1 * time.Second,
		RequestTimeout: 15 * time.Second,
		ThrottleMin:    1 * time.Second,
		ThrottleMax:    3 * time.Second,
		MinResults:     10,
		GeneralLimit:   15,
		TopicLimit:     5,
	}

	cfg.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")

	if path := os.Getenv("SOURCES_PATH"); path != "" {
		cfg.SourcesPath = path
	}

	if v := os.Getenv("CHUNK_LIMIT"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ChunkLimit = val
		}
	}
	if v := os.Getenv("GENERAL_LIMIT"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.GeneralLimit = val
		}
	}
	if v := os.Getenv("TOPIC_LIMIT"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.TopicLimit = val
		}
	}
	if v := os.Getenv("MIN_RESULTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.MinResults = val
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

// Validate runs before any collection work: a run that cannot deliver its
// output has no value in proceeding.
func (c *Config) Validate() error {
	if c.SlackWebhookURL == "" {
		return fmt.Errorf("SLACK_WEBHOOK_URL is required")
	}
	if c.ChunkLimit < 200 {
		return fmt.Errorf("CHUNK_LIMIT too small: %d", c.ChunkLimit)
	}
	return nil
}
