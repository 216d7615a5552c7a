// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath       = "console.toml"
	DefaultAPIBaseURL       = "http://127.0.0.1:5000/api/v1"
	DefaultTimeoutSeconds   = 30
	DefaultMediaBaseURL     = "https://cdn.pointz.app/media"
	DefaultImageSize        = 300
	DefaultPageLimit        = 10
	DefaultStaleAfterMinute = 5
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log   LogConfig   `toml:"log"`
	API   APIConfig   `toml:"api"`
	Auth  AuthConfig  `toml:"auth"`
	Media MediaConfig `toml:"media"`
	Query QueryConfig `toml:"query"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// APIConfig holds the content API base URL and request timeout.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// AuthConfig holds the admin email for login prompts and the path the session
// token is persisted at between commands. The password is never stored; it is
// prompted or read from BHAKTI_PASSWORD.
type AuthConfig struct {
	Email     string `toml:"email"`
	TokenFile string `toml:"token_file"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	secs := c.TimeoutSeconds
	if secs <= 0 {
		secs = DefaultTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

// MediaConfig holds the public storage base URL and the preferred rendition
// size for image links.
type MediaConfig struct {
	PublicBaseURL string `toml:"public_base_url"`
	ImageSize     int    `toml:"image_size"`
}

// QueryConfig holds read-cache tuning and the default list page size.
type QueryConfig struct {
	StaleAfterMinutes int `toml:"stale_after_minutes"`
	PageLimit         int `toml:"page_limit"`
}

// StaleAfter returns the cache freshness window as a duration.
func (c QueryConfig) StaleAfter() time.Duration {
	mins := c.StaleAfterMinutes
	if mins <= 0 {
		mins = DefaultStaleAfterMinute
	}
	return time.Duration(mins) * time.Minute
}

// Load reads and parses the TOML config file at path and applies default
// values for missing fields. A missing file yields the defaults; the
// BHAKTI_API_BASE_URL environment variable overrides the API base URL either
// way.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		API: APIConfig{
			BaseURL:        DefaultAPIBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Media: MediaConfig{
			PublicBaseURL: DefaultMediaBaseURL,
			ImageSize:     DefaultImageSize,
		},
		Query: QueryConfig{
			StaleAfterMinutes: DefaultStaleAfterMinute,
			PageLimit:         DefaultPageLimit,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if base := os.Getenv("BHAKTI_API_BASE_URL"); base != "" {
		cfg.API.BaseURL = base
	}
	if base := os.Getenv("BHAKTI_MEDIA_BASE_URL"); base != "" {
		cfg.Media.PublicBaseURL = base
	}
}
