package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

// Config holds runtime settings for the story CLI.
//
// Fields:
//   - APIBaseURL: root of the Story API, every API route hangs below it.
//   - DatabasePath: SQLite file backing the local store and the sqlite cache.
//   - CacheVersion: the current cache generation tag.
//   - CacheBackend / RedisAddr: where cache buckets live.
//   - ShellOrigin / PrecacheURLs: origin of the app shell and the assets
//     preloaded on install (relative to ShellOrigin).
//   - OnlineCheckInterval: how often the client checks that the server is reachable.
//   - RequestTimeout: upper bound for a single HTTP request.
type Config struct {
	APIBaseURL          string
	DatabasePath        string
	CacheVersion        string
	CacheBackend        string
	RedisAddr           string
	ShellOrigin         string
	PrecacheURLs        []string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	LogLevel            string
	LogFormat           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://story-api.dicoding.dev/v1"
	c.DatabasePath = "storysync.db"
	c.CacheVersion = "story-app-v1"
	c.CacheBackend = CacheBackendSQLite
	c.RedisAddr = ""
	c.ShellOrigin = ""
	c.PrecacheURLs = []string{"/", "/index.html", "/favicon.png", "/manifest.json"}
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.CacheVersion == "" {
		errs = append(errs, errors.New("cache version is required"))
	}
	switch c.CacheBackend {
	case CacheBackendSQLite:
	case CacheBackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("redis cache backend needs a redis address"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.CacheBackend))
	}
	if c.OnlineCheckInterval <= 0 {
		errs = append(errs, errors.New("online check interval must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
