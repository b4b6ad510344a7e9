package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/storysync/internal/flagx"
	"github.com/dmitrijs2005/storysync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	DatabasePath        string         `json:"database_path"`
	CacheVersion        string         `json:"cache_version"`
	CacheBackend        string         `json:"cache_backend"`
	RedisAddr           string         `json:"redis_addr"`
	ShellOrigin         string         `json:"shell_origin"`
	PrecacheURLs        []string       `json:"precache_urls"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
}

// parseJson overlays Config with the non-empty values of the JSON file named
// by -c or -config. Without such a flag it does nothing. It panics on read
// or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.CacheVersion, jc.CacheVersion)
	setString(&cfg.CacheBackend, jc.CacheBackend)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.ShellOrigin, jc.ShellOrigin)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.PrecacheURLs != nil {
		cfg.PrecacheURLs = jc.PrecacheURLs
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
