// Package config loads runtime configuration for the story CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   Story API base URL
//	-d string   path of the local SQLite database
//	-v string   cache version tag
//	-b string   cache backend: sqlite or redis
//	-r string   redis address (host:port) for the redis backend
//	-s string   app shell origin
//	-p list     comma separated precache URLs (repeatable)
//	-i int      online status check interval (seconds)
//	-t int      request timeout (seconds)
//	-l string   log level
//	-f string   log format: text or json
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds. Absent keys keep earlier values:
//
//	{
//	  "api_base_url": "https://story-api.dicoding.dev/v1",
//	  "database_path": "storysync.db",
//	  "cache_version": "story-app-v1",
//	  "cache_backend": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "shell_origin": "https://stories.example.com",
//	  "precache_urls": ["/", "/index.html"],
//	  "online_check_interval": "3s",
//	  "request_timeout": "15s",
//	  "log_level": "debug",
//	  "log_format": "json"
//	}
package config
