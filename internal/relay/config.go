// Package relay provides configuration helpers that define runtime defaults,
// validation, and transport parameters for the conversation relay.
package relay

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// HeartbeatConfig controls the transport keep-alive used to detect dead
// connections: pings every Interval, disconnect after Timeout without a pong.
type HeartbeatConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// RateLimitConfig defines the parameters for per-connection frame rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the relay configuration, including the CORS origin list the
// frontend connects from.
type Config struct {
	Port           string
	AllowedOrigins []string
	MaxMessageSize int64
	Heartbeat      HeartbeatConfig
	RateLimit      RateLimitConfig
}

var (
	configMu        sync.RWMutex
	activeConfig    Config
	allowedOrigins  map[string]struct{}
	allowAllOrigins bool
)

func init() {
	SetConfig(nil)
}

func defaultConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:3000",
		},
		MaxMessageSize: 4096,
		Heartbeat: HeartbeatConfig{
			Interval: 25 * time.Second,
			Timeout:  60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Burst:          10,
			RefillInterval: time.Second,
		},
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = ":8080"
	}
	if !strings.HasPrefix(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}

	if cfg.Heartbeat.Interval <= 0 {
		cfg.Heartbeat.Interval = 25 * time.Second
	}
	if cfg.Heartbeat.Timeout <= cfg.Heartbeat.Interval {
		// A timeout shorter than the ping interval would drop every client.
		cfg.Heartbeat.Timeout = 2 * cfg.Heartbeat.Interval
	}

	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 10
	}
	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = time.Second
	}

	normalizedOrigins, allowAll := normalizeOrigins(cfg.AllowedOrigins)
	cfg.AllowedOrigins = normalizedOrigins

	configMu.Lock()
	defer configMu.Unlock()

	activeConfig = cfg
	allowAllOrigins = allowAll
	allowedOrigins = make(map[string]struct{}, len(normalizedOrigins))
	for _, origin := range normalizedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return cfg
}

// SetConfig applies the provided configuration. Passing nil resets to defaults.
func SetConfig(cfg *Config) {
	if cfg == nil {
		defaults := defaultConfig()
		sanitizeConfig(defaults)
		return
	}

	sanitized := Config{
		Port:           cfg.Port,
		AllowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		MaxMessageSize: cfg.MaxMessageSize,
		Heartbeat:      cfg.Heartbeat,
		RateLimit:      cfg.RateLimit,
	}
	sanitizeConfig(sanitized)
}

func currentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := activeConfig
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// NewConfig creates a Config populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config from environment variables, falling back
// to defaults for anything unset. FRONTEND_URL takes a comma separated origin
// list; "*" allows every origin. Heartbeat values are in milliseconds, the
// rate limit refill interval in seconds.
func NewConfigFromEnv() *Config {
	cfg := defaultConfig()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if origins := os.Getenv("FRONTEND_URL"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	if interval := os.Getenv("HEARTBEAT_INTERVAL_MS"); interval != "" {
		cfg.Heartbeat.Interval = parseMilliseconds(interval, cfg.Heartbeat.Interval)
	}

	if timeout := os.Getenv("HEARTBEAT_TIMEOUT_MS"); timeout != "" {
		cfg.Heartbeat.Timeout = parseMilliseconds(timeout, cfg.Heartbeat.Timeout)
	}

	if maxSize := os.Getenv("MAX_MESSAGE_SIZE"); maxSize != "" {
		cfg.MaxMessageSize = parseMaxMessageSize(maxSize, cfg.MaxMessageSize)
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		cfg.RateLimit.Burst = parsePositiveInt(burst, cfg.RateLimit.Burst)
	}

	if interval := os.Getenv("RATE_LIMIT_REFILL_INTERVAL"); interval != "" {
		cfg.RateLimit.RefillInterval = parseSeconds(interval, cfg.RateLimit.RefillInterval)
	}

	return &cfg
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseMaxMessageSize(value string, defaultValue int64) int64 {
	if size, err := strconv.ParseInt(value, 10, 64); err == nil && size > 0 {
		return size
	}
	return defaultValue
}

func parsePositiveInt(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseMilliseconds(value string, defaultValue time.Duration) time.Duration {
	if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func parseSeconds(value string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
