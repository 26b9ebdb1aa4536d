package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func resetConfigAfter(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		SetConfig(nil)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(4096), cfg.MaxMessageSize)
	assert.Equal(t, 25*time.Second, cfg.Heartbeat.Interval)
	assert.Equal(t, 60*time.Second, cfg.Heartbeat.Timeout)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
}

func TestSetConfigSanitizesValues(t *testing.T) {
	resetConfigAfter(t)

	SetConfig(&Config{
		Port:           "9090",
		MaxMessageSize: -1,
		Heartbeat: HeartbeatConfig{
			Interval: 30 * time.Second,
			Timeout:  time.Second, // shorter than the interval
		},
	})

	cfg := currentConfig()
	assert.Equal(t, ":9090", cfg.Port, "bare port numbers get a colon prefix")
	assert.Equal(t, int64(4096), cfg.MaxMessageSize)
	assert.Equal(t, 30*time.Second, cfg.Heartbeat.Interval)
	assert.Equal(t, 60*time.Second, cfg.Heartbeat.Timeout,
		"timeout at or below the interval is stretched past it")
}

func TestSetConfigNilResetsDefaults(t *testing.T) {
	resetConfigAfter(t)

	SetConfig(&Config{Port: ":9999"})
	SetConfig(nil)

	assert.Equal(t, ":8080", currentConfig().Port)
}

func TestNewConfigFromEnv(t *testing.T) {
	resetConfigAfter(t)

	t.Setenv("PORT", "3001")
	t.Setenv("FRONTEND_URL", "https://crm.example.com, http://localhost:5173")
	t.Setenv("HEARTBEAT_INTERVAL_MS", "10000")
	t.Setenv("HEARTBEAT_TIMEOUT_MS", "30000")
	t.Setenv("MAX_MESSAGE_SIZE", "8192")
	t.Setenv("RATE_LIMIT_BURST", "20")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2")

	cfg := NewConfigFromEnv()

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, []string{"https://crm.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Heartbeat.Interval)
	assert.Equal(t, 30*time.Second, cfg.Heartbeat.Timeout)
	assert.Equal(t, int64(8192), cfg.MaxMessageSize)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
}

func TestNewConfigFromEnvIgnoresGarbage(t *testing.T) {
	resetConfigAfter(t)

	t.Setenv("HEARTBEAT_INTERVAL_MS", "soon")
	t.Setenv("MAX_MESSAGE_SIZE", "-5")
	t.Setenv("RATE_LIMIT_BURST", "0")

	cfg := NewConfigFromEnv()

	assert.Equal(t, 25*time.Second, cfg.Heartbeat.Interval)
	assert.Equal(t, int64(4096), cfg.MaxMessageSize)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}
