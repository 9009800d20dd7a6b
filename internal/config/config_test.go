package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.TaggerBackend)
}

func TestLoadExplicitDefaults(t *testing.T) {
	t.Setenv("PHOTO_BACKEND", "local")
	t.Setenv("TAGGER_BACKEND", "none")
	t.Setenv("ALLOWED_ORIGINS", "*")
	t.Setenv("SESSION_IDLE_TIMEOUT", "2h")
	t.Setenv("ROOM_MATCH_POLICY", "loose")

	cfg := Load()

	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("TAGGER_BACKEND", "claude")
	t.Setenv("CLAUDE_API_KEY", "sk-test123")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("SESSION_IDLE_TIMEOUT", "15m")
	t.Setenv("MQTT_BROKER", "tcp://mqtt:1883")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "claude", cfg.TaggerBackend)
	assert.Equal(t, "sk-test123", cfg.ClaudeAPIKey)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, "tcp://mqtt:1883", cfg.MQTTBroker)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			PhotoBackend:       "local",
			TaggerBackend:      "none",
			RoomMatchPolicy:    "loose",
			SessionIdleTimeout: time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"s3 without bucket", func(c *Config) { c.PhotoBackend = "s3" }, "S3_BUCKET"},
		{"unknown photo backend", func(c *Config) { c.PhotoBackend = "ftp" }, "PHOTO_BACKEND"},
		{"claude without key", func(c *Config) { c.TaggerBackend = "claude" }, "CLAUDE_API_KEY"},
		{"unknown tagger", func(c *Config) { c.TaggerBackend = "gpt" }, "TAGGER_BACKEND"},
		{"bad policy", func(c *Config) { c.RoomMatchPolicy = "fuzzy" }, "fuzzy"},
		{"bad timeout", func(c *Config) { c.SessionIdleTimeout = 0 }, "SESSION_IDLE_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInvalidDurationRejected(t *testing.T) {
	t.Setenv("SESSION_IDLE_TIMEOUT", "soon")
	cfg := Load()
	assert.Equal(t, time.Duration(0), cfg.SessionIdleTimeout)
	assert.Error(t, cfg.Validate())
}
