package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vbonduro/renovo/internal/rooms"
)

type Config struct {
	ListenAddr string
	DBPath     string

	PhotoBackend string
	PhotoPath    string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string

	TaggerBackend string
	ClaudeAPIKey  string
	ClaudeModel   string
	OllamaHost    string
	OllamaModel   string

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	AllowedOrigins     []string
	CatalogPath        string
	RoomMatchPolicy    string
	SessionIdleTimeout time.Duration

	LogLevel string
	LogFile  string
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, seeds variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		DBPath:             getEnv("DB_PATH", "/data/renovo.db"),
		PhotoBackend:       getEnv("PHOTO_BACKEND", "local"),
		PhotoPath:          getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		TaggerBackend:      getEnv("TAGGER_BACKEND", "none"),
		ClaudeAPIKey:       getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:        getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-latest"),
		OllamaHost:         getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:        getEnv("OLLAMA_MODEL", "llava"),
		MQTTBroker:         getEnv("MQTT_BROKER", ""),
		MQTTClientID:       getEnv("MQTT_CLIENT_ID", "renovo"),
		MQTTTopicPrefix:    getEnv("MQTT_TOPIC_PREFIX", "renovo"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "*")),
		CatalogPath:        getEnv("CATALOG_PATH", ""),
		RoomMatchPolicy:    getEnv("ROOM_MATCH_POLICY", string(rooms.Loose)),
		SessionIdleTimeout: getDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var problems []error

	switch c.PhotoBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			problems = append(problems, errors.New("S3_BUCKET is required when PHOTO_BACKEND=s3"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown PHOTO_BACKEND %q", c.PhotoBackend))
	}

	switch c.TaggerBackend {
	case "none", "ollama":
	case "claude":
		if c.ClaudeAPIKey == "" {
			problems = append(problems, errors.New("CLAUDE_API_KEY is required when TAGGER_BACKEND=claude"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown TAGGER_BACKEND %q", c.TaggerBackend))
	}

	if _, err := rooms.ParsePolicy(c.RoomMatchPolicy); err != nil {
		problems = append(problems, err)
	}
	if c.SessionIdleTimeout <= 0 {
		problems = append(problems, errors.New("SESSION_IDLE_TIMEOUT must be positive"))
	}
	return errors.Join(problems...)
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// getDuration returns defaultVal when key is unset and 0 when it does not
// parse, which Validate rejects.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
