package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultPort is used when PORT is unset
const DefaultPort = 5000

// DefaultAllowedOrigins are the browser origins allowed to call the API
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"https://musicland.netlify.app",
	"https://*.netlify.app",
}

// Config holds the service configuration. It is read once at startup and
// passed explicitly; nothing else reads the environment.
type Config struct {
	Environment string
	Port        int
	TempDir     string // downloaded audio and generated MIDI live here

	// Transcription engine
	PythonPath string // empty picks .venv/bin/python or python3
	ModelPath  string // empty uses the model bundled with basic-pitch

	// Observability
	SentryDSN string

	AllowedOrigins []string
}

// Load reads configuration from the environment
func Load() (Config, error) {
	port, err := parsePort(getEnv("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return Config{}, err
	}

	return Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		Port:           port,
		TempDir:        getEnv("TEMP_DIR", os.TempDir()),
		PythonPath:     getEnv("PYTHON_PATH", ""),
		ModelPath:      getEnv("BASIC_PITCH_MODEL", ""),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		AllowedOrigins: append([]string(nil), DefaultAllowedOrigins...),
	}, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid PORT %q: %w", s, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid PORT %d: out of range", port)
	}
	return port, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// IsProduction reports whether the service runs in production
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
