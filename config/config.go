package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig is the immutable per-search session configuration. It is
// resolved once at process start and passed to the launcher and orchestrator
// by parameter; a search never reads the environment directly.
type BrowserConfig struct {
	// Kind selects the browser family to launch. One of "chrome",
	// "chromium", "brave", "edge". Unrecognized values silently fall
	// back — never an error.
	Kind string // default: "chrome"

	// Headless controls whether sessions run headless.
	Headless bool // default: true

	// Debug enables HTML snapshots per page load and, together with
	// Headless=false, the long interactive wait budget.
	Debug bool // default: false

	// Bin overrides the browser executable path.
	Bin string

	// SnapshotDir is where debug HTML snapshots are written.
	SnapshotDir string // default: os.TempDir()

	// WaitTimeout bounds required element waits during automated runs.
	WaitTimeout time.Duration // default: 10s

	// DebugWaitTimeout replaces WaitTimeout when Debug is on and Headless
	// is off, leaving time for interactive troubleshooting.
	DebugWaitTimeout time.Duration // default: 2m

	// MaxImages hard-caps the number of image URLs returned per search.
	MaxImages int // default: 10
}

// WaitBudget returns the timeout for required element waits. Debugging with
// a visible browser needs patience; automated runs need fast failure.
func (c BrowserConfig) WaitBudget() time.Duration {
	if c.Debug && !c.Headless {
		return c.DebugWaitTimeout
	}
	return c.WaitTimeout
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys. When empty, the auth
	// middleware is a no-op and the API is open.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or client IP.
	// Each allowed request launches a browser, so the defaults are low.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per identity.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// knownBrowserKinds enumerates the recognized SEEKER_BROWSER values.
var knownBrowserKinds = map[string]struct{}{
	"chrome":   {},
	"chromium": {},
	"brave":    {},
	"edge":     {},
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SEEKER_HOST", "0.0.0.0"),
			Port: envIntOr("SEEKER_PORT", 8080),
			Mode: envOr("SEEKER_MODE", "release"),
		},
		Browser: BrowserConfig{
			Kind:             browserKindOr("SEEKER_BROWSER", "chrome"),
			Headless:         envBoolOr("SEEKER_HEADLESS", true),
			Debug:            envBoolOr("SEEKER_DEBUG", false),
			Bin:              os.Getenv("SEEKER_BROWSER_BIN"),
			SnapshotDir:      envOr("SEEKER_SNAPSHOT_DIR", os.TempDir()),
			WaitTimeout:      envDurationOr("SEEKER_WAIT_TIMEOUT", 10*time.Second),
			DebugWaitTimeout: envDurationOr("SEEKER_DEBUG_WAIT_TIMEOUT", 2*time.Minute),
			MaxImages:        envIntOr("SEEKER_MAX_IMAGES", 10),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SEEKER_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SEEKER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SEEKER_RATE_RPS", 2.0),
			Burst:             envIntOr("SEEKER_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("SEEKER_LOG_LEVEL", "info"),
			Format: envOr("SEEKER_LOG_FORMAT", "json"),
		},
	}
}

// browserKindOr resolves the configured browser kind against the known set.
// Unrecognized values fall back to the default — a fallback, not an error.
func browserKindOr(key, fallback string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if _, ok := knownBrowserKinds[v]; ok {
		return v
	}
	return fallback
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
