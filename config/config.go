package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Target    TargetConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Engine    EngineConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// DefaultProxy is the proxy URL passed to the launched browser.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// ControlURL connects to an already running browser instead of
	// launching one. The remote browser is left running on Close.
	ControlURL string
}

// ScraperConfig controls per-request browser behavior.
type ScraperConfig struct {
	// DefaultTimeout bounds one whole extraction (navigation + waits + capture).
	DefaultTimeout time.Duration // default: 90s

	// MaxTimeout is the maximum overall timeout a client may request.
	MaxTimeout time.Duration // default: 180s

	// BlockedResourceTypes lists resource types to block.
	// Stylesheets are left alone: visibility checks need layout.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// Stealth injects anti-bot-detection evasions before navigation.
	Stealth bool // default: false

	// BlockAds drops requests to well-known ad and tracking hosts.
	BlockAds bool // default: true
}

// TargetConfig describes what to extract and from where.
type TargetConfig struct {
	URL               string        // default: "https://24h.pchome.com.tw/"
	ContainerSelector string        // default: "#bestSellers"
	ListSelector      string        // default: "ul.c-listInfoGrid__list"
	ItemSelector      string        // default: "li"
	ContainerTimeout  time.Duration // default: 10s
	NavigationTimeout time.Duration // default: 60s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting of API callers.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 1
	Burst             int     // default: 3
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// EngineConfig controls fetch mode selection.
type EngineConfig struct {
	// FetchMode is "browser", "http" or "auto".
	FetchMode string // default: "browser"

	// EscalationDelays is the staged start delay for each engine tier in auto mode.
	EscalationDelays []time.Duration // default: [0s, 3s]

	// HTTPTimeout is the deadline for the static HTTP engine.
	HTTPTimeout time.Duration // default: 10s
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("BESTSELLER_HOST", "0.0.0.0"),
			Port: envIntOr("BESTSELLER_PORT", 8080),
			Mode: envOr("BESTSELLER_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("BESTSELLER_HEADLESS", true),
			MaxPages:     envIntOr("BESTSELLER_MAX_PAGES", 4),
			DefaultProxy: os.Getenv("BESTSELLER_PROXY"),
			NoSandbox:    envBoolOr("BESTSELLER_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("BESTSELLER_BROWSER_BIN"),
			ControlURL:   os.Getenv("BESTSELLER_CONTROL_URL"),
		},
		Scraper: ScraperConfig{
			DefaultTimeout: envDurationOr("BESTSELLER_DEFAULT_TIMEOUT", 90*time.Second),
			MaxTimeout:     envDurationOr("BESTSELLER_MAX_TIMEOUT", 180*time.Second),
			BlockedResourceTypes: envSliceOr("BESTSELLER_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			Stealth:  envBoolOr("BESTSELLER_STEALTH", false),
			BlockAds: envBoolOr("BESTSELLER_BLOCK_ADS", true),
		},
		Target: TargetConfig{
			URL:               envOr("BESTSELLER_TARGET_URL", "https://24h.pchome.com.tw/"),
			ContainerSelector: envOr("BESTSELLER_CONTAINER_SELECTOR", "#bestSellers"),
			ListSelector:      envOr("BESTSELLER_LIST_SELECTOR", "ul.c-listInfoGrid__list"),
			ItemSelector:      envOr("BESTSELLER_ITEM_SELECTOR", "li"),
			ContainerTimeout:  envDurationOr("BESTSELLER_CONTAINER_TIMEOUT", 10*time.Second),
			NavigationTimeout: envDurationOr("BESTSELLER_NAV_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("BESTSELLER_AUTH_ENABLED", true),
			APIKeys: envSliceOr("BESTSELLER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("BESTSELLER_RATE_RPS", 1.0),
			Burst:             envIntOr("BESTSELLER_RATE_BURST", 3),
		},
		Log: LogConfig{
			Level:  envOr("BESTSELLER_LOG_LEVEL", "info"),
			Format: envOr("BESTSELLER_LOG_FORMAT", "json"),
		},
		Engine: EngineConfig{
			FetchMode:        envOr("BESTSELLER_FETCH_MODE", "browser"),
			EscalationDelays: envDurationSliceOr("BESTSELLER_ESCALATION_DELAYS", []time.Duration{0, 3 * time.Second}),
			HTTPTimeout:      envDurationOr("BESTSELLER_HTTP_TIMEOUT", 10*time.Second),
		},
	}
}

// NewLogger builds a slog.Logger writing to w according to the LogConfig.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
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

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
