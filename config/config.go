package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Browser     BrowserConfig
	Pool        PoolConfig
	Extractor   ExtractorConfig
	MultiSource MultiSourceConfig
	Store       StoreConfig
	Batch       BatchConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Cache       CacheConfig
	Log         LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls how Chromium instances are launched.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional upstream proxy for every page.
	Proxy string

	// Stealth injects the anti-detection script into new pages.
	Stealth bool // default: false

	// UserAgent is the fixed desktop user agent set on every page.
	UserAgent string

	// WindowWidth and WindowHeight fix the viewport.
	WindowWidth  int // default: 1366
	WindowHeight int // default: 768

	// BlockedResourceTypes lists resource types dropped by the request router.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// PoolConfig controls the browser instance pool.
type PoolConfig struct {
	// Max is the number of instances that may exist at once.
	Max int // default: 3

	// Min is the number of idle instances never evicted.
	Min int // default: 1

	// IdleTimeout evicts idle instances above Min.
	IdleTimeout time.Duration // default: 30s

	// Prewarm launches Min instances at startup.
	Prewarm bool // default: false
}

// ExtractorConfig controls the single-review extraction pipeline.
type ExtractorConfig struct {
	// BaseURL is the review site origin.
	BaseURL string // default: "https://www.mymovies.it"

	// NavigationTimeout bounds page navigation alone.
	NavigationTimeout time.Duration // default: 20s

	// SettleDelay is the pause after DOMContentLoaded for late scripts.
	SettleDelay time.Duration // default: 3s
}

// MultiSourceConfig controls multi-source review collection.
type MultiSourceConfig struct {
	// ExaAPIKey enables search-based discovery for bare host sources.
	ExaAPIKey string

	// ExaBaseURL overrides the search API endpoint.
	ExaBaseURL string // default: "https://api.exa.ai"

	// Sites is the default list of Italian review hosts.
	Sites []string

	// ResultsPerQuery is the number of search hits per query.
	ResultsPerQuery int // default: 6

	// Concurrency caps simultaneous document fetches.
	Concurrency int // default: 4

	// HostRPS is the per-host fetch rate.
	HostRPS float64 // default: 1

	// HTTPTimeout is the deadline for the pure HTTP engine.
	HTTPTimeout time.Duration // default: 8s

	// EscalationDelays is the staged start delay for each engine tier.
	EscalationDelays []time.Duration // default: [0s, 3s]
}

// StoreConfig controls persisted reviews.
type StoreConfig struct {
	// ReviewsDir is where review text files are written.
	ReviewsDir string // default: "./reviews"
}

// BatchConfig controls the batch endpoint.
type BatchConfig struct {
	// MaxItems caps films per batch.
	MaxItems int // default: 10

	// Delay is the pause between consecutive titles.
	Delay time.Duration // default: 2s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the extraction result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 500

	// TTL is how long a successful extraction stays fresh.
	TTL time.Duration // default: 6h
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultSites are the Italian outlets searched in multi-source mode.
var DefaultSites = []string{
	"ilpost.it",
	"corriere.it",
	"repubblica.it",
	"sentieriselvaggi.it",
	"cinefacts.it",
	"quinlan.it",
	"movieplayer.it",
	"badtaste.it",
	"cinematographe.it",
	"comingsoon.it",
	"taxidrivers.it",
	"lospaziobianco.it",
}

// DefaultUserAgent is the desktop user agent the review site is fetched with.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("FILMREVIEW_HOST", "0.0.0.0"),
			Port: envIntOr("FILMREVIEW_PORT", 8080),
			Mode: envOr("FILMREVIEW_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("FILMREVIEW_HEADLESS", true),
			NoSandbox:    envBoolOr("FILMREVIEW_NO_SANDBOX", true),
			BrowserBin:   os.Getenv("FILMREVIEW_BROWSER_BIN"),
			Proxy:        os.Getenv("FILMREVIEW_PROXY"),
			Stealth:      envBoolOr("FILMREVIEW_STEALTH", false),
			UserAgent:    envOr("FILMREVIEW_USER_AGENT", DefaultUserAgent),
			WindowWidth:  envIntOr("FILMREVIEW_WINDOW_WIDTH", 1366),
			WindowHeight: envIntOr("FILMREVIEW_WINDOW_HEIGHT", 768),
			BlockedResourceTypes: envSliceOr("FILMREVIEW_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Pool: PoolConfig{
			Max:         envIntOr("FILMREVIEW_POOL_MAX", 3),
			Min:         envIntOr("FILMREVIEW_POOL_MIN", 1),
			IdleTimeout: envDurationOr("FILMREVIEW_POOL_IDLE_TIMEOUT", 30*time.Second),
			Prewarm:     envBoolOr("FILMREVIEW_POOL_PREWARM", false),
		},
		Extractor: ExtractorConfig{
			BaseURL:           envOr("FILMREVIEW_BASE_URL", "https://www.mymovies.it"),
			NavigationTimeout: envDurationOr("FILMREVIEW_NAV_TIMEOUT", 20*time.Second),
			SettleDelay:       envDurationOr("FILMREVIEW_SETTLE_DELAY", 3*time.Second),
		},
		MultiSource: MultiSourceConfig{
			ExaAPIKey:        os.Getenv("EXA_API_KEY"),
			ExaBaseURL:       envOr("EXA_BASE_URL", "https://api.exa.ai"),
			Sites:            envSliceOr("FILMREVIEW_SITES", DefaultSites),
			ResultsPerQuery:  envIntOr("FILMREVIEW_RESULTS_PER_QUERY", 6),
			Concurrency:      envIntOr("FILMREVIEW_FETCH_CONCURRENCY", 4),
			HostRPS:          envFloatOr("FILMREVIEW_HOST_RPS", 1.0),
			HTTPTimeout:      envDurationOr("FILMREVIEW_HTTP_TIMEOUT", 8*time.Second),
			EscalationDelays: envDurationSliceOr("FILMREVIEW_ESCALATION_DELAYS", []time.Duration{0, 3 * time.Second}),
		},
		Store: StoreConfig{
			ReviewsDir: envOr("FILMREVIEW_REVIEWS_DIR", "./reviews"),
		},
		Batch: BatchConfig{
			MaxItems: envIntOr("FILMREVIEW_BATCH_MAX", 10),
			Delay:    envDurationOr("FILMREVIEW_BATCH_DELAY", 2*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("FILMREVIEW_AUTH_ENABLED", true),
			APIKeys: envSliceOr("FILMREVIEW_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("FILMREVIEW_RATE_RPS", 1.0),
			Burst:             envIntOr("FILMREVIEW_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("FILMREVIEW_CACHE_MAX_ENTRIES", 500),
			TTL:        envDurationOr("FILMREVIEW_CACHE_TTL", 6*time.Hour),
		},
		Log: LogConfig{
			Level:  envOr("FILMREVIEW_LOG_LEVEL", "info"),
			Format: envOr("FILMREVIEW_LOG_FORMAT", "json"),
		},
	}
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
