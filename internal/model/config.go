package model

import "time"

// Config is the complete runtime configuration.
//
// Hierarchy (highest to lowest priority):
//  1. CLI flags
//  2. Environment variables (REVIEWSCOPE_*)
//  3. Config file (~/.reviewscope/config.yaml)
//  4. Defaults
type Config struct {
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
}

// HTTPConfig controls the shared HTTP session used by all scrapers.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// ScrapeConfig controls pagination and politeness for platform scrapers.
type ScrapeConfig struct {
	// Delay is the blocking pause between successive page requests to the
	// same platform, on top of the per-domain rate limit.
	Delay      time.Duration             `yaml:"delay" mapstructure:"delay"`
	MaxRetries int                       `yaml:"max_retries" mapstructure:"max_retries"`
	MaxPages   int                       `yaml:"max_pages" mapstructure:"max_pages"`
	Platforms  map[string]PlatformConfig `yaml:"platforms" mapstructure:"platforms"`
}

// PlatformConfig holds per-platform endpoints.
type PlatformConfig struct {
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	SearchPath string `yaml:"search_path" mapstructure:"search_path"`
}

// RateLimitConfig controls the per-domain token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls the layered page cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LLMConfig configures the optional review digest. Disabled unless Provider
// is set.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"-"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SupportedSources lists the platforms in fixed dispatch order. "all" selects
// every platform.
var SupportedSources = []string{"g2", "capterra", "trustpilot", "all"}

// DefaultUserAgent mimics a desktop browser; several review platforms serve
// reduced markup to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    DefaultUserAgent,
			MaxBodyBytes: 2_000_000,
		},
		Scrape: ScrapeConfig{
			Delay:      2 * time.Second,
			MaxRetries: 3,
			MaxPages:   50,
			Platforms: map[string]PlatformConfig{
				"g2": {
					BaseURL:    "https://www.g2.com",
					SearchPath: "/search",
				},
				"capterra": {
					BaseURL:    "https://www.capterra.com",
					SearchPath: "/software-search",
				},
				"trustpilot": {
					BaseURL:    "https://www.trustpilot.com",
					SearchPath: "/search",
				},
			},
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0.5,
			BurstSize:         1,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".reviewscope-cache",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		Output: OutputConfig{
			Dir: "output",
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 600,
		},
	}
}
