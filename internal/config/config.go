// Package config loads server and CLI configuration from a JSON or YAML file
// and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-assistant/internal/fetch"
	"github.com/jonathan/resume-assistant/internal/llm"
)

// Config is the application configuration. All fields are optional; zero
// values are filled by MergeWithDefaults.
type Config struct {
	// Server
	Port           string   `json:"port,omitempty" yaml:"port,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"` // CORS origins, "*" allows any
	SessionTTL     string   `json:"session_ttl,omitempty" yaml:"session_ttl,omitempty"`         // e.g. "2h"

	// Storage
	DatabaseURL   string `json:"database_url,omitempty" yaml:"database_url,omitempty"`       // PostgreSQL; empty disables accounts
	GuestCacheDir string `json:"guest_cache_dir,omitempty" yaml:"guest_cache_dir,omitempty"` // file cache for guest sessions

	// Language model
	LLMProvider string  `json:"llm_provider,omitempty" yaml:"llm_provider,omitempty"` // gemini, openai or anthropic
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model       string  `json:"model,omitempty" yaml:"model,omitempty"` // overrides the chat model
	Temperature float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`

	// Job postings
	UseBrowser     bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`         // render JavaScript job boards in headless Chrome
	BrowserTimeout string `json:"browser_timeout,omitempty" yaml:"browser_timeout,omitempty"` // e.g. "30s"

	// Behavior
	AtomicBatches bool   `json:"atomic_batches,omitempty" yaml:"atomic_batches,omitempty"` // abandon a batch at its first failing change
	Template      string `json:"template,omitempty" yaml:"template,omitempty"`             // LaTeX preview template
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:           "8080",
		AllowedOrigins: []string{"*"},
		SessionTTL:     "2h",
		BrowserTimeout: "30s",
		GuestCacheDir:  filepath.Join(".resume-assistant", "guests"),
		LLMProvider:    string(llm.ProviderGemini),
		Temperature:    llm.DefaultTemperature,
		MaxTokens:      llm.DefaultMaxTokens,
		LogLevel:       "info",
	}
}

// LoadConfig loads configuration from a file. Files ending in .yaml or .yml
// are read as YAML, anything else as JSON.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv returns a configuration read only from environment variables.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields with any environment variables that are set.
// The API key falls back to the provider's conventional variable
// (GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY).
func (c *Config) ApplyEnv() error {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(&c.Port, "PORT")
	setString(&c.SessionTTL, "SESSION_TTL")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.GuestCacheDir, "GUEST_CACHE_DIR")
	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.APIKey, "LLM_API_KEY")
	setString(&c.Model, "LLM_MODEL")
	setString(&c.Template, "RESUME_TEMPLATE")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.BrowserTimeout, "BROWSER_TIMEOUT")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
		}
		c.Temperature = float32(f)
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
		}
		c.MaxTokens = n
	}
	if v := os.Getenv("ATOMIC_BATCHES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ATOMIC_BATCHES: %w", err)
		}
		c.AtomicBatches = b
	}
	if v := os.Getenv("USE_BROWSER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid USE_BROWSER: %w", err)
		}
		c.UseBrowser = b
	}

	if c.APIKey == "" {
		provider, err := llm.ParseProvider(c.LLMProvider)
		if err == nil {
			c.APIKey = os.Getenv(providerKeyEnv[provider])
		}
	}
	return nil
}

var providerKeyEnv = map[llm.Provider]string{
	llm.ProviderGemini:    "GEMINI_API_KEY",
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Validate checks that the configuration has valid values.
// Missing credentials are not an error here; commands that need them check.
func (c *Config) Validate() error {
	if _, err := llm.ParseProvider(c.LLMProvider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("config error: 'max_tokens' must be non-negative")
	}
	if c.Port != "" {
		if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
			return fmt.Errorf("config error: invalid port %q", c.Port)
		}
	}
	if c.SessionTTL != "" {
		if d, err := time.ParseDuration(c.SessionTTL); err != nil || d <= 0 {
			return fmt.Errorf("config error: invalid session_ttl %q", c.SessionTTL)
		}
	}
	if c.BrowserTimeout != "" {
		if d, err := time.ParseDuration(c.BrowserTimeout); err != nil || d <= 0 {
			return fmt.Errorf("config error: invalid browser_timeout %q", c.BrowserTimeout)
		}
	}
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == "" {
		result.Port = defaults.Port
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}
	if result.SessionTTL == "" {
		result.SessionTTL = defaults.SessionTTL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.GuestCacheDir == "" {
		result.GuestCacheDir = defaults.GuestCacheDir
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.BrowserTimeout == "" {
		result.BrowserTimeout = defaults.BrowserTimeout
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// A zero temperature means unset; use 0.01 for near-deterministic output.
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.MaxTokens == 0 {
		result.MaxTokens = defaults.MaxTokens
	}

	// Bools cannot distinguish unset from false, so they are not merged.

	return result
}

// LLM returns the provider configuration for the language model client.
func (c *Config) LLM() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.LLMProvider)
	if err != nil {
		return nil, err
	}
	cfg := llm.DefaultConfigFor(provider)
	if c.Model != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.Model)
	}
	return cfg.WithSampling(c.Temperature, c.MaxTokens), nil
}

// Fetch returns the job posting download options.
func (c *Config) Fetch() *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.UseBrowser = c.UseBrowser
	if d, err := time.ParseDuration(c.BrowserTimeout); err == nil {
		opts.BrowserTimeout = d
	}
	return opts
}

// SessionTimeout returns SessionTTL as a duration, or zero when unset or invalid.
func (c *Config) SessionTimeout() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 0
	}
	return d
}
