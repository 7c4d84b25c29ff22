package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for requests matching Method and Path.
type EndpointConfig struct {
	Method string
	// Path is matched segment by segment; "*" matches any one segment and a
	// trailing "/" matches any remaining path.
	Path   string
	Limit  int           // requests per window
	Window time.Duration
	Burst  int // bucket capacity; defaults to Limit
}

// LoadConfig reads rate limiting configuration from RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(getEnvInt("RATE_LIMIT_CHAT_PER_HOUR", 120)),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. Every model call
// shares the chat budget.
func DefaultEndpointConfigs(chatPerHour int) []EndpointConfig {
	chatBurst := max(chatPerHour/20, 1)
	return []EndpointConfig{
		// model calls
		{Method: "POST", Path: "/chat/propose", Limit: chatPerHour, Window: time.Hour, Burst: chatBurst},
		{Method: "POST", Path: "/sessions/*/messages", Limit: chatPerHour, Window: time.Hour, Burst: chatBurst},
		{Method: "POST", Path: "/sessions/*/messages/stream", Limit: chatPerHour, Window: time.Hour, Burst: chatBurst},
		{Method: "POST", Path: "/sessions", Limit: 60, Window: time.Hour, Burst: 10}, // may fetch a job posting

		// writes
		{Method: "POST", Path: "/chat/apply", Limit: 300, Window: time.Minute, Burst: 30},
		{Method: "POST", Path: "/sessions/", Limit: 300, Window: time.Minute, Burst: 30},
		{Method: "PUT", Path: "/sessions/", Limit: 300, Window: time.Minute, Burst: 30},
		{Method: "PUT", Path: "/resumes/", Limit: 300, Window: time.Minute, Burst: 30},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
