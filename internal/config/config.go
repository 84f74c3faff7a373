package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const DefaultSeedURL = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"

type Config struct {
	// HTTP Server
	Port               string
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	// CIDRs whose X-Forwarded-For header is trusted
	TrustedProxies []string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// Seed dataset
	SeedURL     string
	SeedTimeout time.Duration
	SeedOnEmpty bool

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 7*time.Second),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES", nil),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/txdash.db"),

		SeedURL:     getEnv("SEED_URL", DefaultSeedURL),
		SeedTimeout: getEnvDuration("SEED_TIMEOUT", 30*time.Second),
		SeedOnEmpty: getEnvBool("SEED_ON_EMPTY", true),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "txdash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "seed_requests"),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.SeedURL == "" {
		errors = append(errors, "seed URL cannot be empty")
	} else if strings.Contains(c.SeedURL, "://") {
		if parsedURL, err := url.Parse(c.SeedURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid seed URL '%s': %v", c.SeedURL, err))
		} else if !slices.Contains([]string{"http", "https", "file"}, parsedURL.Scheme) {
			errors = append(errors, fmt.Sprintf("invalid seed URL scheme '%s': must be 'http', 'https' or 'file'", parsedURL.Scheme))
		}
	}

	if c.SeedTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid seed timeout %v: must be at least 1 second", c.SeedTimeout))
	} else if c.SeedTimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid seed timeout %v: must be at most 10 minutes", c.SeedTimeout))
	}

	if c.RequestTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 100ms", c.RequestTimeout))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if len(c.CORSAllowedOrigins) == 0 {
		errors = append(errors, "CORS allowed origins cannot be empty")
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR such as 10.0.0.0/8", cidr))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
		// The worker runs in its own process and only shares a store on disk.
		if c.DataBackend == "memory" {
			errors = append(errors, "AMQP messaging requires the sqlite backend: a memory store is not shared with the worker")
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// MessagingEnabled reports whether an AMQP broker is configured.
func (c *Config) MessagingEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
