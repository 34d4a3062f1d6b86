package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
)

// Default extraction patterns, matching the common shape of SMS
// verification messages.
const (
	DefaultCodePattern   = `\d{4,8}`
	DefaultSenderPattern = `[\[【](.*?)[\]】]`

	DefaultWindow = 180
	DefaultMaxlen = 3
)

// ProfileConfig is one profile definition from the config file. The secret
// here may be overridden at startup by the SECRET_<NAME> environment
// variable.
type ProfileConfig struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
	Window int    `json:"window"`
	Maxlen int    `json:"maxlen"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool

	APIRequestsPerMinute    int
	VerifyRequestsPerMinute int
	SubmitRequestsPerMinute int
}

// SecurityHeadersConfig holds security header configuration.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
}

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Message submission credential (shared with the forwarding agent).
	APIKey string

	// Extraction
	CodePattern   string
	SenderPattern string
	MailProviders []string

	// Profiles
	Profiles []ProfileConfig

	// HTTP
	AllowedOrigins     []string
	MaxRequestBodySize int64
	HeartbeatInterval  time.Duration
	ServeUI            bool
	UIDir              string

	RateLimit       RateLimitConfig
	SecurityHeaders SecurityHeadersConfig
}

// fileConfig is the on-disk shape of config.json. The file is parsed as
// JSONC so operator comments and trailing commas are tolerated.
type fileConfig struct {
	MailProviders []string `json:"mail_providers"`
	Regex         struct {
		Code   string `json:"code"`
		Sender string `json:"sender"`
	} `json:"regex"`
	APIKey   string          `json:"api_key"`
	Profiles []ProfileConfig `json:"profiles"`
}

// Load loads configuration from environment variables and the config file
// (CONFIG_PATH, default "config.json"). A missing config file is not an
// error; it just yields an empty profile list and default patterns.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 5074),

		CodePattern:   DefaultCodePattern,
		SenderPattern: DefaultSenderPattern,

		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 64*1024)),
		HeartbeatInterval:  getEnvDuration("STREAM_HEARTBEAT", 15*time.Second),
		ServeUI:            getEnvBool("SERVE_UI", false),
		UIDir:              getEnv("UI_DIR", "web/dist"),

		AllowedOrigins: splitEnvList("ALLOWED_ORIGINS"),

		RateLimit: RateLimitConfig{
			Enabled:                 getEnvBool("RATE_LIMIT_ENABLED", true),
			APIRequestsPerMinute:    getEnvInt("RATE_LIMIT_API_PER_MINUTE", 90),
			VerifyRequestsPerMinute: getEnvInt("RATE_LIMIT_VERIFY_PER_MINUTE", 10),
			SubmitRequestsPerMinute: getEnvInt("RATE_LIMIT_SUBMIT_PER_MINUTE", 30),
		},
		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-src 'none'; object-src 'none'"),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "strict-origin-when-cross-origin"),
		},
	}

	path := getEnv("CONFIG_PATH", "config.json")
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Environment override wins over the file value.
	if key := os.Getenv("API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY is required (env or %q)", path)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	c.MailProviders = fc.MailProviders
	if fc.Regex.Code != "" {
		c.CodePattern = fc.Regex.Code
	}
	if fc.Regex.Sender != "" {
		c.SenderPattern = fc.Regex.Sender
	}
	c.APIKey = fc.APIKey

	c.Profiles = fc.Profiles
	for i := range c.Profiles {
		if c.Profiles[i].Window <= 0 {
			c.Profiles[i].Window = DefaultWindow
		}
		if c.Profiles[i].Maxlen <= 0 {
			c.Profiles[i].Maxlen = DefaultMaxlen
		}
	}

	return nil
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

func splitEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
