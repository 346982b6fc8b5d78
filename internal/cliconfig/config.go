package cliconfig

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alyoongchat/msgsend/pkg/endpoint"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = endpoint.DefaultBaseURL

// Config holds CLI configuration for msgsend.
type Config struct {
	BaseURL   string
	ServerKey string
	Headers   map[string]string
	Timeout   time.Duration
	LogLevel  string

	OutboxDir      string
	Workers        int
	Rate           float64
	MaxAttempts    int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	Debounce       time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		ServerKey:      os.Getenv("MSGSEND_SERVER_KEY"),
		Headers:        map[string]string{},
		Timeout:        15 * time.Second,
		LogLevel:       "info",
		Workers:        4,
		MaxAttempts:    5,
		BackoffInitial: 500 * time.Millisecond,
		BackoffMax:     30 * time.Second,
		Debounce:       100 * time.Millisecond,
	}
}

// Validate checks the configuration for errors and fills derived defaults.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base-url must be an absolute http(s) URL, got %q", c.BaseURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Headers == nil {
		c.Headers = map[string]string{}
	}
	return nil
}

// ValidateOutbox checks the settings used by the watch command.
func (c *Config) ValidateOutbox() error {
	if c.OutboxDir == "" {
		return fmt.Errorf("outbox-dir is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max-attempts must be positive")
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative")
	}
	if c.BackoffInitial <= 0 || c.BackoffMax < c.BackoffInitial {
		return fmt.Errorf("backoff must satisfy 0 < initial <= max")
	}
	return nil
}

// configSetter applies configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// mergeHeaders overlays values onto dst; the overlay wins per header name.
func (s *configSetter) mergeHeaders(values map[string]string, dst *map[string]string) {
	if len(values) == 0 {
		return
	}
	merged := make(map[string]string, len(values)+len(*dst))
	for k, v := range *dst {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	*dst = merged
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}
