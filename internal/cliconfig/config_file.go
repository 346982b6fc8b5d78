package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	BaseURL        string            `toml:"base_url"`
	ServerKey      string            `toml:"server_key"`
	Timeout        string            `toml:"timeout"`
	LogLevel       string            `toml:"log_level"`
	Headers        map[string]string `toml:"headers"`
	OutboxDir      string            `toml:"outbox_dir"`
	Workers        int               `toml:"workers"`
	Rate           float64           `toml:"rate"`
	MaxAttempts    int               `toml:"max_attempts"`
	BackoffInitial string            `toml:"backoff_initial"`
	BackoffMax     string            `toml:"backoff_max"`
	Debounce       string            `toml:"debounce"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.msgsend/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".msgsend", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", fc.BaseURL, &cfg.BaseURL)
	s.setString("server-key", fc.ServerKey, &cfg.ServerKey)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("outbox-dir", fc.OutboxDir, &cfg.OutboxDir)
	s.mergeHeaders(fc.Headers, &cfg.Headers)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("backoff-initial", fc.BackoffInitial, &cfg.BackoffInitial); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", fc.BackoffMax, &cfg.BackoffMax); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setInt("max-attempts", fc.MaxAttempts, &cfg.MaxAttempts)
	s.setFloat("rate", fc.Rate, &cfg.Rate)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
