package cliconfig

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("MSGSEND_SERVER_KEY", "env-key")
	cfg := DefaultConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %v, want %v", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Timeout)
	}
	if cfg.ServerKey != "env-key" {
		t.Errorf("ServerKey = %v, want env-key", cfg.ServerKey)
	}
	if cfg.Headers == nil {
		t.Error("Headers should be non-nil")
	}
	if cfg.Workers != 4 || cfg.MaxAttempts != 5 {
		t.Errorf("Workers/MaxAttempts = %d/%d, want 4/5", cfg.Workers, cfg.MaxAttempts)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		wantBaseURL string
	}{
		{
			name:        "valid minimal config",
			config:      Config{BaseURL: "http://localhost:8080/", Timeout: time.Second},
			wantBaseURL: "http://localhost:8080/",
		},
		{
			name:        "empty base url falls back to default",
			config:      Config{Timeout: time.Second},
			wantBaseURL: DefaultBaseURL,
		},
		{
			name:        "surrounding space trimmed",
			config:      Config{BaseURL: "  https://push.example.com/fcm/ ", Timeout: time.Second},
			wantBaseURL: "https://push.example.com/fcm/",
		},
		{
			name:    "relative base url",
			config:  Config{BaseURL: "fcm/", Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			config:  Config{BaseURL: "ftp://example.com/", Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "zero timeout",
			config:  Config{BaseURL: "http://localhost/"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.BaseURL != tt.wantBaseURL {
				t.Errorf("BaseURL = %v, want %v", cfg.BaseURL, tt.wantBaseURL)
			}
			if cfg.Headers == nil {
				t.Error("Headers should be non-nil after Validate")
			}
		})
	}
}

func TestConfig_ValidateOutbox(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.OutboxDir = "/tmp/outbox"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults with dir", mutate: func(c *Config) {}},
		{name: "missing dir", mutate: func(c *Config) { c.OutboxDir = "" }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.MaxAttempts = 0 }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.Rate = -1 }, wantErr: true},
		{name: "max below initial", mutate: func(c *Config) { c.BackoffMax = c.BackoffInitial / 2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.ValidateOutbox()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutbox() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	if _, err := Logger("debug"); err != nil {
		t.Errorf("Logger(debug) unexpected error: %v", err)
	}
	if _, err := Logger("verbose"); err == nil {
		t.Error("Logger(verbose) expected error")
	}
}
