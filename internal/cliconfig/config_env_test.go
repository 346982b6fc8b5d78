package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"MSGSEND_BASE_URL":        "https://env.example.com/fcm/",
				"MSGSEND_SERVER_KEY":      "env-key",
				"MSGSEND_LOG_LEVEL":       "warn",
				"MSGSEND_OUTBOX_DIR":      "/env/outbox",
				"MSGSEND_TIMEOUT":         "45s",
				"MSGSEND_BACKOFF_INITIAL": "2s",
				"MSGSEND_BACKOFF_MAX":     "2m",
				"MSGSEND_DEBOUNCE":        "50ms",
				"MSGSEND_WORKERS":         "16",
				"MSGSEND_MAX_ATTEMPTS":    "7",
				"MSGSEND_RATE":            "10",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				BaseURL:        "https://env.example.com/fcm/",
				ServerKey:      "env-key",
				LogLevel:       "warn",
				OutboxDir:      "/env/outbox",
				Timeout:        45 * time.Second,
				BackoffInitial: 2 * time.Second,
				BackoffMax:     2 * time.Minute,
				Debounce:       50 * time.Millisecond,
				Workers:        16,
				MaxAttempts:    7,
				Rate:           10,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"MSGSEND_BASE_URL": "https://env.example.com/",
				"MSGSEND_WORKERS":  "16",
			},
			changed:  map[string]bool{"base-url": true},
			initial:  Config{BaseURL: "https://flag.example.com/"},
			expected: Config{BaseURL: "https://flag.example.com/", Workers: 16},
		},
		{
			name:     "non-positive numbers are ignored",
			envVars:  map[string]string{"MSGSEND_WORKERS": "0", "MSGSEND_RATE": "-1"},
			changed:  map[string]bool{},
			initial:  Config{Workers: 4, Rate: 1},
			expected: Config{Workers: 4, Rate: 1},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"MSGSEND_TIMEOUT": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"MSGSEND_WORKERS": "many"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid float",
			envVars: map[string]string{"MSGSEND_RATE": "fast"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyEnvConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyEnvConfig() unexpected error: %v", err)
				return
			}
			if tt.wantErr {
				return
			}
			assertConfigEqual(t, cfg, tt.expected)
		})
	}
}
