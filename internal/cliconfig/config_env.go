package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (MSGSEND_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", os.Getenv("MSGSEND_BASE_URL"), &cfg.BaseURL)
	s.setString("server-key", os.Getenv("MSGSEND_SERVER_KEY"), &cfg.ServerKey)
	s.setString("log-level", os.Getenv("MSGSEND_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("outbox-dir", os.Getenv("MSGSEND_OUTBOX_DIR"), &cfg.OutboxDir)

	if err := s.setDuration("timeout", os.Getenv("MSGSEND_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("backoff-initial", os.Getenv("MSGSEND_BACKOFF_INITIAL"), &cfg.BackoffInitial); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", os.Getenv("MSGSEND_BACKOFF_MAX"), &cfg.BackoffMax); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("MSGSEND_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	if err := s.setIntFromString("workers", os.Getenv("MSGSEND_WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	if err := s.setIntFromString("max-attempts", os.Getenv("MSGSEND_MAX_ATTEMPTS"), &cfg.MaxAttempts); err != nil {
		return err
	}
	if err := s.setFloatFromString("rate", os.Getenv("MSGSEND_RATE"), &cfg.Rate); err != nil {
		return err
	}

	return nil
}
