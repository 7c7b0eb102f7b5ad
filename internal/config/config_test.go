package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Polling.MaxAttempts != 30 {
		t.Errorf("Polling.MaxAttempts = %d, want 30", cfg.Polling.MaxAttempts)
	}
	if cfg.Polling.FixedAttempts != 5 {
		t.Errorf("Polling.FixedAttempts = %d, want 5", cfg.Polling.FixedAttempts)
	}
	if cfg.Polling.BackoffFactor != 1.2 {
		t.Errorf("Polling.BackoffFactor = %v, want 1.2", cfg.Polling.BackoffFactor)
	}
	if cfg.Polling.MaxInterval() != 3*time.Second {
		t.Errorf("Polling.MaxInterval() = %v, want 3s", cfg.Polling.MaxInterval())
	}
	if cfg.Debate.DefaultMaxRounds != 6 {
		t.Errorf("Debate.DefaultMaxRounds = %d, want 6", cfg.Debate.DefaultMaxRounds)
	}
	if cfg.Typing.ShowDelay() != 800*time.Millisecond {
		t.Errorf("Typing.ShowDelay() = %v, want 800ms", cfg.Typing.ShowDelay())
	}
	if cfg.Typing.HideDebounce() != 150*time.Millisecond {
		t.Errorf("Typing.HideDebounce() = %v, want 150ms", cfg.Typing.HideDebounce())
	}
	if cfg.Summary.StepInterval() != time.Second {
		t.Errorf("Summary.StepInterval() = %v, want 1s", cfg.Summary.StepInterval())
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want INFO", cfg.Logging.Level)
	}
}

func TestLoad_ClampsBadValues(t *testing.T) {
	resetViper(t)
	SetDefaults()
	viper.Set("polling.max_attempts", -1)
	viper.Set("polling.backoff_factor", 0.5)
	viper.Set("polling.max_interval_ms", 10)
	viper.Set("server.request_timeout_seconds", 0)
	viper.Set("summary.step_interval_ms", -5)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Polling.MaxAttempts != 30 {
		t.Errorf("MaxAttempts clamped to %d, want 30", cfg.Polling.MaxAttempts)
	}
	if cfg.Polling.BackoffFactor != 1.2 {
		t.Errorf("BackoffFactor clamped to %v, want 1.2", cfg.Polling.BackoffFactor)
	}
	if cfg.Polling.MaxIntervalMs != 3000 {
		t.Errorf("MaxIntervalMs clamped to %d, want 3000", cfg.Polling.MaxIntervalMs)
	}
	if cfg.Server.RequestTimeout() != 15*time.Second {
		t.Errorf("RequestTimeout clamped to %v, want 15s", cfg.Server.RequestTimeout())
	}
	if cfg.Summary.StepIntervalMs != 1000 {
		t.Errorf("StepIntervalMs clamped to %d, want 1000", cfg.Summary.StepIntervalMs)
	}
}

func TestValidate_Clean(t *testing.T) {
	resetViper(t)
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Validate() on defaults returned errors: %v", ValidationErrors(errs))
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		field string
	}{
		{"empty base url", "server.base_url", "", "server.base_url"},
		{"relative base url", "server.base_url", "not-a-url", "server.base_url"},
		{"bad log level", "logging.level", "verbose", "logging.level"},
		{"bad theme", "tui.theme", "neon", "tui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			SetDefaults()
			viper.Set(tt.key, tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			errs := cfg.Validate()
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want error on field %s", errs, tt.field)
			}
		})
	}
}

func TestValidationErrors_Format(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: 2, Message: "worse"},
	}
	got := errs.Error()
	if got == "" {
		t.Fatal("expected non-empty message")
	}
	single := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}}
	if single.Error() != "a: bad (got: 1)" {
		t.Errorf("single error format = %q", single.Error())
	}
	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should format as empty string")
	}
}
