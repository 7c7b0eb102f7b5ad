package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete rostra configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Debate  DebateConfig  `mapstructure:"debate"`
	Polling PollingConfig `mapstructure:"polling"`
	Typing  TypingConfig  `mapstructure:"typing"`
	Summary SummaryConfig `mapstructure:"summary"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls how the backend API is reached
type ServerConfig struct {
	// BaseURL is the root URL of the debate backend API
	BaseURL string `mapstructure:"base_url"`
	// Token is the bearer token identifying the current user
	Token string `mapstructure:"token"`
	// RequestTimeoutSeconds bounds every individual API request
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// DebateConfig controls debate session defaults
type DebateConfig struct {
	// DefaultMaxRounds is the round limit for newly created debates (default: 6)
	DefaultMaxRounds int `mapstructure:"default_max_rounds"`
	// ExtendRoundsBy is how many rounds an extension adds (default: 2)
	ExtendRoundsBy int `mapstructure:"extend_rounds_by"`
}

// PollingConfig tunes the assistant-reply poller
type PollingConfig struct {
	// MaxAttempts is the total poll budget before giving up (default: 30)
	MaxAttempts int `mapstructure:"max_attempts"`
	// InitialIntervalMs is the poll interval for the first FixedAttempts polls (default: 1000)
	InitialIntervalMs int `mapstructure:"initial_interval_ms"`
	// FixedAttempts is how many polls run at the initial interval before backoff (default: 5)
	FixedAttempts int `mapstructure:"fixed_attempts"`
	// BackoffFactor is the multiplicative backoff applied after FixedAttempts (default: 1.2)
	BackoffFactor float64 `mapstructure:"backoff_factor"`
	// MaxIntervalMs caps the backed-off interval (default: 3000)
	MaxIntervalMs int `mapstructure:"max_interval_ms"`
}

// TypingConfig tunes the typing indicator
type TypingConfig struct {
	// ShowDelayMs delays showing the indicator after a send so near-instant
	// replies never flash it (default: 800)
	ShowDelayMs int `mapstructure:"show_delay_ms"`
	// HideDebounceMs delays removal so an immediately following real message
	// does not cause visible flicker (default: 150)
	HideDebounceMs int `mapstructure:"hide_debounce_ms"`
}

// SummaryConfig tunes the cosmetic summary-generation animation
type SummaryConfig struct {
	// StepIntervalMs is the cadence of the four animation steps (default: 1000)
	StepIntervalMs int `mapstructure:"step_interval_ms"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// AltScreen runs the TUI in the terminal's alternate screen (default: true)
	AltScreen bool `mapstructure:"alt_screen"`
	// Theme is the color theme for the TUI (default: "default")
	Theme string `mapstructure:"theme"`
	// MaxTranscriptLines limits how many transcript lines the viewport keeps
	MaxTranscriptLines int `mapstructure:"max_transcript_lines"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR (default: "INFO")
	Level string `mapstructure:"level"`
	// Dir is where the log file is written; empty means the state dir
	Dir string `mapstructure:"dir"`
}

// SetDefaults registers default values for all configuration keys.
// Called before reading any config file so defaults are available even
// without one.
func SetDefaults() {
	viper.SetDefault("server.base_url", "http://localhost:8080/api")
	viper.SetDefault("server.token", "")
	viper.SetDefault("server.request_timeout_seconds", 15)

	viper.SetDefault("debate.default_max_rounds", 6)
	viper.SetDefault("debate.extend_rounds_by", 2)

	viper.SetDefault("polling.max_attempts", 30)
	viper.SetDefault("polling.initial_interval_ms", 1000)
	viper.SetDefault("polling.fixed_attempts", 5)
	viper.SetDefault("polling.backoff_factor", 1.2)
	viper.SetDefault("polling.max_interval_ms", 3000)

	viper.SetDefault("typing.show_delay_ms", 800)
	viper.SetDefault("typing.hide_debounce_ms", 150)

	viper.SetDefault("summary.step_interval_ms", 1000)

	viper.SetDefault("tui.alt_screen", true)
	viper.SetDefault("tui.theme", "default")
	viper.SetDefault("tui.max_transcript_lines", 2000)

	viper.SetDefault("logging.level", "INFO")
	viper.SetDefault("logging.dir", "")
}

// Load unmarshals the current viper state into a Config and validates it.
// Invalid values are clamped to sane ranges rather than rejected, so a
// hand-edited config file can never brick the client.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.clamp()
	return &cfg, nil
}

// ConfigDir returns the directory where the config file lives.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "rostra")
}

// StateDir returns the directory for logs and cached state.
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", "rostra")
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// InitialInterval returns the fixed poll interval as a duration.
func (c *PollingConfig) InitialInterval() time.Duration {
	return time.Duration(c.InitialIntervalMs) * time.Millisecond
}

// MaxInterval returns the backoff cap as a duration.
func (c *PollingConfig) MaxInterval() time.Duration {
	return time.Duration(c.MaxIntervalMs) * time.Millisecond
}

// ShowDelay returns the indicator show delay as a duration.
func (c *TypingConfig) ShowDelay() time.Duration {
	return time.Duration(c.ShowDelayMs) * time.Millisecond
}

// HideDebounce returns the indicator hide debounce as a duration.
func (c *TypingConfig) HideDebounce() time.Duration {
	return time.Duration(c.HideDebounceMs) * time.Millisecond
}

// StepInterval returns the summary animation cadence as a duration.
func (c *SummaryConfig) StepInterval() time.Duration {
	return time.Duration(c.StepIntervalMs) * time.Millisecond
}
