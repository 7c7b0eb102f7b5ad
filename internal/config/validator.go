package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "polling.max_attempts")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"DEBUG", "INFO", "WARN", "ERROR"}
}

// ValidThemes returns the list of valid TUI themes
func ValidThemes() []string {
	return []string{"default", "monochrome"}
}

// ValidPeriods returns the list of valid trending periods
func ValidPeriods() []string {
	return []string{"day", "week", "month", "all"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found. Use this to report problems to the user; Load itself only
// clamps numeric ranges.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Server.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "server.base_url",
			Value:   c.Server.BaseURL,
			Message: "must not be empty",
		})
	} else if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "server.base_url",
			Value:   c.Server.BaseURL,
			Message: "must be an absolute URL",
		})
	}

	if c.Polling.MaxAttempts <= 0 {
		errors = append(errors, ValidationError{
			Field:   "polling.max_attempts",
			Value:   c.Polling.MaxAttempts,
			Message: "must be positive",
		})
	}
	if c.Polling.BackoffFactor < 1.0 {
		errors = append(errors, ValidationError{
			Field:   "polling.backoff_factor",
			Value:   c.Polling.BackoffFactor,
			Message: "must be at least 1.0",
		})
	}
	if c.Polling.MaxIntervalMs < c.Polling.InitialIntervalMs {
		errors = append(errors, ValidationError{
			Field:   "polling.max_interval_ms",
			Value:   c.Polling.MaxIntervalMs,
			Message: "must not be smaller than polling.initial_interval_ms",
		})
	}

	if c.Debate.DefaultMaxRounds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "debate.default_max_rounds",
			Value:   c.Debate.DefaultMaxRounds,
			Message: "must be positive",
		})
	}

	level := strings.ToUpper(c.Logging.Level)
	if !slices.Contains(ValidLogLevels(), level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if !slices.Contains(ValidThemes(), c.TUI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidThemes(), ", ")),
		})
	}

	return errors
}

// clamp forces numeric settings into workable ranges. A bad value in a
// hand-edited config degrades to the default rather than failing startup.
func (c *Config) clamp() {
	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = 15
	}

	if c.Debate.DefaultMaxRounds <= 0 {
		c.Debate.DefaultMaxRounds = 6
	}
	if c.Debate.ExtendRoundsBy <= 0 {
		c.Debate.ExtendRoundsBy = 2
	}

	if c.Polling.MaxAttempts <= 0 {
		c.Polling.MaxAttempts = 30
	}
	if c.Polling.InitialIntervalMs <= 0 {
		c.Polling.InitialIntervalMs = 1000
	}
	if c.Polling.FixedAttempts <= 0 {
		c.Polling.FixedAttempts = 5
	}
	if c.Polling.BackoffFactor < 1.0 {
		c.Polling.BackoffFactor = 1.2
	}
	if c.Polling.MaxIntervalMs < c.Polling.InitialIntervalMs {
		c.Polling.MaxIntervalMs = 3000
	}

	if c.Typing.ShowDelayMs < 0 {
		c.Typing.ShowDelayMs = 800
	}
	if c.Typing.HideDebounceMs < 0 {
		c.Typing.HideDebounceMs = 150
	}

	if c.Summary.StepIntervalMs <= 0 {
		c.Summary.StepIntervalMs = 1000
	}

	if c.TUI.MaxTranscriptLines <= 0 {
		c.TUI.MaxTranscriptLines = 2000
	}
}
