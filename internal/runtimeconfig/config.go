package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDefaultLanguageInvalid indicates the configured default language is not a usable code.
var ErrDefaultLanguageInvalid = errors.New("loctree config: default language is invalid")

// ErrGenerationMinDurationInvalid rejects negative generation floor durations.
var ErrGenerationMinDurationInvalid = errors.New("loctree config: generation minimum duration must be zero or positive")

// ErrStatusTimeoutInvalid rejects negative status auto-idle timeouts.
var ErrStatusTimeoutInvalid = errors.New("loctree config: status timeout must be zero or positive")

// ErrCoalesceWindowInvalid rejects negative refresh coalesce windows.
var ErrCoalesceWindowInvalid = errors.New("loctree config: refresh coalesce window must be zero or positive")

var ErrLoggingProviderRequired = errors.New("loctree config: logging provider is required when logging is enabled")
var ErrLoggingProviderUnknown = errors.New("loctree config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("loctree config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("loctree config: logging format is invalid")

// Config aggregates runtime settings for the engine. Fields intentionally use
// simple types so host applications can extend them later.
type Config struct {
	DefaultLanguage string
	Refresh         RefreshConfig
	Generation      GenerationConfig
	Logging         LoggingConfig
}

// RefreshConfig tunes how document change notifications are absorbed.
type RefreshConfig struct {
	// CoalesceWindow bounds how long redundant change events for the same
	// document may be merged before a refresh runs.
	CoalesceWindow time.Duration
}

// GenerationConfig tunes the code-generation pipeline.
type GenerationConfig struct {
	// MinDuration pads fast generator runs so the progress indicator is
	// perceivable.
	MinDuration time.Duration
	// StatusTimeout is how long a success status stays visible before the
	// machine returns to idle.
	StatusTimeout time.Duration
	// ErrorTimeout is how long an error status stays visible.
	ErrorTimeout time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Enabled   bool
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for an embedded engine.
func DefaultConfig() Config {
	return Config{
		DefaultLanguage: "en",
		Refresh: RefreshConfig{
			CoalesceWindow: 150 * time.Millisecond,
		},
		Generation: GenerationConfig{
			MinDuration:   500 * time.Millisecond,
			StatusTimeout: 5 * time.Second,
			ErrorTimeout:  15 * time.Second,
		},
		Logging: LoggingConfig{
			Enabled:  true,
			Provider: "gologger",
			Level:    "info",
		},
	}
}

// Validate checks cross-field consistency before the engine boots.
func (cfg Config) Validate() error {
	if !isValidLanguageCode(cfg.DefaultLanguage) {
		return fmt.Errorf("%w: %q", ErrDefaultLanguageInvalid, cfg.DefaultLanguage)
	}
	if cfg.Refresh.CoalesceWindow < 0 {
		return ErrCoalesceWindowInvalid
	}
	if cfg.Generation.MinDuration < 0 {
		return ErrGenerationMinDurationInvalid
	}
	if cfg.Generation.StatusTimeout < 0 || cfg.Generation.ErrorTimeout < 0 {
		return ErrStatusTimeoutInvalid
	}
	if cfg.Logging.Enabled {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// isValidLanguageCode accepts BCP-47 style codes such as "en" or "pt-BR".
func isValidLanguageCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	for _, part := range strings.Split(code, "-") {
		if part == "" {
			return false
		}
		for _, r := range part {
			if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
				return false
			}
		}
	}
	return true
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "noop", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
