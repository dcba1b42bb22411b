package runtimeconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML document shape. Durations are strings in
// time.ParseDuration syntax; pointers distinguish absent keys from zero
// values so the loader can overlay defaults.
type fileConfig struct {
	DefaultLanguage *string `yaml:"default_language"`
	Refresh         struct {
		CoalesceWindow *string `yaml:"coalesce_window"`
	} `yaml:"refresh"`
	Generation struct {
		MinDuration   *string `yaml:"min_duration"`
		StatusTimeout *string `yaml:"status_timeout"`
		ErrorTimeout  *string `yaml:"error_timeout"`
	} `yaml:"generation"`
	Logging struct {
		Enabled   *bool    `yaml:"enabled"`
		Provider  *string  `yaml:"provider"`
		Level     *string  `yaml:"level"`
		Format    *string  `yaml:"format"`
		AddSource *bool    `yaml:"add_source"`
		Focus     []string `yaml:"focus"`
	} `yaml:"logging"`
}

// Load reads a YAML configuration file and overlays it on the defaults.
// Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("loctree config: read %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("loctree config: parse %s: %w", path, err)
	}

	if file.DefaultLanguage != nil {
		cfg.DefaultLanguage = *file.DefaultLanguage
	}
	if err := overlayDuration(&cfg.Refresh.CoalesceWindow, file.Refresh.CoalesceWindow, "refresh.coalesce_window"); err != nil {
		return cfg, err
	}
	if err := overlayDuration(&cfg.Generation.MinDuration, file.Generation.MinDuration, "generation.min_duration"); err != nil {
		return cfg, err
	}
	if err := overlayDuration(&cfg.Generation.StatusTimeout, file.Generation.StatusTimeout, "generation.status_timeout"); err != nil {
		return cfg, err
	}
	if err := overlayDuration(&cfg.Generation.ErrorTimeout, file.Generation.ErrorTimeout, "generation.error_timeout"); err != nil {
		return cfg, err
	}
	if file.Logging.Enabled != nil {
		cfg.Logging.Enabled = *file.Logging.Enabled
	}
	if file.Logging.Provider != nil {
		cfg.Logging.Provider = *file.Logging.Provider
	}
	if file.Logging.Level != nil {
		cfg.Logging.Level = *file.Logging.Level
	}
	if file.Logging.Format != nil {
		cfg.Logging.Format = *file.Logging.Format
	}
	if file.Logging.AddSource != nil {
		cfg.Logging.AddSource = *file.Logging.AddSource
	}
	if len(file.Logging.Focus) > 0 {
		cfg.Logging.Focus = file.Logging.Focus
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func overlayDuration(dst *time.Duration, raw *string, key string) error {
	if raw == nil {
		return nil
	}
	parsed, err := time.ParseDuration(*raw)
	if err != nil {
		return fmt.Errorf("loctree config: %s: %w", key, err)
	}
	*dst = parsed
	return nil
}
