package runtimeconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.DefaultLanguage != "en" {
		t.Fatalf("expected default language en, got %q", cfg.DefaultLanguage)
	}
	if cfg.Generation.MinDuration != 500*time.Millisecond {
		t.Fatalf("unexpected generation floor: %v", cfg.Generation.MinDuration)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Run("default language", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DefaultLanguage = "not a code!"
		if err := cfg.Validate(); !errors.Is(err, ErrDefaultLanguageInvalid) {
			t.Fatalf("expected ErrDefaultLanguageInvalid, got %v", err)
		}
	})

	t.Run("negative generation floor", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Generation.MinDuration = -time.Second
		if err := cfg.Validate(); !errors.Is(err, ErrGenerationMinDurationInvalid) {
			t.Fatalf("expected ErrGenerationMinDurationInvalid, got %v", err)
		}
	})

	t.Run("unknown logging provider", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Provider = "syslog"
		if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderUnknown) {
			t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
		}
	})

	t.Run("invalid logging format", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Format = "xml"
		if err := cfg.Validate(); !errors.Is(err, ErrLoggingFormatInvalid) {
			t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
		}
	})
}

func TestValidateAcceptsRegionalLanguage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultLanguage = "pt-BR"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("pt-BR should validate: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loctree.yaml")
	content := []byte("default_language: de\ngeneration:\n  min_duration: 250ms\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultLanguage != "de" {
		t.Fatalf("expected de, got %q", cfg.DefaultLanguage)
	}
	if cfg.Generation.MinDuration != 250*time.Millisecond {
		t.Fatalf("expected 250ms floor, got %v", cfg.Generation.MinDuration)
	}
	if cfg.Generation.StatusTimeout != DefaultConfig().Generation.StatusTimeout {
		t.Fatalf("expected default status timeout preserved, got %v", cfg.Generation.StatusTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
