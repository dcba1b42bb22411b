package loctree

import "github.com/loctree/loctree/internal/runtimeconfig"

// Config aliases the runtime configuration so embedders never import
// internal packages directly.
type (
	Config           = runtimeconfig.Config
	RefreshConfig    = runtimeconfig.RefreshConfig
	GenerationConfig = runtimeconfig.GenerationConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file and overlays it on the
// defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
