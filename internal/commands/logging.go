package commands

import (
	"strings"

	"github.com/loctree/loctree/internal/logging"
	"github.com/loctree/loctree/pkg/interfaces"
)

const commandModuleRoot = "loctree.commands"

// CommandLogger returns a module-scoped logger for command handlers with the
// structured fields all command executions share.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
