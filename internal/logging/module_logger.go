package logging

import (
	"context"

	"github.com/loctree/loctree/pkg/interfaces"
)

const (
	rootModule      = "loctree"
	documentModule  = "loctree.document"
	treeModule      = "loctree.tree"
	protocolModule  = "loctree.protocol"
	statusModule    = "loctree.status"
	generatorModule = "loctree.generator"
	langsyncModule  = "loctree.langsync"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// DocumentLogger returns the logger namespace reserved for document contexts.
func DocumentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, documentModule)
}

// TreeLogger returns the logger namespace reserved for the shared tree context.
func TreeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, treeModule)
}

// ProtocolLogger returns the logger namespace reserved for the surface protocol.
func ProtocolLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, protocolModule)
}

// StatusLogger returns the logger namespace reserved for the status machine.
func StatusLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, statusModule)
}

// GeneratorLogger returns the logger namespace reserved for code generation.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// LangsyncLogger returns the logger namespace reserved for language healing.
func LangsyncLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, langsyncModule)
}

// WithDocument enriches the provided logger with the document URI. Empty
// values are ignored.
func WithDocument(logger interfaces.Logger, uri string) interfaces.Logger {
	if uri == "" {
		return logger
	}
	return WithFields(logger, map[string]any{
		"document": uri,
	})
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
