package interfaces

import (
	"context"
	"encoding/json"
)

// TemplateSetting describes one configurable value a generator template
// accepts, including the validation metadata used when model properties are
// saved.
type TemplateSetting struct {
	Name     string   `json:"name"`
	Label    string   `json:"label,omitempty"`
	Required bool     `json:"required,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Default  string   `json:"default,omitempty"`
}

// TemplateGroup bundles the settings of one template family.
type TemplateGroup struct {
	Name     string            `json:"name"`
	Label    string            `json:"label,omitempty"`
	Settings []TemplateSetting `json:"settings,omitempty"`
}

// TemplateCatalog is the metadata catalogue advertised to the editing
// surface on init and used to validate saved model properties.
type TemplateCatalog struct {
	Groups []TemplateGroup `json:"groups"`
}

// GenerateRequest carries everything a generator needs for one run: the raw
// parsed document, the model's template settings, and the language set.
type GenerateRequest struct {
	Model           json.RawMessage
	Settings        map[string]string
	PrimaryLanguage string
	Languages       []string
}

// GeneratedFile is one output produced by a generator run.
type GeneratedFile struct {
	Path    string
	Content []byte
}

// CodeGenerator is the template-based generator collaborator. Generation is
// fire-and-forget from the engine's perspective: once Generate has started
// it cannot be preempted, only ignored.
type CodeGenerator interface {
	Templates() TemplateCatalog
	Generate(ctx context.Context, req GenerateRequest) ([]GeneratedFile, error)
}

// FileWriter persists generated outputs. Hosts typically back this with the
// workspace file system.
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte) error
}
