// Package protocol defines the typed, versioned message channel between the
// engine and the editing surface. Every message is tagged with a command
// discriminator; requests that expect a reply carry a correlation id so the
// surface can match asynchronous responses to pending UI state.
package protocol

import (
	"encoding/json"

	"github.com/loctree/loctree/pkg/interfaces"
)

// Version is the protocol revision carried by every envelope.
const Version = 1

// Command discriminates message payloads.
type Command string

// Engine → surface commands.
const (
	CommandInit                  Command = "init"
	CommandLoadPage              Command = "loadPage"
	CommandInvalidData           Command = "invalidData"
	CommandUpdatePaths           Command = "updatePaths"
	CommandShowProperties        Command = "showProperties"
	CommandSavePropertiesResult  Command = "savePropertiesResult"
	CommandConfirmQuestionResult Command = "confirmQuestionResult"
	CommandRequestPageReload     Command = "requestPageReload"
	CommandFocus                 Command = "focus"
	CommandShowInputBoxResult    Command = "showInputBoxResult"
	CommandRequestRename         Command = "requestRename"
	CommandBlockEditor           Command = "blockEditor"
)

// Surface → engine commands.
const (
	CommandUpdate          Command = "update"
	CommandSelect          Command = "select"
	CommandSaveProperties  Command = "saveProperties"
	CommandConfirmQuestion Command = "confirmQuestion"
	CommandShowInputBox    Command = "showInputBox"
	CommandFocusTree       Command = "focusTree"
)

// Envelope frames one message on the channel.
type Envelope struct {
	Command Command         `json:"command"`
	Version int             `json:"version"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Parameter mirrors one ordered resource placeholder on the wire.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// PageElement is the surface's view of one editable element.
type PageElement struct {
	Kind        string            `json:"kind"`
	Path        string            `json:"path"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	State       string            `json:"state,omitempty"`
	Parameters  []Parameter       `json:"parameters,omitempty"`
	Values      map[string]string `json:"values,omitempty"`
}

// ElementPatch is a partial field-level edit of the currently loaded
// element. Nil pointers and nil collections mean "unchanged".
type ElementPatch struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	State       *string           `json:"state,omitempty"`
	Parameters  []Parameter       `json:"parameters,omitempty"`
	Values      map[string]string `json:"values,omitempty"`
}

// ModelSettings carries the model-level flags the surface needs for layout
// decisions.
type ModelSettings struct {
	ResourcesUnderRoot bool `json:"resourcesUnderRoot"`
	CategoriesEnabled  bool `json:"categoriesEnabled"`
}

// InitMessage advertises the generator template catalogue on startup.
type InitMessage struct {
	Catalog interfaces.TemplateCatalog `json:"catalog"`
}

// LoadPageMessage pushes one element into the editing surface.
type LoadPageMessage struct {
	Element         PageElement   `json:"element"`
	Languages       []string      `json:"languages"`
	PrimaryLanguage string        `json:"primaryLanguage"`
	Settings        ModelSettings `json:"settings"`
	AutoFocusField  string        `json:"autoFocusField,omitempty"`
}

// InvalidDataMessage adds or removes one field-scoped validation error so
// the surface can render inline indicators without a full element resend.
type InvalidDataMessage struct {
	Path    string `json:"path"`
	Field   string `json:"field"`
	Message string `json:"message,omitempty"`
	Remove  bool   `json:"remove,omitempty"`
}

// UpdatePathsMessage informs the surface that the loaded element moved.
type UpdatePathsMessage struct {
	Kind    string `json:"kind"`
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

// ShowPropertiesMessage opens the model properties page.
type ShowPropertiesMessage struct {
	Catalog  interfaces.TemplateCatalog `json:"catalog"`
	Settings map[string]string          `json:"settings,omitempty"`
}

// PropertyError locates one rejected model property.
type PropertyError struct {
	Group   string `json:"group"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// SavePropertiesResultMessage answers a saveProperties request.
type SavePropertiesResultMessage struct {
	OK    bool           `json:"ok"`
	Error *PropertyError `json:"error,omitempty"`
}

// ConfirmQuestionResultMessage answers a confirmQuestion request.
type ConfirmQuestionResultMessage struct {
	Confirmed bool            `json:"confirmed"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// RequestPageReloadMessage asks the surface to re-request its element.
type RequestPageReloadMessage struct{}

// FocusMessage moves keyboard focus to the editing surface.
type FocusMessage struct{}

// ShowInputBoxResultMessage answers a showInputBox request.
type ShowInputBoxResultMessage struct {
	Value string `json:"value,omitempty"`
	OK    bool   `json:"ok"`
}

// RequestRenameMessage asks the surface to enter rename mode for a path.
type RequestRenameMessage struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// BlockEditorMessage toggles surface interactivity during long operations.
type BlockEditorMessage struct {
	Blocked bool `json:"blocked"`
}

// UpdateMessage carries a full patch for the currently edited element.
type UpdateMessage struct {
	Kind  string       `json:"kind"`
	Path  string       `json:"path"`
	Patch ElementPatch `json:"patch"`
}

// SelectMessage navigates the tree from the surface.
type SelectMessage struct {
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	Reload bool   `json:"reload,omitempty"`
}

// SavePropertiesMessage submits edited model properties.
type SavePropertiesMessage struct {
	Settings map[string]string `json:"settings"`
}

// ConfirmQuestionMessage asks the engine to run a host confirmation dialog.
type ConfirmQuestionMessage struct {
	Question string          `json:"question"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ShowInputBoxMessage asks the engine to run a host input prompt. Input is
// validated with the same name grammar structural commands use.
type ShowInputBoxMessage struct {
	Prompt string `json:"prompt"`
	Value  string `json:"value,omitempty"`
}

// FocusTreeMessage moves keyboard focus to the navigational tree.
type FocusTreeMessage struct{}
