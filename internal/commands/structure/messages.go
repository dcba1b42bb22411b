// Package structure exposes the engine's structural operations as validated
// command messages so hosts can bind them to menus and keybindings.
package structure

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/loctree/loctree/internal/model"
)

// ElementRef addresses one tree element inside a command message.
type ElementRef struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// Ref converts the wire form into the model's rebuild-safe ref.
func (r ElementRef) Ref() model.Ref {
	return model.Ref{Kind: model.Kind(r.Kind), Path: r.Path}
}

func (r ElementRef) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, validation.In(
			string(model.KindModel),
			string(model.KindCategory),
			string(model.KindResource),
			string(model.KindLanguages),
			string(model.KindLanguage),
		)),
	)
}

// AddCategoryMessage creates a category under the root, prompting for the
// name.
type AddCategoryMessage struct{}

func (AddCategoryMessage) Type() string { return "loctree.structure.add_category" }

func (AddCategoryMessage) Validate() error { return nil }

// AddResourceMessage creates a resource under the given parent, prompting
// for the name.
type AddResourceMessage struct {
	Parent ElementRef `json:"parent"`
}

func (AddResourceMessage) Type() string { return "loctree.structure.add_resource" }

func (m AddResourceMessage) Validate() error { return m.Parent.validate() }

// RenameElementMessage renames one element, prompting for the new name.
type RenameElementMessage struct {
	Target ElementRef `json:"target"`
}

func (RenameElementMessage) Type() string { return "loctree.structure.rename_element" }

func (m RenameElementMessage) Validate() error { return m.Target.validate() }

// DeleteElementsMessage deletes the targeted elements, or the current tree
// selection when no targets are given.
type DeleteElementsMessage struct {
	Targets []ElementRef `json:"targets,omitempty"`
}

func (DeleteElementsMessage) Type() string { return "loctree.structure.delete_elements" }

func (m DeleteElementsMessage) Validate() error {
	for _, target := range m.Targets {
		if err := target.validate(); err != nil {
			return err
		}
	}
	return nil
}

// DuplicateElementMessage copies one element next to the original.
type DuplicateElementMessage struct {
	Target ElementRef `json:"target"`
}

func (DuplicateElementMessage) Type() string { return "loctree.structure.duplicate_element" }

func (m DuplicateElementMessage) Validate() error { return m.Target.validate() }

// AddLanguageMessage declares a new language, prompting for the code.
type AddLanguageMessage struct{}

func (AddLanguageMessage) Type() string { return "loctree.structure.add_language" }

func (AddLanguageMessage) Validate() error { return nil }

// DeleteLanguageMessage removes one declared language and its values.
type DeleteLanguageMessage struct {
	Code string `json:"code"`
}

func (DeleteLanguageMessage) Type() string { return "loctree.structure.delete_language" }

func (m DeleteLanguageMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Code, validation.Required),
	)
}

// MarkPrimaryLanguageMessage makes one declared language primary.
type MarkPrimaryLanguageMessage struct {
	Code string `json:"code"`
}

func (MarkPrimaryLanguageMessage) Type() string { return "loctree.structure.mark_primary_language" }

func (m MarkPrimaryLanguageMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Code, validation.Required),
	)
}

// ToggleLanguagesMessage flips the visibility of the virtual languages
// branch.
type ToggleLanguagesMessage struct{}

func (ToggleLanguagesMessage) Type() string { return "loctree.structure.toggle_languages" }

func (ToggleLanguagesMessage) Validate() error { return nil }

// ShowPropertiesMessage opens the model properties page on the surface.
type ShowPropertiesMessage struct{}

func (ShowPropertiesMessage) Type() string { return "loctree.structure.show_properties" }

func (ShowPropertiesMessage) Validate() error { return nil }

// RunGeneratorMessage starts one background code-generation run.
type RunGeneratorMessage struct{}

func (RunGeneratorMessage) Type() string { return "loctree.structure.run_generator" }

func (RunGeneratorMessage) Validate() error { return nil }

// FindMessage runs the tree query language.
type FindMessage struct {
	Query string `json:"query"`
}

func (FindMessage) Type() string { return "loctree.structure.find" }

func (FindMessage) Validate() error { return nil }
