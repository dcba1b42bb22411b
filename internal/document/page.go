package document

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/loctree/loctree/internal/model"
	"github.com/loctree/loctree/internal/protocol"
	"github.com/loctree/loctree/pkg/interfaces"
)

// LoadElement pushes one resolved element to the editing surface. Virtual
// elements load with identity fields only; they carry no editable data.
func (c *Context) LoadElement(ctx context.Context, ref model.Ref, autoFocusField string) error {
	el, ok := c.Resolve(ref)
	if !ok {
		return fmt.Errorf("document: load %s %q: %w", ref.Kind, ref.Path, model.ErrElementNotFound)
	}

	c.mu.Lock()
	root := c.root
	c.mu.Unlock()
	if root == nil {
		return ErrNoTree
	}

	msg := protocol.LoadPageMessage{
		Element:         pageElement(el),
		Languages:       append([]string(nil), root.Settings.Languages...),
		PrimaryLanguage: root.Settings.PrimaryLanguage,
		Settings: protocol.ModelSettings{
			ResourcesUnderRoot: root.Settings.ResourcesUnderRoot,
			CategoriesEnabled:  root.Settings.CategoriesEnabled,
		},
		AutoFocusField: autoFocusField,
	}
	return c.dispatcher.Send(ctx, protocol.CommandLoadPage, msg)
}

func pageElement(el model.Element) protocol.PageElement {
	page := protocol.PageElement{
		Kind: string(el.ElementKind()),
		Path: el.ElementPath().String(),
		Name: el.ElementName(),
	}
	switch v := el.(type) {
	case *model.Root:
		page.Description = v.Description
	case *model.Category:
		page.Description = v.Description
	case *model.Resource:
		page.Description = v.Description
		page.State = v.State
		for _, param := range v.Parameters {
			page.Parameters = append(page.Parameters, protocol.Parameter{Name: param.Name, Type: param.Type})
		}
		if len(v.Values) > 0 {
			page.Values = make(map[string]string, len(v.Values))
			for lang, value := range v.Values {
				page.Values[lang] = value
			}
		}
	}
	return page
}

// UpdateElement applies a partial field-level edit from the editing surface
// to one resolved element. The name field is validated first; a bad name
// records a page error, flags the field on the surface, and aborts before
// any mutation. Remaining fields are diffed against canonical values so
// resubmitting unchanged data never commits.
func (c *Context) UpdateElement(ctx context.Context, msg protocol.UpdateMessage) error {
	if c.Closed() {
		return ErrClosed
	}
	kind := model.Kind(msg.Kind)
	if kind.Virtual() {
		return fmt.Errorf("document: update %s %q: %w", kind, msg.Path, model.ErrVirtualElementReadOnly)
	}
	el, ok := c.Resolve(model.Ref{Kind: kind, Path: msg.Path})
	if !ok {
		return fmt.Errorf("document: update %s %q: %w", kind, msg.Path, model.ErrElementNotFound)
	}

	c.mu.Lock()
	root := c.root
	c.mu.Unlock()

	oldPath := el.ElementPath()
	changed := false

	if msg.Patch.Name != nil {
		newName := *msg.Patch.Name
		if newName != el.ElementName() {
			if problem := model.ValidNameMessage(newName, root.SiblingNames(el)); problem != "" {
				c.setPageError(ctx, msg.Path, "name", problem)
				return nil
			}
			if err := root.Rename(el, newName); err != nil {
				c.logger.Warn("document.update_element.rename_failed", "error", err)
				return err
			}
			changed = true
		}
		c.clearPageError(ctx, msg.Path, "name")
	}

	switch v := el.(type) {
	case *model.Root:
		changed = applyDescription(&v.Description, msg.Patch.Description) || changed
	case *model.Category:
		changed = applyDescription(&v.Description, msg.Patch.Description) || changed
	case *model.Resource:
		changed = applyDescription(&v.Description, msg.Patch.Description) || changed
		if msg.Patch.State != nil && *msg.Patch.State != v.State {
			v.State = *msg.Patch.State
			changed = true
		}
		if msg.Patch.Parameters != nil && !parametersEqual(v.Parameters, msg.Patch.Parameters) {
			v.Parameters = toModelParameters(msg.Patch.Parameters)
			changed = true
		}
		if msg.Patch.Values != nil && !valuesEqual(v.Values, msg.Patch.Values) {
			v.Values = canonicalValues(msg.Patch.Values)
			changed = true
		}
	}

	if !changed {
		c.logger.Debug("document.update_element.noop", "path", msg.Path)
		return nil
	}
	c.CommitChanges(ctx, "updateElement")

	if newPath := el.ElementPath(); !newPath.Equal(oldPath) {
		// Rename moved the element; surface and tree both need the new
		// path, a stale reference would dangle after the next rebuild.
		ref := model.RefOf(el)
		c.nav.SelectRef(ctx, ref)
		err := c.dispatcher.Send(ctx, protocol.CommandUpdatePaths, protocol.UpdatePathsMessage{
			Kind:    string(el.ElementKind()),
			OldPath: oldPath.String(),
			NewPath: newPath.String(),
		})
		if err != nil && !errors.Is(err, protocol.ErrNoSurface) {
			c.logger.Warn("document.update_element.update_paths_failed", "error", err)
		}
	}
	return nil
}

func applyDescription(dst *string, patch *string) bool {
	if patch == nil || *patch == *dst {
		return false
	}
	*dst = *patch
	return true
}

func toModelParameters(params []protocol.Parameter) []model.Parameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]model.Parameter, len(params))
	for i, p := range params {
		out[i] = model.Parameter{Name: p.Name, Type: p.Type}
	}
	return out
}

// parametersEqual compares ordered parameter lists.
func parametersEqual(current []model.Parameter, patch []protocol.Parameter) bool {
	if len(current) != len(patch) {
		return false
	}
	for i := range current {
		if current[i].Name != patch[i].Name || current[i].Type != patch[i].Type {
			return false
		}
	}
	return true
}

// valuesEqual compares per-language values after canonicalization: an
// absent key and an empty string are the same value, so a surface echoing
// blanks for undeclared languages never reads as a change.
func valuesEqual(current, patch map[string]string) bool {
	for lang, value := range current {
		if value != "" && patch[lang] != value {
			return false
		}
	}
	for lang, value := range patch {
		if value != "" && current[lang] != value {
			return false
		}
	}
	return true
}

func canonicalValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for lang, value := range values {
		if value == "" {
			continue
		}
		out[lang] = value
	}
	return out
}

// ValidateDocument re-checks the structural invariants against current tree
// state. With showError set, violations surface as one host notification.
func (c *Context) ValidateDocument(showError bool) bool {
	c.mu.Lock()
	root := c.root
	c.mu.Unlock()
	if root == nil {
		return false
	}
	violations := root.Violations()
	if len(violations) == 0 {
		return true
	}
	if showError {
		messages := make([]string, len(violations))
		for i, violation := range violations {
			messages[i] = violation.Message
		}
		c.notify(interfaces.NotifyError, strings.Join(messages, " "))
	}
	return false
}

// setPageError records one field-scoped error and pushes the delta to the
// surface. Re-recording the same message is a no-op.
func (c *Context) setPageError(ctx context.Context, path, field, message string) {
	key := pageErrorKey{path: path, field: field}
	c.mu.Lock()
	if c.pageErrors[key] == message {
		c.mu.Unlock()
		return
	}
	c.pageErrors[key] = message
	c.mu.Unlock()

	err := c.dispatcher.Send(ctx, protocol.CommandInvalidData, protocol.InvalidDataMessage{
		Path:    path,
		Field:   field,
		Message: message,
	})
	if err != nil && !errors.Is(err, protocol.ErrNoSurface) {
		c.logger.Warn("document.page_error.send_failed", "error", err)
	}
}

// clearPageError removes one field-scoped error, pushing the removal only
// when the error was actually set.
func (c *Context) clearPageError(ctx context.Context, path, field string) {
	key := pageErrorKey{path: path, field: field}
	c.mu.Lock()
	if _, ok := c.pageErrors[key]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pageErrors, key)
	c.mu.Unlock()

	err := c.dispatcher.Send(ctx, protocol.CommandInvalidData, protocol.InvalidDataMessage{
		Path:   path,
		Field:  field,
		Remove: true,
	})
	if err != nil && !errors.Is(err, protocol.ErrNoSurface) {
		c.logger.Warn("document.page_error.send_failed", "error", err)
	}
}

// PageErrors reports the number of live field-scoped errors.
func (c *Context) PageErrors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pageErrors)
}

// SaveModelProperties validates edited generator settings against the
// template metadata and replaces the generator configuration on success.
// Validation failures return a located error instead of mutating.
func (c *Context) SaveModelProperties(ctx context.Context, settings map[string]string) (*protocol.PropertyError, error) {
	if c.Closed() {
		return nil, ErrClosed
	}
	c.mu.Lock()
	root := c.root
	c.mu.Unlock()
	if root == nil {
		return nil, ErrNoTree
	}

	if propErr := checkProperties(c.gen.Templates(), settings); propErr != nil {
		c.logger.Debug("document.properties.rejected",
			"group", propErr.Group, "name", propErr.Name)
		return propErr, nil
	}

	root.Settings.Generator = settings
	if !c.CommitChanges(ctx, "saveModelProperties") {
		return nil, ErrNoTree
	}
	return nil, nil
}

func checkProperties(catalog interfaces.TemplateCatalog, settings map[string]string) *protocol.PropertyError {
	for _, group := range catalog.Groups {
		for _, setting := range group.Settings {
			value, present := settings[setting.Name]
			if !present || value == "" {
				if setting.Required {
					return &protocol.PropertyError{
						Group:   group.Name,
						Name:    setting.Name,
						Message: fmt.Sprintf("%s is required", settingLabel(setting)),
					}
				}
				continue
			}
			if setting.Pattern != "" {
				re, err := regexp.Compile(setting.Pattern)
				if err == nil && !re.MatchString(value) {
					return &protocol.PropertyError{
						Group:   group.Name,
						Name:    setting.Name,
						Message: fmt.Sprintf("%s does not match the expected format", settingLabel(setting)),
					}
				}
			}
			if len(setting.Enum) > 0 && !contains(setting.Enum, value) {
				return &protocol.PropertyError{
					Group:   group.Name,
					Name:    setting.Name,
					Message: fmt.Sprintf("%s must be one of: %s", settingLabel(setting), strings.Join(setting.Enum, ", ")),
				}
			}
		}
	}
	return nil
}

func settingLabel(setting interfaces.TemplateSetting) string {
	if setting.Label != "" {
		return setting.Label
	}
	return setting.Name
}

func contains(values []string, needle string) bool {
	for _, value := range values {
		if value == needle {
			return true
		}
	}
	return false
}
