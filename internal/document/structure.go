package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/loctree/loctree/internal/model"
	"github.com/loctree/loctree/internal/protocol"
	"github.com/loctree/loctree/pkg/interfaces"
)

// beginStructural gates one structural command: the document must be open,
// parsed, and not held read-only by a long-running operation.
func (c *Context) beginStructural() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return ErrClosed
	case c.root == nil:
		return ErrNoTree
	case c.readOnly:
		return fmt.Errorf("document: %w", errReadOnly)
	}
	return nil
}

var errReadOnly = errors.New("a long-running operation holds the document read-only")

// AddCategory prompts for a name and creates a category under the root. The
// created element is revealed in the tree.
func (c *Context) AddCategory(ctx context.Context) error {
	if err := c.beginStructural(); err != nil {
		return err
	}
	root := c.Root()
	if !root.Settings.CategoriesEnabled {
		c.notify(interfaces.NotifyWarn, "Categories are disabled for this model.")
		return model.ErrCategoriesDisabled
	}

	siblings := make([]string, 0, len(root.Categories))
	for _, cat := range root.Categories {
		siblings = append(siblings, cat.Name)
	}
	name, ok, err := c.promptName(ctx, "Category name", siblings, suggestedName("New category", siblings), "")
	if err != nil || !ok {
		return err
	}
	if !c.alive() {
		return ErrClosed
	}

	category, err := c.Root().AddCategory(name)
	if err != nil {
		c.notify(interfaces.NotifyError, err.Error())
		return err
	}
	c.CommitChanges(ctx, "addCategory")
	c.nav.Reveal(ctx, model.RefOf(category))
	c.logger.Info("document.structure.category_added", "name", name)
	return nil
}

// AddResource prompts for a name and creates a resource under the given
// parent. A model ref as parent targets the root, which requires the
// resources-under-root setting.
func (c *Context) AddResource(ctx context.Context, parent model.Ref) error {
	if err := c.beginStructural(); err != nil {
		return err
	}
	root := c.Root()

	var category *model.Category
	switch parent.Kind {
	case model.KindCategory:
		found, ok := root.CategoryByName(model.ParsePath(parent.Path).Name())
		if !ok {
			return fmt.Errorf("document: add resource under %q: %w", parent.Path, model.ErrElementNotFound)
		}
		category = found
	case model.KindModel:
		if !root.Settings.ResourcesUnderRoot {
			c.notify(interfaces.NotifyWarn, "Resources directly under the root are disabled for this model.")
			return model.ErrRootResourcesDisabled
		}
	default:
		return fmt.Errorf("document: add resource under %s: %w", parent.Kind, model.ErrElementNotFound)
	}

	source := root.Resources
	if category != nil {
		source = category.Resources
	}
	siblings := make([]string, 0, len(source))
	for _, res := range source {
		siblings = append(siblings, res.Name)
	}

	name, ok, err := c.promptName(ctx, "Resource name", siblings, suggestedName("New resource", siblings), "")
	if err != nil || !ok {
		return err
	}
	if !c.alive() {
		return ErrClosed
	}

	// Re-resolve the parent; the document may have been rebuilt during the
	// prompt and the old pointer would be stale.
	root = c.Root()
	if category != nil {
		found, okCat := root.CategoryByName(category.Name)
		if !okCat {
			return fmt.Errorf("document: add resource: %w", model.ErrElementNotFound)
		}
		category = found
	}

	resource, err := root.AddResource(category, name)
	if err != nil {
		c.notify(interfaces.NotifyError, err.Error())
		return err
	}
	c.CommitChanges(ctx, "addResource")
	c.nav.Reveal(ctx, model.RefOf(resource))
	c.logger.Info("document.structure.resource_added", "path", resource.ElementPath().String())
	return nil
}

// RenameElement prompts for a new name and renames the referenced element,
// re-selecting it under its new path.
func (c *Context) RenameElement(ctx context.Context, ref model.Ref) error {
	if err := c.beginStructural(); err != nil {
		return err
	}
	el, ok := c.Resolve(ref)
	if !ok {
		return fmt.Errorf("document: rename %q: %w", ref.Path, model.ErrElementNotFound)
	}
	if ref.Kind.Virtual() {
		return model.ErrVirtualElementReadOnly
	}

	root := c.Root()
	name, okName, err := c.promptName(ctx, "New name", root.SiblingNames(el), el.ElementName(), el.ElementName())
	if err != nil || !okName {
		return err
	}
	if !c.alive() {
		return ErrClosed
	}

	el, ok = c.Resolve(ref)
	if !ok {
		return fmt.Errorf("document: rename %q: %w", ref.Path, model.ErrElementNotFound)
	}
	oldPath := el.ElementPath().String()
	if err := c.Root().Rename(el, name); err != nil {
		c.notify(interfaces.NotifyError, err.Error())
		return err
	}
	c.CommitChanges(ctx, "renameElement")

	newRef := model.RefOf(el)
	c.nav.Reveal(ctx, newRef)
	if sendErr := c.dispatcher.Send(ctx, protocol.CommandUpdatePaths, protocol.UpdatePathsMessage{
		Kind:    string(newRef.Kind),
		OldPath: oldPath,
		NewPath: newRef.Path,
	}); sendErr != nil && !errors.Is(sendErr, protocol.ErrNoSurface) {
		c.logger.Warn("document.structure.update_paths_failed", "error", sendErr)
	}
	c.logger.Info("document.structure.renamed", "from", oldPath, "to", newRef.Path)
	return nil
}

// DeleteElements removes the referenced elements after one confirmation.
// Multi-element deletes must share a single parent; mixed selections are
// rejected before any mutation.
func (c *Context) DeleteElements(ctx context.Context, refs []model.Ref) error {
	if err := c.beginStructural(); err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}
	if err := sharedParent(refs); err != nil {
		c.notify(interfaces.NotifyWarn, "Select elements with the same parent to delete them together.")
		return err
	}
	for _, ref := range refs {
		if ref.Kind.Virtual() || ref.Kind == model.KindModel {
			return model.ErrVirtualElementReadOnly
		}
	}

	confirmed, err := c.host.Confirm(ctx, deletePrompt(refs))
	if err != nil {
		return fmt.Errorf("document: confirm delete: %w", err)
	}
	if !confirmed {
		return nil
	}
	if !c.alive() {
		return ErrClosed
	}

	root := c.Root()
	removed := 0
	for _, ref := range refs {
		el, ok := c.Resolve(ref)
		if !ok {
			continue
		}
		if err := root.Remove(el); err != nil {
			c.notify(interfaces.NotifyError, err.Error())
			return err
		}
		removed++
	}
	if removed == 0 {
		return nil
	}
	c.CommitChanges(ctx, "deleteElements")
	c.nav.ClearSelection()
	c.nav.Refresh(ctx)
	c.logger.Info("document.structure.deleted", "count", removed)
	return nil
}

// DuplicateElement copies the referenced element next to the original under
// a uniquified name and reveals the copy.
func (c *Context) DuplicateElement(ctx context.Context, ref model.Ref) error {
	if err := c.beginStructural(); err != nil {
		return err
	}
	el, ok := c.Resolve(ref)
	if !ok {
		return fmt.Errorf("document: duplicate %q: %w", ref.Path, model.ErrElementNotFound)
	}

	copied, err := c.Root().Duplicate(el)
	if err != nil {
		c.notify(interfaces.NotifyError, err.Error())
		return err
	}
	c.CommitChanges(ctx, "duplicateElement")
	c.nav.Reveal(ctx, model.RefOf(copied))
	c.logger.Info("document.structure.duplicated", "path", copied.ElementPath().String())
	return nil
}

// AddLanguage prompts for a language code and declares it.
func (c *Context) AddLanguage(ctx context.Context) error {
	if err := c.beginStructural(); err != nil {
		return err
	}

	code, ok, err := c.host.InputBox(ctx, interfaces.InputBoxOptions{
		Prompt:      "Language code",
		Placeholder: "en, de, pt-BR",
	})
	if err != nil {
		return fmt.Errorf("document: prompt language: %w", err)
	}
	if !ok || strings.TrimSpace(code) == "" {
		return nil
	}
	if !c.alive() {
		return ErrClosed
	}

	if err := c.Root().DeclareLanguage(strings.TrimSpace(code)); err != nil {
		c.notify(interfaces.NotifyError, err.Error())
		return err
	}
	c.CommitChanges(ctx, "addLanguage")
	c.nav.Refresh(ctx)
	c.logger.Info("document.structure.language_added", "language", code)
	return nil
}

// DeleteLanguage removes a declared language and its values after one
// confirmation. The primary language and the last language are protected.
func (c *Context) DeleteLanguage(ctx context.Context, code string) error {
	if err := c.beginStructural(); err != nil {
		return err
	}
	root := c.Root()
	if code == root.Settings.PrimaryLanguage {
		c.notify(interfaces.NotifyWarn, "The primary language cannot be deleted.")
		return model.ErrPrimaryLanguageDelete
	}
	if len(root.Settings.Languages) <= 1 {
		c.notify(interfaces.NotifyWarn, "The last language cannot be deleted.")
		return model.ErrLastLanguageDelete
	}

	confirmed, err := c.host.Confirm(ctx,
		fmt.Sprintf("Delete language %q and all of its translations?", code))
	if err != nil {
		return fmt.Errorf("document: confirm language delete: %w", err)
	}
	if !confirmed {
		return nil
	}
	if !c.alive() {
		return ErrClosed
	}

	if err := c.Root().RemoveLanguage(code); err != nil {
		c.notify(interfaces.NotifyError, err.Error())
		return err
	}
	c.CommitChanges(ctx, "deleteLanguage")
	c.nav.ClearSelection()
	c.nav.Refresh(ctx)
	c.logger.Info("document.structure.language_deleted", "language", code)
	return nil
}

// MarkPrimaryLanguage makes a declared language the primary one.
func (c *Context) MarkPrimaryLanguage(ctx context.Context, code string) error {
	if err := c.beginStructural(); err != nil {
		return err
	}
	if err := c.Root().SetPrimaryLanguage(code); err != nil {
		c.notify(interfaces.NotifyError, err.Error())
		return err
	}
	c.CommitChanges(ctx, "markPrimaryLanguage")
	c.nav.Refresh(ctx)
	c.logger.Info("document.structure.primary_language", "language", code)
	return nil
}

// ShowModelProperties opens the model properties page on the surface with
// the template catalogue and current generator settings.
func (c *Context) ShowModelProperties(ctx context.Context) error {
	c.mu.Lock()
	root := c.root
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if root == nil {
		return ErrNoTree
	}
	return c.dispatcher.Send(ctx, protocol.CommandShowProperties, protocol.ShowPropertiesMessage{
		Catalog:  c.gen.Templates(),
		Settings: root.Settings.Generator,
	})
}

// RequestRename asks the surface to enter inline rename mode for a ref.
func (c *Context) RequestRename(ctx context.Context, ref model.Ref) error {
	if c.Closed() {
		return ErrClosed
	}
	return c.dispatcher.Send(ctx, protocol.CommandRequestRename, protocol.RequestRenameMessage{
		Kind: string(ref.Kind),
		Path: ref.Path,
	})
}

// promptName runs a host input box validated with the shared name grammar.
// The box is pre-filled with initial; current is the name an unchanged
// answer would keep, treated as a no-op.
func (c *Context) promptName(ctx context.Context, prompt string, siblings []string, initial, current string) (string, bool, error) {
	value, ok, err := c.host.InputBox(ctx, interfaces.InputBoxOptions{
		Prompt: prompt,
		Value:  initial,
		Validate: func(candidate string) string {
			return model.ValidNameMessage(candidate, siblings)
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("document: prompt name: %w", err)
	}
	if !ok || value == "" || value == current {
		return "", false, nil
	}
	return value, true, nil
}

// suggestedName derives a grammar-valid, sibling-unique default from a
// display title so the prompt opens with an acceptable value.
func suggestedName(title string, siblings []string) string {
	return model.UniqueName(model.SuggestName(title), siblings)
}

// sharedParent enforces the single-parent rule for multi-element operations.
func sharedParent(refs []model.Ref) error {
	parent := model.ParsePath(refs[0].Path).Parent().String()
	for _, ref := range refs[1:] {
		if model.ParsePath(ref.Path).Parent().String() != parent {
			return ErrMixedParents
		}
	}
	return nil
}

func deletePrompt(refs []model.Ref) string {
	if len(refs) == 1 {
		return fmt.Sprintf("Delete %s %q?", refs[0].Kind, model.ParsePath(refs[0].Path).Name())
	}
	return fmt.Sprintf("Delete %d elements?", len(refs))
}
