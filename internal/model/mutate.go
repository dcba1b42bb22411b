package model

import (
	"fmt"
	"sort"
)

// AddCategory appends a new category. The name is checked against the
// grammar and the existing category set; shape flags are enforced before any
// mutation happens.
func (r *Root) AddCategory(name string) (*Category, error) {
	if !r.Settings.CategoriesEnabled {
		return nil, ErrCategoriesDisabled
	}
	if err := CheckName(name, r.categoryNames()); err != nil {
		return nil, err
	}
	cat := &Category{Name: name, root: r}
	r.Categories = append(r.Categories, cat)
	return cat, nil
}

// AddResource appends a new resource under parent, or under the root when
// parent is nil. Every declared language starts with an empty value for the
// primary language only; the remaining values stay absent until edited.
func (r *Root) AddResource(parent *Category, name string) (*Resource, error) {
	if parent == nil && !r.Settings.ResourcesUnderRoot {
		return nil, ErrRootResourcesDisabled
	}
	if err := CheckName(name, r.resourceNames(parent)); err != nil {
		return nil, err
	}
	res := &Resource{
		Name:     name,
		Values:   map[string]string{},
		category: parent,
		root:     r,
	}
	if r.Settings.PrimaryLanguage != "" {
		res.Values[r.Settings.PrimaryLanguage] = ""
	}
	if parent != nil {
		parent.Resources = append(parent.Resources, res)
	} else {
		r.Resources = append(r.Resources, res)
	}
	return res, nil
}

// Rename changes an element's name after re-running the sibling-uniqueness
// and grammar checks. The tree is untouched when validation fails.
func (r *Root) Rename(el Element, newName string) error {
	switch v := el.(type) {
	case *Root:
		if err := CheckName(newName, nil); err != nil {
			return err
		}
		v.Name = newName
		return nil
	case *Category:
		if err := CheckName(newName, r.SiblingNames(v)); err != nil {
			return err
		}
		v.Name = newName
		return nil
	case *Resource:
		if err := CheckName(newName, r.SiblingNames(v)); err != nil {
			return err
		}
		v.Name = newName
		return nil
	default:
		return ErrVirtualElementReadOnly
	}
}

// Remove detaches an element from the tree. Removing a category removes its
// resources with it.
func (r *Root) Remove(el Element) error {
	switch v := el.(type) {
	case *Category:
		for i, cat := range r.Categories {
			if cat == v {
				r.Categories = append(r.Categories[:i], r.Categories[i+1:]...)
				return nil
			}
		}
	case *Resource:
		list := &r.Resources
		if v.category != nil {
			list = &v.category.Resources
		}
		for i, res := range *list {
			if res == v {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return nil
			}
		}
	default:
		return ErrVirtualElementReadOnly
	}
	return ErrElementNotFound
}

// Duplicate deep-copies a category or resource next to the original under a
// generated non-conflicting name.
func (r *Root) Duplicate(el Element) (Element, error) {
	switch v := el.(type) {
	case *Category:
		name := UniqueName(v.Name, r.categoryNames())
		copied := &Category{
			Name:        name,
			Description: v.Description,
			root:        r,
		}
		for _, res := range v.Resources {
			copied.Resources = append(copied.Resources, cloneResource(res, copied, r))
		}
		r.Categories = append(r.Categories, copied)
		return copied, nil
	case *Resource:
		name := UniqueName(v.Name, r.resourceNames(v.category))
		copied := cloneResource(v, v.category, r)
		copied.Name = name
		if v.category != nil {
			v.category.Resources = append(v.category.Resources, copied)
		} else {
			r.Resources = append(r.Resources, copied)
		}
		return copied, nil
	default:
		return nil, ErrDuplicateUnsupported
	}
}

func cloneResource(src *Resource, parent *Category, root *Root) *Resource {
	copied := &Resource{
		Name:        src.Name,
		Description: src.Description,
		State:       src.State,
		Parameters:  append([]Parameter(nil), src.Parameters...),
		Values:      make(map[string]string, len(src.Values)),
		category:    parent,
		root:        root,
	}
	for lang, value := range src.Values {
		copied.Values[lang] = value
	}
	return copied
}

// DeclareLanguage adds a language to the declared set. The first declared
// language becomes primary.
func (r *Root) DeclareLanguage(code string) error {
	if !validLanguageCode(code) {
		return fmt.Errorf("%w: %q", ErrLanguageInvalid, code)
	}
	for _, lang := range r.Settings.Languages {
		if lang == code {
			return fmt.Errorf("%w: %s", ErrLanguageAlreadyExists, code)
		}
	}
	r.Settings.Languages = append(r.Settings.Languages, code)
	sort.Strings(r.Settings.Languages)
	if r.Settings.PrimaryLanguage == "" {
		r.Settings.PrimaryLanguage = code
	}
	return nil
}

// RemoveLanguage deletes a declared language and every translation value in
// it. The primary language and the last remaining language are protected.
func (r *Root) RemoveLanguage(code string) error {
	if code == r.Settings.PrimaryLanguage {
		return fmt.Errorf("%w: %s", ErrPrimaryLanguageDelete, code)
	}
	if len(r.Settings.Languages) <= 1 {
		return ErrLastLanguageDelete
	}
	idx := -1
	for i, lang := range r.Settings.Languages {
		if lang == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLanguageUnknown, code)
	}
	r.Settings.Languages = append(r.Settings.Languages[:idx], r.Settings.Languages[idx+1:]...)
	for res := range r.AllResources() {
		delete(res.Values, code)
	}
	return nil
}

// SetPrimaryLanguage marks a declared language as primary.
func (r *Root) SetPrimaryLanguage(code string) error {
	for _, lang := range r.Settings.Languages {
		if lang == code {
			r.Settings.PrimaryLanguage = code
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrLanguageUnknown, code)
}

// AllResources iterates every resource regardless of parent.
func (r *Root) AllResources() map[*Resource]struct{} {
	out := map[*Resource]struct{}{}
	for _, res := range r.Resources {
		out[res] = struct{}{}
	}
	for _, cat := range r.Categories {
		for _, res := range cat.Resources {
			out[res] = struct{}{}
		}
	}
	return out
}

// ReferencedLanguages collects, sorted, every language that appears in any
// resource value, declared or not.
func (r *Root) ReferencedLanguages() []string {
	seen := map[string]struct{}{}
	for res := range r.AllResources() {
		for lang := range res.Values {
			seen[lang] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for lang := range seen {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// MissingLanguages returns the referenced languages absent from the declared
// set, sorted.
func (r *Root) MissingLanguages() []string {
	declared := make(map[string]struct{}, len(r.Settings.Languages))
	for _, lang := range r.Settings.Languages {
		declared[lang] = struct{}{}
	}
	var missing []string
	for _, lang := range r.ReferencedLanguages() {
		if _, ok := declared[lang]; !ok {
			missing = append(missing, lang)
		}
	}
	return missing
}
