package model

import "errors"

var (
	ErrCategoriesDisabled     = errors.New("model: categories are disabled for this model")
	ErrRootResourcesDisabled  = errors.New("model: resources are not allowed directly under the root")
	ErrElementNotFound        = errors.New("model: element not found")
	ErrLanguageUnknown        = errors.New("model: language is not declared")
	ErrLanguageInvalid        = errors.New("model: language code is invalid")
	ErrLanguageAlreadyExists  = errors.New("model: language is already declared")
	ErrPrimaryLanguageDelete  = errors.New("model: the primary language cannot be deleted")
	ErrLastLanguageDelete     = errors.New("model: the last declared language cannot be deleted")
	ErrDuplicateUnsupported   = errors.New("model: element kind cannot be duplicated")
	ErrVirtualElementReadOnly = errors.New("model: virtual elements cannot be mutated")
)

// Settings holds the model-level flags and generator configuration stored in
// the document.
type Settings struct {
	PrimaryLanguage    string
	Languages          []string
	ResourcesUnderRoot bool
	CategoriesEnabled  bool
	Generator          map[string]string
}

// Root is the validated tree built from one parsed document. It is rebuilt
// wholesale on every accepted refresh and exclusively owned by its document
// context; pointers into it never survive a rebuild.
type Root struct {
	Name        string
	Description string
	Settings    Settings
	Categories  []*Category
	Resources   []*Resource
}

// Category groups resources under the root.
type Category struct {
	Name        string
	Description string
	Resources   []*Resource

	root *Root
}

// Resource is one localizable entry with per-language values.
type Resource struct {
	Name        string
	Description string
	State       string
	Parameters  []Parameter
	Values      map[string]string

	category *Category // nil when the resource sits directly under the root
	root     *Root
}

// Parameter is one ordered, typed placeholder of a resource value.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

func (r *Root) ElementKind() Kind     { return KindModel }
func (r *Root) ElementName() string   { return r.Name }
func (r *Root) ElementPath() Path     { return Path{} }
func (c *Category) ElementKind() Kind { return KindCategory }
func (c *Category) ElementName() string {
	return c.Name
}
func (c *Category) ElementPath() Path {
	return Path{c.Name}
}
func (r *Resource) ElementKind() Kind   { return KindResource }
func (r *Resource) ElementName() string { return r.Name }
func (r *Resource) ElementPath() Path {
	if r.category != nil {
		return Path{r.category.Name, r.Name}
	}
	return Path{r.Name}
}

// Category returns the resource's parent category, or nil for root resources.
func (r *Resource) Category() *Category { return r.category }

// link wires parent pointers after parsing or structural mutation.
func (r *Root) link() {
	for _, cat := range r.Categories {
		cat.root = r
		for _, res := range cat.Resources {
			res.category = cat
			res.root = r
		}
	}
	for _, res := range r.Resources {
		res.category = nil
		res.root = r
	}
}

// Find resolves a (kind, path) reference against the tree. Virtual kinds are
// not resolvable here; they live in the projection layer.
func (r *Root) Find(kind Kind, path Path) (Element, bool) {
	switch kind {
	case KindModel:
		if len(path) == 0 {
			return r, true
		}
	case KindCategory:
		if len(path) == 1 {
			if cat, ok := r.CategoryByName(path[0]); ok {
				return cat, true
			}
		}
	case KindResource:
		if res, ok := r.ResourceAt(path); ok {
			return res, true
		}
	}
	return nil, false
}

// CategoryByName looks a category up by name.
func (r *Root) CategoryByName(name string) (*Category, bool) {
	for _, cat := range r.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return nil, false
}

// ResourceAt resolves a resource path: one segment for a root resource, two
// for a categorized one.
func (r *Root) ResourceAt(path Path) (*Resource, bool) {
	switch len(path) {
	case 1:
		for _, res := range r.Resources {
			if res.Name == path[0] {
				return res, true
			}
		}
	case 2:
		if cat, ok := r.CategoryByName(path[0]); ok {
			for _, res := range cat.Resources {
				if res.Name == path[1] {
					return res, true
				}
			}
		}
	}
	return nil, false
}

// categoryNames lists the names of all categories (sibling set for the
// category type).
func (r *Root) categoryNames() []string {
	names := make([]string, 0, len(r.Categories))
	for _, cat := range r.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// resourceNames lists the resource names under the given parent (nil for the
// root).
func (r *Root) resourceNames(parent *Category) []string {
	source := r.Resources
	if parent != nil {
		source = parent.Resources
	}
	names := make([]string, 0, len(source))
	for _, res := range source {
		names = append(names, res.Name)
	}
	return names
}

// SiblingNames returns the names competing with el for uniqueness: same
// parent, same element type, excluding el itself.
func (r *Root) SiblingNames(el Element) []string {
	switch v := el.(type) {
	case *Category:
		return exclude(r.categoryNames(), v.Name)
	case *Resource:
		return exclude(r.resourceNames(v.category), v.Name)
	default:
		return nil
	}
}

func exclude(names []string, skip string) []string {
	out := names[:0:0]
	for _, name := range names {
		if name != skip {
			out = append(out, name)
		}
	}
	return out
}
