package model

import "strings"

// Kind is the explicit discriminant carried by every tree element, real or
// virtual. Virtual kinds never appear in the serialized document; they exist
// only in the navigable projection.
type Kind string

const (
	KindModel    Kind = "model"
	KindCategory Kind = "category"
	KindResource Kind = "resource"

	KindTreeRoot  Kind = "tree-root"
	KindLanguages Kind = "languages"
	KindLanguage  Kind = "language"
)

// Virtual reports whether elements of this kind are synthetic projections
// rather than part of the serialized data.
func (k Kind) Virtual() bool {
	switch k {
	case KindTreeRoot, KindLanguages, KindLanguage:
		return true
	default:
		return false
	}
}

// Path is the sequence of names from the model root down to an element. The
// root itself has an empty path. Paths are not stable across a rebuild; use
// them only as re-resolvable references, never as identities.
type Path []string

// ParsePath splits a slash-joined path string. Empty input yields the root
// path.
func ParsePath(s string) Path {
	s = strings.Trim(s, "/")
	if s == "" {
		return Path{}
	}
	return Path(strings.Split(s, "/"))
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// Name returns the final segment, or "" for the root path.
func (p Path) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Parent returns the path with the final segment removed.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1]
}

// Equal reports segment-wise equality.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Child returns a copy of p extended with name.
func (p Path) Child(name string) Path {
	child := make(Path, 0, len(p)+1)
	child = append(child, p...)
	return append(child, name)
}

// Element is the common contract of every navigable node. The method names
// avoid colliding with the exported data fields of the concrete types.
type Element interface {
	ElementKind() Kind
	ElementName() string
	ElementPath() Path
}

// Ref is a rebuild-safe reference to an element: the pair that survives a
// wholesale tree rebuild and can be re-resolved afterwards.
type Ref struct {
	Kind Kind
	Path string
}

// RefOf captures a re-resolvable reference for any element.
func RefOf(el Element) Ref {
	return Ref{Kind: el.ElementKind(), Path: el.ElementPath().String()}
}
