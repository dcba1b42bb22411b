package model

import "sort"

// languagesNodeName is the path segment used by the virtual language nodes.
// It cannot collide with real elements because refs pair paths with kinds.
const languagesNodeName = "languages"

// LanguagesElement is the synthetic grouping node listing every declared
// language. It carries no persisted state: it is recomputed from the root
// whenever language membership or the primary changes.
type LanguagesElement struct {
	Children []*LanguageElement
}

// LanguageElement wraps one declared language as a navigable leaf.
type LanguageElement struct {
	Code    string
	Primary bool
}

func (l *LanguagesElement) ElementKind() Kind   { return KindLanguages }
func (l *LanguagesElement) ElementName() string { return languagesNodeName }
func (l *LanguagesElement) ElementPath() Path   { return Path{languagesNodeName} }

func (l *LanguageElement) ElementKind() Kind   { return KindLanguage }
func (l *LanguageElement) ElementName() string { return l.Code }
func (l *LanguageElement) ElementPath() Path   { return Path{languagesNodeName, l.Code} }

// IsPrimary reports whether this leaf wraps the model's primary language.
func (l *LanguageElement) IsPrimary() bool { return l.Primary }

// BuildLanguages projects the root's declared languages into the virtual
// layer: primary first, remainder sorted.
func BuildLanguages(root *Root) *LanguagesElement {
	node := &LanguagesElement{}
	if root == nil {
		return node
	}

	rest := make([]string, 0, len(root.Settings.Languages))
	for _, lang := range root.Settings.Languages {
		if lang == root.Settings.PrimaryLanguage {
			continue
		}
		rest = append(rest, lang)
	}
	sort.Strings(rest)

	if root.HasLanguage(root.Settings.PrimaryLanguage) {
		node.Children = append(node.Children, &LanguageElement{
			Code:    root.Settings.PrimaryLanguage,
			Primary: true,
		})
	}
	for _, lang := range rest {
		node.Children = append(node.Children, &LanguageElement{Code: lang})
	}
	return node
}

// Find resolves a virtual (kind, path) reference against the projection.
func (l *LanguagesElement) Find(kind Kind, path Path) (Element, bool) {
	switch kind {
	case KindLanguages:
		if len(path) == 1 && path[0] == languagesNodeName {
			return l, true
		}
	case KindLanguage:
		if len(path) == 2 && path[0] == languagesNodeName {
			for _, child := range l.Children {
				if child.Code == path[1] {
					return child, true
				}
			}
		}
	}
	return nil, false
}
