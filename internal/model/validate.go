package model

import "fmt"

// Violation is one reported structural invariant breach. Violations are
// surfaced to the user and block code generation; they are never silently
// repaired.
type Violation struct {
	Code    string
	Message string
}

func (v Violation) String() string { return v.Message }

const (
	codeCategoriesExistWhileDisabled = "loctree.model.categories_disabled_violation"
	codeRootResourcesDisallowed      = "loctree.model.root_resources_violation"
	codeNoPrimaryLanguage            = "loctree.model.no_primary_language"
	codePrimaryNotDeclared           = "loctree.model.primary_not_declared"
)

// Violations re-checks the structural invariants against current tree state:
// the shape flags and the primary-language rules. Language completeness
// (declared ⊇ referenced) is handled separately by the healing routine so it
// can be fixed interactively.
func (r *Root) Violations() []Violation {
	var out []Violation

	if !r.Settings.CategoriesEnabled && len(r.Categories) > 0 {
		out = append(out, Violation{
			Code: codeCategoriesExistWhileDisabled,
			Message: fmt.Sprintf("categories are disabled but %d categor%s exist",
				len(r.Categories), pluralYIes(len(r.Categories))),
		})
	}
	if !r.Settings.ResourcesUnderRoot && len(r.Resources) > 0 {
		out = append(out, Violation{
			Code: codeRootResourcesDisallowed,
			Message: fmt.Sprintf("resources under the root are disallowed but %d exist",
				len(r.Resources)),
		})
	}
	if r.Settings.PrimaryLanguage == "" {
		out = append(out, Violation{
			Code:    codeNoPrimaryLanguage,
			Message: "no primary language is declared",
		})
	} else if !r.HasLanguage(r.Settings.PrimaryLanguage) {
		out = append(out, Violation{
			Code: codePrimaryNotDeclared,
			Message: fmt.Sprintf("primary language %q is not in the declared language set",
				r.Settings.PrimaryLanguage),
		})
	}

	return out
}

// HasLanguage reports whether code is in the declared language set.
func (r *Root) HasLanguage(code string) bool {
	for _, lang := range r.Settings.Languages {
		if lang == code {
			return true
		}
	}
	return false
}

func pluralYIes(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
