package model

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	slug "github.com/goliatone/go-slug"
)

// namePattern is the grammar every category and resource name must match.
// It is shared by interactive edits, structural commands, and host input
// prompts so a name accepted anywhere is accepted everywhere.
var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

const (
	codeNameRequired  = "loctree.model.name_required"
	codeNameInvalid   = "loctree.model.name_invalid"
	codeNameDuplicate = "loctree.model.name_duplicate"
)

// CheckName validates a proposed element name against the grammar and the
// names already used by siblings of the same type. Failures come back as a
// field-scoped validation.Errors keyed by "name", never as a panic; callers
// surface them as inline field errors.
func CheckName(name string, siblings []string) error {
	errs := validation.Errors{}

	switch {
	case strings.TrimSpace(name) == "":
		errs["name"] = validation.NewError(codeNameRequired, "name is required")
	case !namePattern.MatchString(name):
		errs["name"] = validation.NewError(codeNameInvalid,
			"names must start with a letter and contain only letters, digits, and underscores")
	default:
		for _, sibling := range siblings {
			if sibling == name {
				errs["name"] = validation.NewError(codeNameDuplicate,
					fmt.Sprintf("name %q is already used by a sibling element", name))
				break
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidNameMessage runs the same grammar check used by CheckName and returns
// a human-readable message, or "" when the name is acceptable. It matches
// the shape host input boxes expect from an inline validator.
func ValidNameMessage(name string, siblings []string) string {
	err := CheckName(name, siblings)
	if err == nil {
		return ""
	}
	if errs, ok := err.(validation.Errors); ok {
		if field, ok := errs["name"]; ok {
			return field.Error()
		}
	}
	return err.Error()
}

// SuggestName derives a grammar-valid identifier from free text, e.g. a
// dialog title or a display string. Slug normalization handles unicode and
// punctuation; the result is then folded into identifier form.
func SuggestName(text string) string {
	normalized, err := slug.Normalize(text)
	if err != nil || normalized == "" {
		return "Element"
	}

	parts := strings.Split(normalized, "-")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}

	candidate := b.String()
	if candidate == "" || !namePattern.MatchString(candidate) {
		// Strip anything the grammar rejects and force a letter prefix.
		cleaned := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
				return r
			}
			return -1
		}, candidate)
		if cleaned == "" || (cleaned[0] >= '0' && cleaned[0] <= '9') || cleaned[0] == '_' {
			cleaned = "Element" + cleaned
		}
		candidate = cleaned
	}
	return candidate
}

// UniqueName appends a numeric suffix to base until it no longer collides
// with any taken sibling name.
func UniqueName(base string, taken []string) string {
	inUse := make(map[string]struct{}, len(taken))
	for _, name := range taken {
		inUse[name] = struct{}{}
	}
	if _, clash := inUse[base]; !clash {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if _, clash := inUse[candidate]; !clash {
			return candidate
		}
	}
}

// validLanguageCode accepts BCP-47 style codes such as "en" or "pt-BR".
func validLanguageCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	for _, part := range strings.Split(code, "-") {
		if part == "" {
			return false
		}
		for _, r := range part {
			if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
				return false
			}
		}
	}
	return true
}
