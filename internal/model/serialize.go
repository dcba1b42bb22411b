package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Style captures the formatting conventions detected in the original
// document text so commits preserve them.
type Style struct {
	Indent string
	EOL    string
}

// DefaultStyle is used for documents too small to detect a convention from.
func DefaultStyle() Style {
	return Style{Indent: "  ", EOL: "\n"}
}

// DetectStyle inspects document text for its end-of-line convention and the
// indentation of the first indented line.
func DetectStyle(text string) Style {
	style := DefaultStyle()
	if strings.Contains(text, "\r\n") {
		style.EOL = "\r\n"
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || len(trimmed) == len(line) {
			continue
		}
		style.Indent = line[:len(line)-len(trimmed)]
		break
	}
	return style
}

// Serialize renders the tree back into document text using the given style.
// The emitted structure re-parses to an equivalent tree; only whitespace and
// line endings are style-dependent.
func Serialize(root *Root, style Style) (string, error) {
	if style.Indent == "" {
		style.Indent = DefaultStyle().Indent
	}
	if style.EOL == "" {
		style.EOL = DefaultStyle().EOL
	}

	dto := documentDTO{
		Model: modelDTO{
			Name:        root.Name,
			Description: root.Description,
			Settings: settingsDTO{
				PrimaryLanguage:    root.Settings.PrimaryLanguage,
				Languages:          append([]string(nil), root.Settings.Languages...),
				ResourcesUnderRoot: root.Settings.ResourcesUnderRoot,
				CategoriesEnabled:  root.Settings.CategoriesEnabled,
				Generator:          root.Settings.Generator,
			},
		},
	}
	for _, cat := range root.Categories {
		dto.Model.Categories = append(dto.Model.Categories, categoryDTO{
			Name:        cat.Name,
			Description: cat.Description,
			Resources:   resourceDTOs(cat.Resources),
		})
	}
	dto.Model.Resources = resourceDTOs(root.Resources)

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", style.Indent)
	if err := encoder.Encode(dto); err != nil {
		return "", err
	}

	text := buf.String()
	if style.EOL != "\n" {
		text = strings.ReplaceAll(text, "\n", style.EOL)
	}
	return text, nil
}

func resourceDTOs(resources []*Resource) []resourceDTO {
	out := make([]resourceDTO, 0, len(resources))
	for _, res := range resources {
		dto := resourceDTO{
			Name:        res.Name,
			Description: res.Description,
			State:       res.State,
			Parameters:  append([]Parameter(nil), res.Parameters...),
		}
		if len(res.Values) > 0 {
			dto.Values = res.Values
		}
		out = append(out, dto)
	}
	return out
}
