package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrDocumentMalformed = errors.New("model: document text is not valid JSON")
	ErrDocumentInvalid   = errors.New("model: document failed validation")
)

// ParseError reports why a document refresh was rejected. The per-issue list
// keeps the JSON locations so the host can show positional diagnostics.
type ParseError struct {
	Issues []ParseIssue
	cause  error
}

// ParseIssue is one schema or structural complaint about the document.
type ParseIssue struct {
	Location string
	Message  string
}

func (e *ParseError) Error() string {
	if len(e.Issues) == 0 {
		return ErrDocumentInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *ParseError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return ErrDocumentInvalid
}

// documentDTO mirrors the serialized document. Field order here fixes the
// order emitted on commit.
type documentDTO struct {
	Model modelDTO `json:"model"`
}

type modelDTO struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Settings    settingsDTO   `json:"settings"`
	Categories  []categoryDTO `json:"categories,omitempty"`
	Resources   []resourceDTO `json:"resources,omitempty"`
}

type settingsDTO struct {
	PrimaryLanguage    string            `json:"primaryLanguage"`
	Languages          []string          `json:"languages"`
	ResourcesUnderRoot bool              `json:"resourcesUnderRoot"`
	CategoriesEnabled  bool              `json:"categoriesEnabled"`
	Generator          map[string]string `json:"generator,omitempty"`
}

type categoryDTO struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Resources   []resourceDTO `json:"resources,omitempty"`
}

type resourceDTO struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	State       string            `json:"state,omitempty"`
	Parameters  []Parameter       `json:"parameters,omitempty"`
	Values      map[string]string `json:"values,omitempty"`
}

// Parse turns document text into a validated tree. It returns the tree and
// the raw parsed JSON (the generator's input). On any failure the tree is
// discarded entirely; callers decide whether to keep a previous good tree.
func Parse(text string) (*Root, json.RawMessage, error) {
	var generic any
	if err := json.Unmarshal([]byte(text), &generic); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDocumentMalformed, err)
	}

	compiled, err := compiledSchema()
	if err != nil {
		return nil, nil, fmt.Errorf("model: compile document schema: %w", err)
	}
	if err := compiled.Validate(generic); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return nil, nil, &ParseError{Issues: collectIssues(validationErr), cause: err}
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}

	var dto documentDTO
	if err := json.Unmarshal([]byte(text), &dto); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDocumentMalformed, err)
	}

	root, err := buildRoot(dto)
	if err != nil {
		return nil, nil, err
	}
	return root, json.RawMessage(text), nil
}

// buildRoot converts the DTO into the linked tree, enforcing the sibling
// uniqueness the schema cannot express.
func buildRoot(dto documentDTO) (*Root, error) {
	root := &Root{
		Name:        dto.Model.Name,
		Description: dto.Model.Description,
		Settings: Settings{
			PrimaryLanguage:    dto.Model.Settings.PrimaryLanguage,
			Languages:          append([]string(nil), dto.Model.Settings.Languages...),
			ResourcesUnderRoot: dto.Model.Settings.ResourcesUnderRoot,
			CategoriesEnabled:  dto.Model.Settings.CategoriesEnabled,
			Generator:          dto.Model.Settings.Generator,
		},
	}

	var issues []ParseIssue
	seenCategories := map[string]struct{}{}
	for i, cat := range dto.Model.Categories {
		if _, dup := seenCategories[cat.Name]; dup {
			issues = append(issues, ParseIssue{
				Location: fmt.Sprintf("/model/categories/%d", i),
				Message:  fmt.Sprintf("duplicate category name %q", cat.Name),
			})
			continue
		}
		seenCategories[cat.Name] = struct{}{}
		built := &Category{Name: cat.Name, Description: cat.Description}
		issues = append(issues, buildResources(cat.Resources, &built.Resources,
			fmt.Sprintf("/model/categories/%d/resources", i))...)
		root.Categories = append(root.Categories, built)
	}
	issues = append(issues, buildResources(dto.Model.Resources, &root.Resources, "/model/resources")...)

	if len(issues) > 0 {
		return nil, &ParseError{Issues: issues}
	}
	root.link()
	return root, nil
}

func buildResources(dtos []resourceDTO, dst *[]*Resource, location string) []ParseIssue {
	var issues []ParseIssue
	seen := map[string]struct{}{}
	for i, res := range dtos {
		if _, dup := seen[res.Name]; dup {
			issues = append(issues, ParseIssue{
				Location: fmt.Sprintf("%s/%d", location, i),
				Message:  fmt.Sprintf("duplicate resource name %q", res.Name),
			})
			continue
		}
		seen[res.Name] = struct{}{}
		values := res.Values
		if values == nil {
			values = map[string]string{}
		}
		*dst = append(*dst, &Resource{
			Name:        res.Name,
			Description: res.Description,
			State:       res.State,
			Parameters:  append([]Parameter(nil), res.Parameters...),
			Values:      values,
		})
	}
	return issues
}

func collectIssues(err *jsonschema.ValidationError) []ParseIssue {
	if err == nil {
		return nil
	}
	issues := []ParseIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ParseIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
