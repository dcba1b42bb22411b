package model

import (
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema constrains the serialized document shape before the tree is
// built. Name grammar and sibling uniqueness are re-checked structurally in
// buildRoot; the schema catches type-level mistakes early with positional
// error messages.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["model"],
  "properties": {
    "model": {
      "type": "object",
      "required": ["name", "settings"],
      "properties": {
        "name": {"type": "string", "pattern": "^[A-Za-z][A-Za-z0-9_]*$"},
        "description": {"type": "string"},
        "settings": {
          "type": "object",
          "required": ["primaryLanguage", "languages"],
          "properties": {
            "primaryLanguage": {"type": "string"},
            "languages": {"type": "array", "items": {"type": "string"}},
            "resourcesUnderRoot": {"type": "boolean"},
            "categoriesEnabled": {"type": "boolean"},
            "generator": {"type": "object", "additionalProperties": {"type": "string"}}
          }
        },
        "categories": {"type": "array", "items": {"$ref": "#/$defs/category"}},
        "resources": {"type": "array", "items": {"$ref": "#/$defs/resource"}}
      }
    }
  },
  "$defs": {
    "category": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "pattern": "^[A-Za-z][A-Za-z0-9_]*$"},
        "description": {"type": "string"},
        "resources": {"type": "array", "items": {"$ref": "#/$defs/resource"}}
      }
    },
    "resource": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "pattern": "^[A-Za-z][A-Za-z0-9_]*$"},
        "description": {"type": "string"},
        "state": {"type": "string"},
        "parameters": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["name"],
            "properties": {
              "name": {"type": "string"},
              "type": {"type": "string"}
            }
          }
        },
        "values": {"type": "object", "additionalProperties": {"type": "string"}}
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("loctree-document.json", strings.NewReader(documentSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("loctree-document.json")
	})
	return schema, schemaErr
}
