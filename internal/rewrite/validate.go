package rewrite

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/ratesweep/pkg/jsonschema"
)

// templateSchema describes the part of the load-test template the sweep
// depends on. Other fields are passed through without inspection.
const templateSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["config"],
	"properties": {
		"config": {
			"type": "object",
			"required": ["phases"],
			"properties": {
				"phases": {
					"type": "array",
					"minItems": 1,
					"items": {
						"type": "object",
						"properties": {
							"arrivalRate": { "type": "number", "minimum": 0 },
							"duration": { "type": ["number", "string"] }
						}
					}
				}
			}
		}
	}
}`

var compiledTemplateSchema = jsonschema.MustCompile("template.json", templateSchema)

// Validate checks that templatePath parses and has the shape Rewrite
// needs. Schema violations are returned as jsonschema.ValidationErrors
// wrapped in an *Error with Op "parse".
func Validate(templatePath string) error {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return &Error{Op: "read", Path: templatePath, Err: err}
	}

	if err := ValidateBytes(data); err != nil {
		return &Error{Op: "parse", Path: templatePath, Err: err}
	}
	return nil
}

// ValidateBytes is Validate for an in-memory template.
func ValidateBytes(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML template: %w", err)
	}

	if errs := compiledTemplateSchema.ValidateDocument(doc); len(errs) > 0 {
		return errs
	}
	return nil
}
