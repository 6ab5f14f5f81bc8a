// Package jsonschema validates decoded configuration documents against
// an embedded JSON Schema.
package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Schema is a compiled schema that can be applied to many documents.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// Compile parses schemaStr and registers it under name.
func Compile(name, schemaStr string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource(name, strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error. Intended for schemas
// embedded in the binary.
func MustCompile(name, schemaStr string) *Schema {
	s, err := Compile(name, schemaStr)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateDocument validates an arbitrary decoded document (for example
// the result of yaml.Unmarshal into interface{}). The document is first
// normalized through encoding/json so that YAML integers, nested maps and
// slices look the way the validator expects.
func (s *Schema) ValidateDocument(doc interface{}) ValidationErrors {
	data, err := json.Marshal(doc)
	if err != nil {
		return ValidationErrors{fmt.Errorf("document is not representable as JSON: %w", err)}
	}
	return s.ValidateJSON(data)
}

// ValidateJSON validates raw JSON bytes.
func (s *Schema) ValidateJSON(data []byte) ValidationErrors {
	var jsonData interface{}
	if err := json.Unmarshal(data, &jsonData); err != nil {
		return ValidationErrors{fmt.Errorf("invalid JSON: %w", err)}
	}

	err := s.compiled.Validate(jsonData)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractValidationErrors(validationErr)
	}
	return ValidationErrors{err}
}

// extractValidationErrors flattens a jsonschema.ValidationError tree,
// keeping only the leaves that carry a message.
func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	var errs ValidationErrors

	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		errs = append(errs, fmt.Errorf("validation error at %s: %s", location, err.Message))
		return errs
	}

	for _, childErr := range err.Causes {
		errs = append(errs, extractValidationErrors(childErr)...)
	}

	return errs
}
