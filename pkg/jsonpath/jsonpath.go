// Package jsonpath reads individual fields out of JSON documents using a
// small JSONPath subset ($.a.b[0].c) translated to gjson paths.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Document is a parsed JSON document that can be queried repeatedly.
type Document struct {
	raw string
}

// Parse checks that data is valid JSON and wraps it for querying.
func Parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON document")
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	return &Document{raw: string(data)}, nil
}

// Lookup resolves path and returns the raw gjson result.
func (d *Document) Lookup(path string) (gjson.Result, error) {
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty JSONPath expression")
	}

	result := gjson.Get(d.raw, convertToGjsonPath(path))
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	return result, nil
}

// String returns the value at path as a string. JSON null renders as "null".
func (d *Document) String(path string) (string, error) {
	result, err := d.Lookup(path)
	if err != nil {
		return "", err
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// Int returns the numeric value at path as an int64.
func (d *Document) Int(path string) (int64, error) {
	result, err := d.Lookup(path)
	if err != nil {
		return 0, err
	}
	if result.Type != gjson.Number {
		return 0, fmt.Errorf("%s: expected number, got %s", path, result.Type)
	}
	return result.Int(), nil
}

// Float returns the numeric value at path as a float64.
func (d *Document) Float(path string) (float64, error) {
	result, err := d.Lookup(path)
	if err != nil {
		return 0, err
	}
	if result.Type != gjson.Number {
		return 0, fmt.Errorf("%s: expected number, got %s", path, result.Type)
	}
	return result.Float(), nil
}

// Extract extracts a value from a JSON string using a JSONPath expression
func Extract(json string, path string) (string, error) {
	doc, err := Parse([]byte(json))
	if err != nil {
		return "", err
	}
	return doc.String(path)
}

// convertToGjsonPath converts a JSONPath expression to a gjson path.
//
//	$.stdout        -> stdout
//	$['arrivalRate'] -> arrivalRate
//	$.phases[0].arrivalRate -> phases.0.arrivalRate
func convertToGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	// Quoted bracket notation
	path = strings.NewReplacer("['", ".", "']", "", "[\"", ".", "\"]", "").Replace(path)

	// Index notation
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)

	return strings.TrimPrefix(path, ".")
}
