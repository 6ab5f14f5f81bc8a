package jsonpath

import (
	"testing"
)

const reportJSON = `{
  "arrivalRate": 50,
  "duration": 62.417,
  "stdout": "All VUs finished.\nLog file: none",
  "stderr": "",
  "phases": [
    {"name": "warm up", "arrivalRate": 5},
    {"name": "sustained", "arrivalRate": 50}
  ],
  "meta": null
}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		expected      string
		expectedError bool
	}{
		{
			name:     "Integer property",
			path:     "$.arrivalRate",
			expected: "50",
		},
		{
			name:     "Float property",
			path:     "$.duration",
			expected: "62.417",
		},
		{
			name:     "String with newline",
			path:     "$.stdout",
			expected: "All VUs finished.\nLog file: none",
		},
		{
			name:     "Empty string",
			path:     "$.stderr",
			expected: "",
		},
		{
			name:     "Array element property",
			path:     "$.phases[1].name",
			expected: "sustained",
		},
		{
			name:     "Bracket notation",
			path:     "$['arrivalRate']",
			expected: "50",
		},
		{
			name:     "Null value",
			path:     "$.meta",
			expected: "null",
		},
		{
			name:          "Missing property",
			path:          "$.exitCode",
			expectedError: true,
		},
		{
			name:          "Empty path",
			path:          "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(reportJSON, tt.path)
			if tt.expectedError {
				if err == nil {
					t.Errorf("Extract(%q) expected error, got %q", tt.path, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract(%q) error = %v", tt.path, err)
			}
			if got != tt.expected {
				t.Errorf("Extract(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	if _, err := Extract("", "$.arrivalRate"); err == nil {
		t.Error("Extract() expected error for empty JSON")
	}
}

func TestExtractTruncatedDocument(t *testing.T) {
	if got, err := Extract(`{"arrivalRate": 50, "duration": 1`, "$.arrivalRate"); err == nil {
		t.Errorf("Extract() = %q, expected error for truncated JSON", got)
	}
}

func TestDocumentNumbers(t *testing.T) {
	doc, err := Parse([]byte(reportJSON))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	rate, err := doc.Int("$.arrivalRate")
	if err != nil || rate != 50 {
		t.Errorf("Int() = %d, %v; want 50, nil", rate, err)
	}

	dur, err := doc.Float("$.duration")
	if err != nil || dur != 62.417 {
		t.Errorf("Float() = %v, %v; want 62.417, nil", dur, err)
	}

	if _, err := doc.Int("$.stdout"); err == nil {
		t.Error("Int() expected error for string value")
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Error("Parse() expected error for invalid JSON")
	}
	if _, err := Parse(nil); err == nil {
		t.Error("Parse() expected error for empty input")
	}
}

func TestConvertToGjsonPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"$", "@this"},
		{"$.stdout", "stdout"},
		{"$['arrivalRate']", "arrivalRate"},
		{"$[\"duration\"]", "duration"},
		{"$.phases[0].arrivalRate", "phases.0.arrivalRate"},
		{"$[0]", "0"},
		{"stderr", "stderr"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := convertToGjsonPath(tt.path); got != tt.expected {
				t.Errorf("convertToGjsonPath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}
