// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const registrySchema = `
#Registry: {
	base_url:    string
	index_file?: string
	mirrors?: [...string]
}
`

type registryDoc struct {
	BaseURL   string   `json:"base_url"`
	IndexFile string   `json:"index_file"`
	Mirrors   []string `json:"mirrors"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	data := []byte(`
base_url:   "https://registry.example.com"
index_file: "index.js"
mirrors: ["https://mirror-a.example.com", "https://mirror-b.example.com"]
`)

	result, err := ParseAndDecode[registryDoc](
		[]byte(registrySchema), data, "#Registry",
		WithFilename("registry.cue"),
	)
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	if result.Value.BaseURL != "https://registry.example.com" {
		t.Errorf("BaseURL = %q", result.Value.BaseURL)
	}
	if result.Value.IndexFile != "index.js" {
		t.Errorf("IndexFile = %q", result.Value.IndexFile)
	}
	if len(result.Value.Mirrors) != 2 {
		t.Errorf("Mirrors = %v", result.Value.Mirrors)
	}
	if !result.Unified.Exists() {
		t.Error("Unified value should exist")
	}
}

func TestParseAndDecodeSchemaViolation(t *testing.T) {
	t.Parallel()

	data := []byte(`base_url: 42` + "\n")

	_, err := ParseAndDecode[registryDoc](
		[]byte(registrySchema), data, "#Registry",
		WithFilename("registry.cue"),
	)
	if err == nil {
		t.Fatal("expected error for wrong field type")
	}
	if !strings.Contains(err.Error(), "registry.cue") {
		t.Errorf("error %q should name the file", err)
	}
}

func TestParseAndDecodeSyntaxError(t *testing.T) {
	t.Parallel()

	data := []byte(`base_url: "unterminated`)

	_, err := ParseAndDecode[registryDoc]([]byte(registrySchema), data, "#Registry")
	if err == nil {
		t.Fatal("expected error for invalid CUE syntax")
	}
}

func TestParseAndDecodeConcrete(t *testing.T) {
	t.Parallel()

	// index_file stays unresolved, so concrete validation must fail.
	data := []byte(`
base_url:   "https://registry.example.com"
index_file: string
`)

	if _, err := ParseAndDecode[registryDoc]([]byte(registrySchema), data, "#Registry", WithConcrete()); err == nil {
		t.Fatal("expected error for non-concrete field")
	}
}

func TestParseAndDecodeFileSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte(`base_url: "https://registry.example.com"` + "\n")

	_, err := ParseAndDecode[registryDoc](
		[]byte(registrySchema), data, "#Registry",
		WithMaxFileSize(8),
	)
	if err == nil {
		t.Fatal("expected error for oversized input")
	}
}

func TestParseAndDecodeStringWrapper(t *testing.T) {
	t.Parallel()

	data := []byte(`base_url: "https://registry.example.com"` + "\n")

	result, err := ParseAndDecodeString[registryDoc](registrySchema, data, "#Registry")
	if err != nil {
		t.Fatalf("ParseAndDecodeString() error = %v", err)
	}
	if result.Value.BaseURL != "https://registry.example.com" {
		t.Errorf("BaseURL = %q", result.Value.BaseURL)
	}
}
