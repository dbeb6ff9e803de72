// internal/catalog/catalog_test.go
package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validCatalog = `{
  "synthesizer": "synth",
  "models": [
    {
      "key": "synth",
      "displayName": "Synth",
      "capability": "text-generation",
      "alwaysActive": true,
      "options": {"url": "http://localhost:11434", "model": "llama3.1:8b"}
    },
    {
      "key": "mood",
      "displayName": "Mood Meter",
      "capability": "sentiment",
      "active": true,
      "thinkingDelaySeconds": 2.5
    }
  ]
}`

// TestParseValidCatalog verifies a well-formed catalog decodes with its
// declared fields intact.
func TestParseValidCatalog(t *testing.T) {
	cat, err := Parse([]byte(validCatalog))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if cat.Synthesizer != "synth" {
		t.Errorf("Expected synthesizer synth, got %q", cat.Synthesizer)
	}
	if len(cat.Models) != 2 {
		t.Fatalf("Expected 2 models, got %d", len(cat.Models))
	}
	if cat.Models[1].ThinkingDelaySeconds != 2.5 {
		t.Errorf("Expected thinking delay 2.5, got %g", cat.Models[1].ThinkingDelaySeconds)
	}
	if !cat.Models[0].AlwaysActive {
		t.Errorf("Expected synth to be always active")
	}
}

// TestParseRejectsSchemaViolations verifies schema validation catches
// missing and malformed fields with the field named in the error.
func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"missing synthesizer", `{"models":[{"key":"a","displayName":"A","capability":"sentiment"}]}`},
		{"empty models", `{"synthesizer":"a","models":[]}`},
		{"missing key", `{"synthesizer":"a","models":[{"displayName":"A","capability":"sentiment"}]}`},
		{"bad capability", `{"synthesizer":"a","models":[{"key":"a","displayName":"A","capability":"vision"}]}`},
		{"delay too large", `{"synthesizer":"a","models":[{"key":"a","displayName":"A","capability":"text-generation","thinkingDelaySeconds":11}]}`},
	}
	for _, tc := range cases {
		if _, err := Parse([]byte(tc.json)); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

// TestParseRejectsDuplicateKeys verifies duplicate model keys fail even when
// the schema is satisfied.
func TestParseRejectsDuplicateKeys(t *testing.T) {
	doc := `{
  "synthesizer": "a",
  "models": [
    {"key": "a", "displayName": "A", "capability": "text-generation", "alwaysActive": true},
    {"key": "a", "displayName": "A again", "capability": "sentiment"}
  ]
}`
	_, err := Parse([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("Expected duplicate-key error, got %v", err)
	}
}

// TestParseValidatesSynthesizer verifies the designated synthesizer must be
// a declared, always-active, text-generation model.
func TestParseValidatesSynthesizer(t *testing.T) {
	unknown := `{"synthesizer":"ghost","models":[{"key":"a","displayName":"A","capability":"text-generation","alwaysActive":true}]}`
	if _, err := Parse([]byte(unknown)); err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Errorf("Expected error naming unknown synthesizer, got %v", err)
	}

	wrongKind := `{"synthesizer":"a","models":[{"key":"a","displayName":"A","capability":"sentiment","alwaysActive":true}]}`
	if _, err := Parse([]byte(wrongKind)); err == nil || !strings.Contains(err.Error(), "text-generation") {
		t.Errorf("Expected capability error, got %v", err)
	}

	notAlways := `{"synthesizer":"a","models":[{"key":"a","displayName":"A","capability":"text-generation"}]}`
	if _, err := Parse([]byte(notAlways)); err == nil || !strings.Contains(err.Error(), "always active") {
		t.Errorf("Expected always-active error, got %v", err)
	}
}

// TestLoadFromFile verifies loading from disk and the missing-file error.
func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	if err := os.WriteFile(path, []byte(validCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(cat.Models) != 2 {
		t.Errorf("Expected 2 models, got %d", len(cat.Models))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Errorf("Expected error for missing catalog file")
	}
}
