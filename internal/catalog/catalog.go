// internal/catalog/catalog.go

// Package catalog loads the declarative model catalog. The catalog replaces
// an inline table of model definitions: operators edit JSON, the core stays
// free of catalog churn. Files are validated against a JSON schema before
// any model is constructed.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Model is one declared inference backend.
type Model struct {
	Key                  string         `json:"key"`
	DisplayName          string         `json:"displayName"`
	Capability           string         `json:"capability"`
	AlwaysActive         bool           `json:"alwaysActive"`
	Active               bool           `json:"active"`
	ThinkingEnabled      bool           `json:"thinkingEnabled"`
	ThinkingDelaySeconds float64        `json:"thinkingDelaySeconds"`
	Options              map[string]any `json:"options"`
}

// Catalog is the full declared model set plus the designated synthesizer.
type Catalog struct {
	Synthesizer string  `json:"synthesizer"`
	Models      []Model `json:"models"`
}

// schemaDef mirrors the catalog shape. Validation failures are reported with
// the offending field path so catalog edits fail loudly at startup.
var schemaDef = map[string]any{
	"type":     "object",
	"required": []string{"synthesizer", "models"},
	"properties": map[string]any{
		"synthesizer": map[string]any{"type": "string", "minLength": 1},
		"models": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"key", "displayName", "capability"},
				"properties": map[string]any{
					"key":         map[string]any{"type": "string", "minLength": 1},
					"displayName": map[string]any{"type": "string", "minLength": 1},
					"capability": map[string]any{
						"type": "string",
						"enum": []string{"text-generation", "sentiment", "audio-transcription"},
					},
					"alwaysActive":    map[string]any{"type": "boolean"},
					"active":          map[string]any{"type": "boolean"},
					"thinkingEnabled": map[string]any{"type": "boolean"},
					"thinkingDelaySeconds": map[string]any{
						"type":    "number",
						"minimum": 0,
						"maximum": 10,
					},
					"options": map[string]any{"type": "object"},
				},
			},
		},
	},
}

// Load reads, validates, and decodes the catalog file at path.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: could not read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse validates and decodes raw catalog JSON.
func Parse(data []byte) (Catalog, error) {
	schemaLoader := gojsonschema.NewGoLoader(schemaDef)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: schema validation: %w", err)
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return Catalog{}, fmt.Errorf("catalog: invalid: %s", strings.Join(issues, "; "))
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("catalog: %w", err)
	}

	seen := map[string]struct{}{}
	var synthesizer *Model
	for i := range cat.Models {
		m := &cat.Models[i]
		if _, dup := seen[m.Key]; dup {
			return Catalog{}, fmt.Errorf("catalog: duplicate model key %q", m.Key)
		}
		seen[m.Key] = struct{}{}
		if m.Key == cat.Synthesizer {
			synthesizer = m
		}
	}
	if synthesizer == nil {
		return Catalog{}, fmt.Errorf("catalog: synthesizer %q is not a declared model", cat.Synthesizer)
	}
	if synthesizer.Capability != "text-generation" {
		return Catalog{}, fmt.Errorf("catalog: synthesizer %q must be a text-generation model", cat.Synthesizer)
	}
	if !synthesizer.AlwaysActive {
		return Catalog{}, fmt.Errorf("catalog: synthesizer %q must be always active", cat.Synthesizer)
	}
	return cat, nil
}
