// internal/backends/backend.go

// Package backends defines the boundary with the inference implementations.
// Each backend wraps one capability (text generation, sentiment scoring, or
// audio transcription) behind a common invocation contract, so the
// orchestration core never touches provider-specific wire formats.
package backends

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Capability identifies the kind of inference a backend performs.
type Capability string

const (
	// CapabilityTextGeneration produces free text from a prompt.
	CapabilityTextGeneration Capability = "text-generation"
	// CapabilitySentiment scores text and returns a label/confidence pair.
	CapabilitySentiment Capability = "sentiment"
	// CapabilityTranscription converts an audio file into text.
	CapabilityTranscription Capability = "audio-transcription"
)

// ParseCapability normalizes a capability string from the catalog.
func ParseCapability(s string) (Capability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text-generation", "text":
		return CapabilityTextGeneration, nil
	case "sentiment":
		return CapabilitySentiment, nil
	case "audio-transcription", "transcription":
		return CapabilityTranscription, nil
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// CallParams carries per-call overrides passed through to the backend.
type CallParams struct {
	// Temperature overrides the configured sampling temperature when non-nil.
	Temperature *float64
}

// Backend is the invocation contract every inference implementation satisfies.
// For text generation the input is a prompt; for transcription it is a file
// path; for sentiment it is the text to score, and the returned string is the
// formatted label/confidence pair (see Score for the structured form).
type Backend interface {
	Invoke(ctx context.Context, input string, params CallParams) (string, error)
}

// Score is the structured result of a sentiment backend.
type Score struct {
	Label      string
	Confidence float64
}

// Scorer is implemented by sentiment backends that can return the
// structured label/confidence pair alongside the textual rendering.
type Scorer interface {
	Score(ctx context.Context, text string) (Score, error)
}

// Options are the backend-specific parameters from the model catalog, passed
// through uninterpreted by the registry.
type Options map[string]any

func (o Options) stringValue(key string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func (o Options) floatValue(key string) (float64, bool) {
	switch v := o[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// New constructs the backend for a capability from its catalog options.
// HTTP-based backends share the supplied client and timeout.
func New(capability Capability, options Options, client *http.Client, timeout time.Duration) (Backend, error) {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	switch capability {
	case CapabilityTextGeneration:
		return newTextGenerator(options, client, timeout)
	case CapabilitySentiment:
		return newSentimentScorer(options)
	case CapabilityTranscription:
		return newTranscriber(options, client, timeout)
	}
	return nil, fmt.Errorf("no backend registered for capability %q", capability)
}
