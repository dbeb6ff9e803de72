// internal/router/router.go

// Package router classifies free-form input into a structured operation and
// dispatches it. Classification is an ordered list of (matcher, handler)
// pairs evaluated first-match-wins; anything unmatched falls through to
// default synthesis. Handlers always return a user-facing string and never
// propagate errors to the caller.
package router

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chorus-cli/chorus/internal/backends"
	"github.com/chorus-cli/chorus/internal/history"
	"github.com/chorus-cli/chorus/internal/logging"
	"github.com/chorus-cli/chorus/internal/registry"
	"github.com/chorus-cli/chorus/internal/securestore"
	"github.com/chorus-cli/chorus/internal/synthesis"
)

const (
	rememberPrefix  = "remember that"
	sentimentPrefix = "sentiment:"

	emptyInputMessage = "Please enter a command or question."
)

// audioExtensions are the file suffixes that route input to transcription.
var audioExtensions = []string{".wav", ".mp3"}

// route pairs a classification predicate with its handler. Matching is done
// on the case-folded input; handlers receive both the original trimmed input
// and its case-folded form.
type route struct {
	name  string
	match func(lower string) bool
	run   func(ctx context.Context, input, lower string) string
}

// Router owns the classification cascade and the collaborators its handlers
// mutate.
type Router struct {
	registry *registry.Registry
	store    *securestore.Store
	history  *history.Ring
	engine   *synthesis.Engine
	routes   []route
}

// New builds a router over the given collaborators.
func New(reg *registry.Registry, store *securestore.Store, hist *history.Ring, engine *synthesis.Engine) *Router {
	r := &Router{
		registry: reg,
		store:    store,
		history:  hist,
		engine:   engine,
	}
	r.routes = []route{
		{
			name:  "remember",
			match: func(lower string) bool { return strings.HasPrefix(lower, rememberPrefix) },
			run:   r.handleRemember,
		},
		{
			name: "audio",
			match: func(lower string) bool {
				for _, ext := range audioExtensions {
					if strings.HasSuffix(lower, ext) {
						return true
					}
				}
				return false
			},
			run: r.handleAudio,
		},
		{
			name:  "sentiment",
			match: func(lower string) bool { return strings.HasPrefix(lower, sentimentPrefix) },
			run:   r.handleSentiment,
		},
		{
			name:  "activate model",
			match: prefixMatcher("activate model"),
			run:   r.handleActivate,
		},
		{
			name:  "deactivate model",
			match: prefixMatcher("deactivate model"),
			run:   r.handleDeactivate,
		},
		{
			name:  "set temperature",
			match: prefixMatcher("set temperature"),
			run:   r.handleSetTemperature,
		},
		{
			name:  "set thinking_delay",
			match: prefixMatcher("set thinking_delay"),
			run:   r.handleSetThinkingDelay,
		},
		{
			name:  "toggle thinking",
			match: prefixMatcher("toggle thinking"),
			run:   r.handleToggleThinking,
		},
		{
			name:  "set censorship",
			match: prefixMatcher("set censorship"),
			run:   r.handleSetCensorship,
		},
	}
	return r
}

func prefixMatcher(prefix string) func(string) bool {
	return func(lower string) bool { return strings.HasPrefix(lower, prefix) }
}

// Dispatch classifies raw input and runs the matching handler. Empty input
// is rejected uniformly before classification.
func (r *Router) Dispatch(ctx context.Context, raw string) string {
	input := strings.TrimSpace(raw)
	if input == "" {
		return emptyInputMessage
	}
	lower := strings.ToLower(input)

	for _, rt := range r.routes {
		if rt.match(lower) {
			logging.LogEvent("router: input classified as %q", rt.name)
			return rt.run(ctx, input, lower)
		}
	}
	return r.engine.Answer(ctx, input)
}

// handleRemember persists a "<key> is <value>" fact from the original-case
// input, so remembered values keep their casing.
func (r *Router) handleRemember(_ context.Context, input, _ string) string {
	fact := strings.TrimSpace(input[len(rememberPrefix):])
	key, value, err := r.store.Remember(fact)
	if err != nil {
		if errors.Is(err, securestore.ErrFormat) {
			return `I couldn't parse that. Say "remember that <key> is <value>".`
		}
		logging.LogEvent("router: remember failed: %v", err)
		return "I couldn't save that fact right now."
	}
	return fmt.Sprintf("Okay, I'll remember that %s is %s.", key, value)
}

// handleAudio routes the full input as a file path to the first eligible
// transcription model. The transcript is recorded but not censored.
func (r *Router) handleAudio(ctx context.Context, input, _ string) string {
	entry := r.firstEligible(backends.CapabilityTranscription)
	if entry == nil {
		return "No transcription model is active."
	}
	transcript, err := entry.Backend().Invoke(ctx, input, backends.CallParams{})
	if err != nil {
		logging.LogEvent("router: transcription via %q failed: %v", entry.Key, err)
		return fmt.Sprintf("Transcription failed: %v", err)
	}
	r.record(input, transcript)
	return transcript
}

// handleSentiment routes the payload after "sentiment:" to the first
// eligible sentiment model. The result is recorded but not censored.
func (r *Router) handleSentiment(ctx context.Context, input, _ string) string {
	payload := strings.TrimSpace(input[len(sentimentPrefix):])
	if payload == "" {
		return `Nothing to analyze. Say "sentiment: <text>".`
	}
	entry := r.firstEligible(backends.CapabilitySentiment)
	if entry == nil {
		return "No sentiment model is active."
	}

	var result string
	if scorer, ok := entry.Backend().(backends.Scorer); ok {
		score, err := scorer.Score(ctx, payload)
		if err != nil {
			logging.LogEvent("router: sentiment via %q failed: %v", entry.Key, err)
			return fmt.Sprintf("Sentiment analysis failed: %v", err)
		}
		result = fmt.Sprintf("Sentiment: %s (confidence %.2f)", score.Label, score.Confidence)
	} else {
		text, err := entry.Backend().Invoke(ctx, payload, backends.CallParams{})
		if err != nil {
			logging.LogEvent("router: sentiment via %q failed: %v", entry.Key, err)
			return fmt.Sprintf("Sentiment analysis failed: %v", err)
		}
		result = "Sentiment: " + text
	}
	r.record(input, result)
	return result
}

func (r *Router) handleActivate(_ context.Context, _, lower string) string {
	key, msg := singleArgument(lower, 2, `Usage: activate model <key>`)
	if msg != "" {
		return msg
	}
	_, err := r.registry.Activate(key)
	if err != nil {
		return registryErrorMessage(key, err)
	}
	return fmt.Sprintf("Model %q is now active.", key)
}

func (r *Router) handleDeactivate(_ context.Context, _, lower string) string {
	key, msg := singleArgument(lower, 2, `Usage: deactivate model <key>`)
	if msg != "" {
		return msg
	}
	_, err := r.registry.Deactivate(key)
	if err != nil {
		return registryErrorMessage(key, err)
	}
	return fmt.Sprintf("Model %q is now inactive.", key)
}

func (r *Router) handleSetTemperature(_ context.Context, _, lower string) string {
	fields := strings.Fields(lower)
	if len(fields) != 3 {
		return `Usage: set temperature <value>`
	}
	value, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return fmt.Sprintf("%q is not a number.", fields[2])
	}
	r.engine.SetTemperature(value)
	return fmt.Sprintf("Temperature set to %g for subsequent generations.", value)
}

func (r *Router) handleSetThinkingDelay(_ context.Context, _, lower string) string {
	fields := strings.Fields(lower)
	if len(fields) != 4 {
		return `Usage: set thinking_delay <model> <seconds>`
	}
	key := fields[2]
	seconds, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return fmt.Sprintf("%q is not a number of seconds.", fields[3])
	}
	if err := r.registry.SetThinkingDelay(key, seconds); err != nil {
		return registryErrorMessage(key, err)
	}
	return fmt.Sprintf("Thinking delay for %q set to %g seconds.", key, seconds)
}

func (r *Router) handleToggleThinking(_ context.Context, _, lower string) string {
	key, msg := singleArgument(lower, 2, `Usage: toggle thinking <model>`)
	if msg != "" {
		return msg
	}
	enabled, err := r.registry.ToggleThinking(key)
	if err != nil {
		return registryErrorMessage(key, err)
	}
	if enabled {
		return fmt.Sprintf("Model %q will now think before responding.", key)
	}
	return fmt.Sprintf("Model %q will respond immediately.", key)
}

func (r *Router) handleSetCensorship(_ context.Context, _, lower string) string {
	fields := strings.Fields(lower)
	if len(fields) != 3 {
		return `Usage: set censorship <level>`
	}
	level, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Sprintf("%q is not a censorship level.", fields[2])
	}
	if err := r.store.SetCensorshipLevel(level); err != nil {
		logging.LogEvent("router: could not persist censorship level: %v", err)
		return "Could not save the censorship level."
	}
	if level <= 0 {
		return "Censorship disabled."
	}
	return fmt.Sprintf("Censorship level set to %d.", level)
}

// singleArgument extracts the one argument following a two-word command.
func singleArgument(lower string, commandWords int, usage string) (string, string) {
	fields := strings.Fields(lower)
	if len(fields) != commandWords+1 {
		return "", usage
	}
	return fields[commandWords], ""
}

func registryErrorMessage(key string, err error) string {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return fmt.Sprintf("No model named %q is registered.", key)
	case errors.Is(err, registry.ErrPolicyViolation):
		return fmt.Sprintf("Model %q is always active and cannot be changed.", key)
	case errors.Is(err, registry.ErrOutOfRange):
		return fmt.Sprintf("Thinking delay must be between %d and %d seconds.", registry.MinThinkingDelay, registry.MaxThinkingDelay)
	default:
		logging.LogEvent("router: registry operation failed: %v", err)
		return "That command failed unexpectedly."
	}
}

func (r *Router) firstEligible(capability backends.Capability) *registry.Entry {
	for _, entry := range r.registry.Entries() {
		if entry.Capability == capability && entry.Eligible() && entry.Backend() != nil {
			return entry
		}
	}
	return nil
}

// record appends an exchange to the dialogue history and persists it.
func (r *Router) record(input, output string) {
	r.history.Append(input, output)
	if err := r.history.Save(); err != nil {
		logging.LogEvent("router: could not persist history: %v", err)
	}
}
