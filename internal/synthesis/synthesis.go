// internal/synthesis/synthesis.go

// Package synthesis implements the default answer path: fan the query out to
// every eligible model, aggregate their contributions, and have the
// designated synthesizer model produce one unified answer.
package synthesis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chorus-cli/chorus/internal/backends"
	"github.com/chorus-cli/chorus/internal/censor"
	"github.com/chorus-cli/chorus/internal/history"
	"github.com/chorus-cli/chorus/internal/logging"
	"github.com/chorus-cli/chorus/internal/registry"
	"github.com/chorus-cli/chorus/internal/securestore"
)

const (
	// responsePlaceholder stands in for a model whose invocation failed. One
	// model's failure never aborts the aggregate.
	responsePlaceholder = "an error occurred"

	promptHeader = "You are given responses from several independent models to the same user query. " +
		"Combine them into a single, coherent answer. Resolve disagreements in favor of the " +
		"majority view and do not mention the individual models."

	promptFooter = "Unified answer:"
)

// Engine runs the default synthesis path. It is not safe for concurrent use;
// the owning session serializes calls.
type Engine struct {
	registry       *registry.Registry
	store          *securestore.Store
	history        *history.Ring
	filter         censor.Filter
	synthesizerKey string

	// sleep implements the simulated deliberation delay. Tests stub it out.
	sleep func(time.Duration)

	temperature *float64
}

// New constructs an engine over the given stores. synthesizerKey must name
// an always-active text-generation entry in the registry.
func New(reg *registry.Registry, store *securestore.Store, hist *history.Ring, filter censor.Filter, synthesizerKey string) *Engine {
	return &Engine{
		registry:       reg,
		store:          store,
		history:        hist,
		filter:         filter,
		synthesizerKey: synthesizerKey,
		sleep:          time.Sleep,
	}
}

// SetSleep replaces the deliberation delay implementation.
func (e *Engine) SetSleep(sleep func(time.Duration)) {
	if sleep != nil {
		e.sleep = sleep
	}
}

// SetTemperature sets a process-wide sampling temperature override applied
// to subsequent text-generation calls.
func (e *Engine) SetTemperature(value float64) {
	e.temperature = &value
}

// Answer runs the full default path for a raw user query and returns the
// censored unified answer. Per-model failures are contained; only a failure
// of the synthesizer invocation itself surfaces, as a generic system-error
// message rather than an error value.
func (e *Engine) Answer(ctx context.Context, input string) string {
	var aggregate strings.Builder
	for _, entry := range e.registry.Entries() {
		if entry.Capability == backends.CapabilityTranscription {
			continue
		}
		if !entry.Eligible() {
			continue
		}
		text, err := e.invoke(ctx, entry, input)
		if err != nil {
			logging.LogEvent("synthesis: model %q failed: %v", entry.Key, err)
			text = responsePlaceholder
		}
		fmt.Fprintf(&aggregate, "%s response: %s\n", entry.DisplayName, text)
	}

	prompt := promptHeader + "\n\n" + aggregate.String() + "\n" + promptFooter

	synthesizer, err := e.registry.Get(e.synthesizerKey)
	if err != nil {
		return fmt.Sprintf("A system error occurred while synthesizing the response: %v", err)
	}
	answer, err := e.invoke(ctx, synthesizer, prompt)
	if err != nil {
		logging.LogEvent("synthesis: synthesizer %q failed: %v", e.synthesizerKey, err)
		return fmt.Sprintf("A system error occurred while synthesizing the response: %v", err)
	}

	prefs := e.store.Preferences()
	filtered := e.filter.Apply(answer, prefs.BannedWords, prefs.CensorshipLevel)

	e.history.Append(prompt, filtered)
	if err := e.history.Save(); err != nil {
		logging.LogEvent("synthesis: could not persist history: %v", err)
	}
	return filtered
}

// invoke calls one model, applying the simulated deliberation delay before
// text-generation calls when the entry's thinking flag is set.
func (e *Engine) invoke(ctx context.Context, entry *registry.Entry, input string) (string, error) {
	backend := entry.Backend()
	if backend == nil {
		return "", fmt.Errorf("model %q has no loaded backend", entry.Key)
	}
	if entry.Capability == backends.CapabilityTextGeneration && entry.ThinkingEnabled && entry.ThinkingDelay > 0 {
		e.sleep(time.Duration(entry.ThinkingDelay * float64(time.Second)))
	}
	return backend.Invoke(ctx, input, backends.CallParams{Temperature: e.temperature})
}
