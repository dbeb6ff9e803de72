// internal/registry/registry.go

// Package registry holds the mutable table of inference models known to the
// orchestrator: their identity, capability, activation policy, and thinking
// policy. Entries are registered once at startup from the catalog and
// mutated only through the operations defined here.
package registry

import (
	"errors"
	"fmt"

	"github.com/chorus-cli/chorus/internal/backends"
	"github.com/chorus-cli/chorus/internal/logging"
)

var (
	// ErrNotFound reports an unknown model key.
	ErrNotFound = errors.New("model not found")
	// ErrPolicyViolation reports an attempt to change the activation of an
	// always-active model.
	ErrPolicyViolation = errors.New("model is always active and cannot be toggled")
	// ErrOutOfRange reports a thinking delay outside the accepted range.
	ErrOutOfRange = errors.New("thinking delay must be between 0 and 10 seconds")
	// ErrDuplicateKey reports a second registration under an existing key.
	ErrDuplicateKey = errors.New("model key already registered")
)

const (
	// MinThinkingDelay is the smallest accepted thinking delay in seconds.
	MinThinkingDelay = 0
	// MaxThinkingDelay is the largest accepted thinking delay in seconds.
	MaxThinkingDelay = 10
)

// Entry is one inference model in the registry.
type Entry struct {
	Key          string
	DisplayName  string
	Capability   backends.Capability
	Options      backends.Options
	AlwaysActive bool
	Active       bool

	ThinkingEnabled bool
	// ThinkingDelay is the simulated deliberation pause, in seconds.
	ThinkingDelay float64

	backend    backends.Backend
	loadFailed bool
}

// Eligible reports the entry's effective eligibility for invocation.
func (e *Entry) Eligible() bool {
	return e.AlwaysActive || e.Active
}

// Backend returns the bound inference handle, or nil if the entry has not
// been loaded or failed to load.
func (e *Entry) Backend() backends.Backend {
	return e.backend
}

// LoadFailed reports whether the entry was degraded by a failed load.
func (e *Entry) LoadFailed() bool {
	return e.loadFailed
}

// LoadFunc binds a runtime handle for a capability from its catalog options.
type LoadFunc func(capability backends.Capability, options backends.Options) (backends.Backend, error)

// Registry is the ordered model table. Iteration order is registration order.
type Registry struct {
	entries []*Entry
	byKey   map[string]*Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byKey: map[string]*Entry{}}
}

// Register inserts an entry. Keys must be unique; re-registration at runtime
// is not supported.
func (r *Registry) Register(entry *Entry) error {
	if entry == nil || entry.Key == "" {
		return fmt.Errorf("registry: entry must have a key")
	}
	if _, exists := r.byKey[entry.Key]; exists {
		return fmt.Errorf("registry: %q: %w", entry.Key, ErrDuplicateKey)
	}
	r.entries = append(r.entries, entry)
	r.byKey[entry.Key] = entry
	return nil
}

// LoadAll binds a runtime handle to every entry via load. A failed load
// degrades that entry permanently (it can never be eligible again without a
// restart) and loading continues with the remaining entries.
func (r *Registry) LoadAll(load LoadFunc) {
	for _, entry := range r.entries {
		backend, err := load(entry.Capability, entry.Options)
		if err != nil {
			logging.LogEvent("registry: model %q failed to load, deactivating: %v", entry.Key, err)
			entry.Active = false
			entry.AlwaysActive = false
			entry.loadFailed = true
			continue
		}
		entry.backend = backend
	}
}

// Get returns the entry for key, or ErrNotFound.
func (r *Registry) Get(key string) (*Entry, error) {
	entry, ok := r.byKey[key]
	if !ok {
		return nil, fmt.Errorf("registry: %q: %w", key, ErrNotFound)
	}
	return entry, nil
}

// Entries returns all entries in registration order. The returned slice must
// not be mutated.
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Activate marks the model active. Always-active models reject the request
// rather than silently ignoring it.
func (r *Registry) Activate(key string) (bool, error) {
	return r.setActive(key, true)
}

// Deactivate marks the model inactive, subject to the always-active policy.
func (r *Registry) Deactivate(key string) (bool, error) {
	return r.setActive(key, false)
}

func (r *Registry) setActive(key string, active bool) (bool, error) {
	entry, err := r.Get(key)
	if err != nil {
		return false, err
	}
	if entry.AlwaysActive {
		return entry.Eligible(), fmt.Errorf("registry: %q: %w", key, ErrPolicyViolation)
	}
	entry.Active = active
	return entry.Eligible(), nil
}

// SetThinkingDelay updates the simulated deliberation pause for a model.
// Values outside [MinThinkingDelay, MaxThinkingDelay] are rejected and leave
// the entry unchanged.
func (r *Registry) SetThinkingDelay(key string, seconds float64) error {
	if seconds < MinThinkingDelay || seconds > MaxThinkingDelay {
		return fmt.Errorf("registry: %g: %w", seconds, ErrOutOfRange)
	}
	entry, err := r.Get(key)
	if err != nil {
		return err
	}
	entry.ThinkingDelay = seconds
	return nil
}

// ToggleThinking flips the thinking flag and returns the new value.
func (r *Registry) ToggleThinking(key string) (bool, error) {
	entry, err := r.Get(key)
	if err != nil {
		return false, err
	}
	entry.ThinkingEnabled = !entry.ThinkingEnabled
	return entry.ThinkingEnabled, nil
}
