// internal/session/session.go

// Package session wires the orchestrator together: catalog, registry,
// encrypted preference store, dialogue history, censor, synthesizer, and
// router, owned by a single Session object. Callers interact with shared
// mutable state only through Session methods; a single mutex serializes
// access so concurrent front ends stay safe.
package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/chorus-cli/chorus/internal/appconfig"
	"github.com/chorus-cli/chorus/internal/backends"
	"github.com/chorus-cli/chorus/internal/catalog"
	"github.com/chorus-cli/chorus/internal/censor"
	"github.com/chorus-cli/chorus/internal/history"
	"github.com/chorus-cli/chorus/internal/registry"
	"github.com/chorus-cli/chorus/internal/router"
	"github.com/chorus-cli/chorus/internal/securestore"
	"github.com/chorus-cli/chorus/internal/synthesis"
)

// Session owns the orchestration state for one process.
type Session struct {
	mu       sync.Mutex
	registry *registry.Registry
	store    *securestore.Store
	history  *history.Ring
	engine   *synthesis.Engine
	router   *router.Router
}

// New builds a session from the application config and the hex-encoded
// master key. The catalog is loaded and validated, every declared model is
// registered and bound to its backend (load failures degrade the model and
// continue), and persisted preferences and history are restored.
func New(cfg *appconfig.Config, masterKeyHex string) (*Session, error) {
	cat, err := catalog.Load(cfg.CatalogFilePath())
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	for _, m := range cat.Models {
		capability, err := backends.ParseCapability(m.Capability)
		if err != nil {
			return nil, err
		}
		entry := &registry.Entry{
			Key:             m.Key,
			DisplayName:     m.DisplayName,
			Capability:      capability,
			Options:         backends.Options(m.Options),
			AlwaysActive:    m.AlwaysActive,
			Active:          m.Active,
			ThinkingEnabled: m.ThinkingEnabled,
			ThinkingDelay:   m.ThinkingDelaySeconds,
		}
		if err := reg.Register(entry); err != nil {
			return nil, err
		}
	}

	timeout := cfg.RequestTimeout()
	client := &http.Client{Timeout: timeout}
	reg.LoadAll(func(capability backends.Capability, options backends.Options) (backends.Backend, error) {
		return backends.New(capability, options, client, timeout)
	})

	store, err := securestore.New(cfg.PreferencesPath(), masterKeyHex)
	if err != nil {
		return nil, err
	}
	hist := history.Load(cfg.HistoryPath())
	filter := censor.New(cfg.MaskRune())

	engine := synthesis.New(reg, store, hist, filter, cat.Synthesizer)
	return &Session{
		registry: reg,
		store:    store,
		history:  hist,
		engine:   engine,
		router:   router.New(reg, store, hist, engine),
	}, nil
}

// Handle routes one input through the command cascade and returns the
// user-facing response. One input produces one output; calls are serialized.
func (s *Session) Handle(ctx context.Context, input string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.router.Dispatch(ctx, input)
}

// Models returns the registry entries in registration order, for listings.
func (s *Session) Models() []*registry.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Entries()
}

// Engine exposes the synthesis engine, mainly so front ends and tests can
// stub the deliberation delay.
func (s *Session) Engine() *synthesis.Engine {
	return s.engine
}
