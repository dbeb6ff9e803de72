// internal/router/router_test.go
package router

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chorus-cli/chorus/internal/backends"
	"github.com/chorus-cli/chorus/internal/censor"
	"github.com/chorus-cli/chorus/internal/history"
	"github.com/chorus-cli/chorus/internal/registry"
	"github.com/chorus-cli/chorus/internal/securestore"
	"github.com/chorus-cli/chorus/internal/synthesis"
)

const testMasterKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

// stubText is a text-generation backend with a fixed reply that records its
// invocations.
type stubText struct {
	reply  string
	err    error
	inputs []string
}

func (s *stubText) Invoke(_ context.Context, input string, _ backends.CallParams) (string, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// stubScorer is a sentiment backend with a fixed score.
type stubScorer struct {
	score backends.Score
	err   error
}

func (s *stubScorer) Invoke(ctx context.Context, input string, _ backends.CallParams) (string, error) {
	score, err := s.Score(ctx, input)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (confidence %.2f)", score.Label, score.Confidence), nil
}

func (s *stubScorer) Score(_ context.Context, _ string) (backends.Score, error) {
	return s.score, s.err
}

type harness struct {
	router   *Router
	registry *registry.Registry
	store    *securestore.Store
	history  *history.Ring
	synth    *stubText
	scribe   *stubText
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	synthStub := &stubText{reply: "unified answer"}
	scribeStub := &stubText{reply: "transcribed words"}
	moodStub := &stubScorer{score: backends.Score{Label: "negative", Confidence: 0.90}}

	stubs := map[string]backends.Backend{
		"synth":  synthStub,
		"writer": &stubText{reply: "writer text"},
		"mood":   moodStub,
		"scribe": scribeStub,
	}

	reg := registry.New()
	entries := []*registry.Entry{
		{Key: "synth", DisplayName: "Synth", Capability: backends.CapabilityTextGeneration, AlwaysActive: true},
		{Key: "writer", DisplayName: "Writer", Capability: backends.CapabilityTextGeneration, Active: true},
		{Key: "mood", DisplayName: "Mood Meter", Capability: backends.CapabilitySentiment, Active: true},
		{Key: "scribe", DisplayName: "Scribe", Capability: backends.CapabilityTranscription, Active: true},
	}
	for _, e := range entries {
		e.Options = backends.Options{"stub": e.Key}
		if err := reg.Register(e); err != nil {
			t.Fatalf("Register(%q) failed: %v", e.Key, err)
		}
	}
	reg.LoadAll(func(_ backends.Capability, options backends.Options) (backends.Backend, error) {
		key, _ := options["stub"].(string)
		if stub, ok := stubs[key]; ok {
			return stub, nil
		}
		return nil, fmt.Errorf("no stub for %q", key)
	})

	dir := t.TempDir()
	store, err := securestore.New(filepath.Join(dir, "prefs.dat"), testMasterKey)
	if err != nil {
		t.Fatalf("securestore.New failed: %v", err)
	}
	hist := history.Load(filepath.Join(dir, "history.json"))

	engine := synthesis.New(reg, store, hist, censor.New('*'), "synth")
	engine.SetSleep(func(time.Duration) {})

	return &harness{
		router:   New(reg, store, hist, engine),
		registry: reg,
		store:    store,
		history:  hist,
		synth:    synthStub,
		scribe:   scribeStub,
	}
}

// TestDispatchRejectsEmptyInput verifies the uniform empty-input rejection
// before any classification.
func TestDispatchRejectsEmptyInput(t *testing.T) {
	h := newHarness(t)

	for _, input := range []string{"", "   ", "\n\t"} {
		got := h.router.Dispatch(context.Background(), input)
		if got != emptyInputMessage {
			t.Errorf("Dispatch(%q) = %q, want empty-input message", input, got)
		}
	}
	if len(h.synth.inputs) != 0 {
		t.Errorf("Empty input must not reach the synthesizer")
	}
}

// TestDispatchRemember verifies the memory-write route, including the
// case-insensitive prefix and preserved value casing.
func TestDispatchRemember(t *testing.T) {
	h := newHarness(t)

	got := h.router.Dispatch(context.Background(), "Remember that city is Paris")
	if !strings.Contains(got, "city") || !strings.Contains(got, "Paris") {
		t.Errorf("Dispatch() = %q, expected confirmation naming the fact", got)
	}
	if v := h.store.Preferences().CustomData["city"]; v != "Paris" {
		t.Errorf("Expected custom_data[city] = Paris, got %q", v)
	}
}

// TestDispatchRememberMalformed verifies malformed facts return a usage
// message and leave the store untouched.
func TestDispatchRememberMalformed(t *testing.T) {
	h := newHarness(t)

	got := h.router.Dispatch(context.Background(), "remember that nocolon")
	if !strings.Contains(got, "remember that <key> is <value>") {
		t.Errorf("Dispatch() = %q, expected usage message", got)
	}
	if len(h.store.Preferences().CustomData) != 0 {
		t.Errorf("Malformed remember must not modify custom data")
	}
}

// TestDispatchSentimentSkipsCensor verifies routing priority and that the
// sentiment route's output is not censorship-filtered.
func TestDispatchSentimentSkipsCensor(t *testing.T) {
	h := newHarness(t)
	if err := h.store.SetBannedWords([]string{"negative"}); err != nil {
		t.Fatalf("SetBannedWords failed: %v", err)
	}
	if err := h.store.SetCensorshipLevel(1); err != nil {
		t.Fatalf("SetCensorshipLevel failed: %v", err)
	}

	got := h.router.Dispatch(context.Background(), "sentiment: badword test")
	want := "Sentiment: negative (confidence 0.90)"
	if got != want {
		t.Errorf("Dispatch() = %q, want %q", got, want)
	}
	if len(h.synth.inputs) != 0 {
		t.Errorf("Sentiment input must not fall through to synthesis")
	}
}

// TestDispatchSentimentEmptyPayload verifies the route validates its payload.
func TestDispatchSentimentEmptyPayload(t *testing.T) {
	h := newHarness(t)

	got := h.router.Dispatch(context.Background(), "sentiment:   ")
	if !strings.Contains(got, "sentiment: <text>") {
		t.Errorf("Dispatch() = %q, expected usage message", got)
	}
}

// TestDispatchAudio verifies that audio paths route to the transcription
// model and the exchange is recorded in history.
func TestDispatchAudio(t *testing.T) {
	h := newHarness(t)

	got := h.router.Dispatch(context.Background(), "recordings/meeting.WAV")
	if got != "transcribed words" {
		t.Errorf("Dispatch() = %q, want transcript", got)
	}
	if len(h.scribe.inputs) != 1 || h.scribe.inputs[0] != "recordings/meeting.WAV" {
		t.Errorf("Expected transcriber to receive the full path, got %v", h.scribe.inputs)
	}
	if h.history.Len() != 2 {
		t.Errorf("Expected audio exchange recorded in history, got %d entries", h.history.Len())
	}
}

// TestDispatchActivationCommands verifies the registry-mutation routes and
// their user-facing error messages.
func TestDispatchActivationCommands(t *testing.T) {
	h := newHarness(t)

	got := h.router.Dispatch(context.Background(), "deactivate model writer")
	if !strings.Contains(got, `"writer"`) || !strings.Contains(got, "inactive") {
		t.Errorf("Dispatch() = %q, expected deactivation confirmation", got)
	}
	entry, _ := h.registry.Get("writer")
	if entry.Eligible() {
		t.Errorf("Expected writer ineligible after deactivation")
	}

	got = h.router.Dispatch(context.Background(), "deactivate model synth")
	if !strings.Contains(got, "always active") {
		t.Errorf("Dispatch() = %q, expected policy message", got)
	}

	got = h.router.Dispatch(context.Background(), "activate model nosuch")
	if !strings.Contains(got, `No model named "nosuch"`) {
		t.Errorf("Dispatch() = %q, expected not-found message", got)
	}

	got = h.router.Dispatch(context.Background(), "activate model")
	if !strings.Contains(got, "Usage:") {
		t.Errorf("Dispatch() = %q, expected usage message for missing argument", got)
	}
}

// TestDispatchThinkingCommands verifies delay and toggle routes, including
// the out-of-range message.
func TestDispatchThinkingCommands(t *testing.T) {
	h := newHarness(t)

	got := h.router.Dispatch(context.Background(), "set thinking_delay writer 3")
	if !strings.Contains(got, "3 seconds") {
		t.Errorf("Dispatch() = %q, expected confirmation", got)
	}
	entry, _ := h.registry.Get("writer")
	if entry.ThinkingDelay != 3 {
		t.Errorf("Expected delay 3, got %g", entry.ThinkingDelay)
	}

	got = h.router.Dispatch(context.Background(), "set thinking_delay writer 99")
	if !strings.Contains(got, "between 0 and 10") {
		t.Errorf("Dispatch() = %q, expected range message", got)
	}
	if entry.ThinkingDelay != 3 {
		t.Errorf("Rejected update must leave delay unchanged, got %g", entry.ThinkingDelay)
	}

	got = h.router.Dispatch(context.Background(), "set thinking_delay writer soon")
	if !strings.Contains(got, "not a number") {
		t.Errorf("Dispatch() = %q, expected parse message", got)
	}

	got = h.router.Dispatch(context.Background(), "toggle thinking writer")
	if !strings.Contains(got, "think before responding") {
		t.Errorf("Dispatch() = %q, expected thinking-enabled message", got)
	}
	got = h.router.Dispatch(context.Background(), "toggle thinking writer")
	if !strings.Contains(got, "respond immediately") {
		t.Errorf("Dispatch() = %q, expected thinking-disabled message", got)
	}
}

// TestDispatchCensorshipCommand verifies the censorship route persists the
// level.
func TestDispatchCensorshipCommand(t *testing.T) {
	h := newHarness(t)

	got := h.router.Dispatch(context.Background(), "set censorship 2")
	if !strings.Contains(got, "level set to 2") {
		t.Errorf("Dispatch() = %q, expected confirmation", got)
	}
	if h.store.CensorshipLevel() != 2 {
		t.Errorf("Expected persisted level 2, got %d", h.store.CensorshipLevel())
	}

	got = h.router.Dispatch(context.Background(), "set censorship 0")
	if !strings.Contains(got, "disabled") {
		t.Errorf("Dispatch() = %q, expected disabled message", got)
	}

	got = h.router.Dispatch(context.Background(), "set censorship high")
	if !strings.Contains(got, "not a censorship level") {
		t.Errorf("Dispatch() = %q, expected parse message", got)
	}
}

// TestDispatchTemperatureCommand verifies argument validation on the
// temperature route.
func TestDispatchTemperatureCommand(t *testing.T) {
	h := newHarness(t)

	got := h.router.Dispatch(context.Background(), "set temperature 0.4")
	if !strings.Contains(got, "0.4") {
		t.Errorf("Dispatch() = %q, expected confirmation", got)
	}
	got = h.router.Dispatch(context.Background(), "set temperature warm")
	if !strings.Contains(got, "not a number") {
		t.Errorf("Dispatch() = %q, expected parse message", got)
	}
}

// TestDispatchDefaultsToSynthesis verifies unmatched input reaches the
// synthesizer.
func TestDispatchDefaultsToSynthesis(t *testing.T) {
	h := newHarness(t)

	got := h.router.Dispatch(context.Background(), "what is the weather like?")
	if got != "unified answer" {
		t.Errorf("Dispatch() = %q, want synthesized answer", got)
	}
	if len(h.synth.inputs) != 2 {
		t.Errorf("Expected synthesizer invoked for aggregate and synthesis, got %d calls", len(h.synth.inputs))
	}
}
