// internal/securestore/store.go

// Package securestore persists user preferences and remembered facts as an
// encrypted JSON blob. A missing or unreadable store is masked as a first
// run: the caller always gets a usable preference set.
package securestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chorus-cli/chorus/internal/logging"
)

// ErrFormat reports malformed "remember that K is V" input.
var ErrFormat = errors.New(`expected "remember that <key> is <value>"`)

// factSeparator splits a remembered fact into key and value. The first
// occurrence wins, so values may themselves contain " is ".
const factSeparator = " is "

// Preferences is the full persisted preference set.
type Preferences struct {
	FrequentlyUsed    []string          `json:"frequently_used"`
	PersonalInfo      map[string]string `json:"personal_info"`
	DataSavingEnabled bool              `json:"data_saving_enabled"`
	CustomData        map[string]string `json:"custom_data"`
	ReasoningEnabled  bool              `json:"reasoning_enabled"`
	BannedWords       []string          `json:"banned_words"`
	CensorshipLevel   int               `json:"censorship_level"`
}

// defaultPreferences returns the documented first-run preference set.
func defaultPreferences() Preferences {
	return Preferences{
		FrequentlyUsed:   []string{},
		PersonalInfo:     map[string]string{},
		CustomData:       map[string]string{},
		ReasoningEnabled: true,
		BannedWords:      []string{},
		CensorshipLevel:  0,
	}
}

// Store owns the encrypted preference file and the in-memory preference set.
// Every mutation persists immediately.
type Store struct {
	path  string
	box   *cipherBox
	prefs Preferences
}

// New creates a store backed by the file at path, encrypted with the
// hex-encoded master key. The key is required; its absence is a startup
// failure, not a degraded mode.
func New(path, masterKeyHex string) (*Store, error) {
	box, err := newCipherBox(masterKeyHex)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, box: box}
	s.load()
	return s, nil
}

// load reads and decrypts the preference file. Absence is a first run;
// decrypt or parse failures are logged and also masked as a first run.
func (s *Store) load() {
	s.prefs = defaultPreferences()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.LogEvent("securestore: no preference file at %q, using defaults", s.path)
		} else {
			logging.LogEvent("securestore: could not read %q, using defaults: %v", s.path, err)
		}
		return
	}

	plaintext, err := s.box.decrypt(strings.TrimSpace(string(data)))
	if err != nil {
		logging.LogEvent("securestore: could not decrypt %q, using defaults: %v", s.path, err)
		return
	}

	var prefs Preferences
	if err := json.Unmarshal(plaintext, &prefs); err != nil {
		logging.LogEvent("securestore: could not parse %q, using defaults: %v", s.path, err)
		return
	}
	if prefs.PersonalInfo == nil {
		prefs.PersonalInfo = map[string]string{}
	}
	if prefs.CustomData == nil {
		prefs.CustomData = map[string]string{}
	}
	if prefs.FrequentlyUsed == nil {
		prefs.FrequentlyUsed = []string{}
	}
	if prefs.BannedWords == nil {
		prefs.BannedWords = []string{}
	}
	s.prefs = prefs
}

// Save serializes, encrypts, and overwrites the preference file.
func (s *Store) Save() error {
	plaintext, err := json.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("securestore: %w", err)
	}
	blob, err := s.box.encrypt(plaintext)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("securestore: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(blob), 0o600); err != nil {
		return fmt.Errorf("securestore: %w", err)
	}
	return nil
}

// Preferences returns a copy of the current preference set.
func (s *Store) Preferences() Preferences {
	prefs := s.prefs
	prefs.FrequentlyUsed = append([]string(nil), s.prefs.FrequentlyUsed...)
	prefs.BannedWords = append([]string(nil), s.prefs.BannedWords...)
	prefs.PersonalInfo = copyMap(s.prefs.PersonalInfo)
	prefs.CustomData = copyMap(s.prefs.CustomData)
	return prefs
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Remember parses a "<key> is <value>" fact, upserts it into custom data,
// and persists immediately. The store is left untouched on malformed input.
func (s *Store) Remember(fact string) (key, value string, err error) {
	idx := strings.Index(fact, factSeparator)
	if idx < 0 {
		return "", "", ErrFormat
	}
	key = strings.TrimSpace(fact[:idx])
	value = strings.TrimSpace(fact[idx+len(factSeparator):])
	if key == "" || value == "" {
		return "", "", ErrFormat
	}
	s.prefs.CustomData[key] = value
	if err := s.Save(); err != nil {
		return "", "", err
	}
	return key, value, nil
}

// SetCensorshipLevel updates the masking intensity and persists. Negative
// levels are clamped to zero (disabled).
func (s *Store) SetCensorshipLevel(level int) error {
	if level < 0 {
		level = 0
	}
	s.prefs.CensorshipLevel = level
	return s.Save()
}

// SetBannedWords replaces the banned word list and persists.
func (s *Store) SetBannedWords(words []string) error {
	s.prefs.BannedWords = append([]string(nil), words...)
	return s.Save()
}

// BannedWords returns the configured banned words.
func (s *Store) BannedWords() []string {
	return append([]string(nil), s.prefs.BannedWords...)
}

// CensorshipLevel returns the configured masking intensity.
func (s *Store) CensorshipLevel() int {
	return s.prefs.CensorshipLevel
}
