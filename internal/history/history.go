// internal/history/history.go

// Package history keeps a bounded log of recent exchanges, persisted to disk
// as a plain JSON array.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chorus-cli/chorus/internal/logging"
)

// Capacity is the maximum number of retained entries. Older entries are
// evicted first.
const Capacity = 20

// Ring is the bounded dialogue log. It is not safe for concurrent use; the
// owning session serializes access.
type Ring struct {
	path    string
	entries []string
}

// Load reads the history file at path. A missing file yields an empty ring,
// not an error; a malformed file is logged and treated the same way.
func Load(path string) *Ring {
	ring := &Ring{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.LogEvent("history: could not read %q: %v", path, err)
		}
		return ring
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.LogEvent("history: could not parse %q, starting empty: %v", path, err)
		return ring
	}
	if len(entries) > Capacity {
		entries = entries[len(entries)-Capacity:]
	}
	ring.entries = entries
	return ring
}

// Append adds entries in order, evicting the oldest once Capacity is reached.
func (r *Ring) Append(entries ...string) {
	for _, entry := range entries {
		r.entries = append(r.entries, entry)
		if len(r.entries) > Capacity {
			r.entries = r.entries[1:]
		}
	}
}

// Entries returns the retained entries, oldest first.
func (r *Ring) Entries() []string {
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of retained entries.
func (r *Ring) Len() int {
	return len(r.entries)
}

// Save writes the ring to its backing file as a JSON array.
func (r *Ring) Save() error {
	if r.path == "" {
		return nil
	}
	if dir := filepath.Dir(r.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("history: %w", err)
		}
	}
	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}
