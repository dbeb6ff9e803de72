// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for backend HTTP requests.
	defaultRequestTimeout = 120 * time.Second
	// defaultDataDir holds the preference and history files when unset.
	defaultDataDir = "data"
	// defaultCatalogPath is the default model catalog location.
	defaultCatalogPath = "config/models.json"
)

// Config represents the top-level application configuration.
type Config struct {
	CatalogPath    string `json:"catalogPath,omitempty"`
	DataDir        string `json:"dataDir,omitempty"`
	LogFile        string `json:"logFile,omitempty"`
	Debug          bool   `json:"debug"`
	TimeoutSeconds int    `json:"timeout,omitempty"`
	MaskCharacter  string `json:"maskCharacter,omitempty"`
	ConfigPath     string `json:"-"`
}

// RequestTimeout returns the timeout duration for backend requests, falling
// back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "chorus.log"
}

// CatalogFilePath returns the model catalog path, applying a default if not set.
func (c Config) CatalogFilePath() string {
	if path := strings.TrimSpace(c.CatalogPath); path != "" {
		return path
	}
	return defaultCatalogPath
}

// PreferencesPath returns the encrypted preference file location.
func (c Config) PreferencesPath() string {
	return filepath.Join(c.dataDir(), "preferences.dat")
}

// HistoryPath returns the dialogue history file location.
func (c Config) HistoryPath() string {
	return filepath.Join(c.dataDir(), "history.json")
}

// MaskRune returns the censorship mask character, defaulting to '*'.
func (c Config) MaskRune() rune {
	trimmed := []rune(strings.TrimSpace(c.MaskCharacter))
	if len(trimmed) == 0 {
		return '*'
	}
	return trimmed[0]
}

func (c Config) dataDir() string {
	if dir := strings.TrimSpace(c.DataDir); dir != "" {
		return dir
	}
	return defaultDataDir
}

// Load reads the application configuration from the specified path. A missing
// file yields the default configuration rather than an error, so the binary
// runs usefully with nothing but a catalog present.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{ConfigPath: path}, nil
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %q: %w", path, err)
	}
	config.ConfigPath = path
	return config, nil
}
