// Package config loads and saves the settings shared by automatonctl and
// automatonserver: the simulator's default run speed, the storage backend
// to use, and where automatonctl should look for a readline history file.
//
// Grounded on internal/tqw/marshaling.go's toml.Unmarshal-of-file-bytes
// pattern for the format, and on aretext's app/config.go for resolving the
// config file's location via xdg.ConfigFile rather than a hardcoded
// dotfile path.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// appName is the directory name used under the XDG config/data/state home
// directories.
const appName = "finautomata"

// configRelPath is the file xdg.ConfigFile resolves relative to the user's
// XDG config home (or its platform equivalent).
const configRelPath = appName + "/config.toml"

// StorageBackend selects which internal/store implementation
// automatonserver constructs at startup.
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
)

// Config is the full set of user-editable settings, serialized as TOML.
type Config struct {
	// DefaultSpeed is the simulator run speed (§4.6, 1-10) used when a
	// session doesn't explicitly set one.
	DefaultSpeed int `toml:"default_speed"`

	// Storage selects the automatonserver persistence backend.
	Storage StorageBackend `toml:"storage"`

	// SQLitePath is the database file used when Storage is StorageSQLite.
	// Relative paths are resolved against the XDG data directory.
	SQLitePath string `toml:"sqlite_path"`

	// HistoryFile is where automatonctl's readline instance persists
	// command history between sessions. Empty disables history.
	HistoryFile string `toml:"history_file"`

	// ServerAddr is the listen address automatonserver binds to.
	ServerAddr string `toml:"server_addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DefaultSpeed: 5,
		Storage:      StorageMemory,
		SQLitePath:   "automata.db",
		HistoryFile:  "history",
		ServerAddr:   ":8080",
	}
}

// Path resolves the on-disk location of the config file, creating any
// missing parent directories along the XDG config path.
func Path() (string, error) {
	path, err := xdg.ConfigFile(configRelPath)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}
	return path, nil
}

// Load reads and parses the config file at Path, falling back to Default
// with no error if the file doesn't exist yet.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to Path as TOML, creating parent directories as needed.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing config %q: %w", path, err)
	}
	return nil
}

// HistoryPath resolves HistoryFile against the XDG state directory, the
// same way Path resolves the config file itself. Empty HistoryFile (history
// disabled) returns "".
func (c Config) HistoryPath() (string, error) {
	if c.HistoryFile == "" {
		return "", nil
	}
	path, err := xdg.StateFile(appName + "/" + c.HistoryFile)
	if err != nil {
		return "", fmt.Errorf("resolving history file path: %w", err)
	}
	return path, nil
}

// DataPath resolves a relative path against the XDG data directory; used
// for SQLitePath when it isn't already absolute.
func DataPath(relPath string) (string, error) {
	path, err := xdg.DataFile(appName + "/" + relPath)
	if err != nil {
		return "", fmt.Errorf("resolving data path: %w", err)
	}
	return path, nil
}
