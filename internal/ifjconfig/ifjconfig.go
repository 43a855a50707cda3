// Package ifjconfig loads the compiler's optional TOML configuration file,
// the same way internal/tqw loads TunaQuest world data: Unmarshal into a
// plain struct, tagged per-field, no code generation.
package ifjconfig

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable the CLI and daemon share. Every field has a
// zero-value-safe default, so a missing config file is equivalent to an
// empty one.
type Config struct {
	// EmitComments precedes every emitted function with a '#'-led comment
	// naming it.
	EmitComments bool `toml:"emit_comments"`

	// MaxErrors is read from the file (default 1), but nothing in the CLI,
	// the REPL or the daemon consults it: every compilation stops at its
	// first diagnostic.
	MaxErrors int `toml:"max_errors"`

	// CachePath is the sqlite file internal/ifjcache opens for the compile
	// daemon's result cache. Empty disables the cache.
	CachePath string `toml:"cache_path"`

	// Daemon groups cmd/ifjd-only settings so a plain CLI config file never
	// needs to mention ports or auth.
	Daemon DaemonConfig `toml:"daemon"`
}

// DaemonConfig is the [daemon] table of the TOML config file.
type DaemonConfig struct {
	ListenAddr   string `toml:"listen_addr"`
	JWTSecret    string `toml:"jwt_secret"`
	APIKeyHashes map[string]string `toml:"api_key_hashes"` // key id -> bcrypt hash
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{MaxErrors: 1}
}

// Load reads and parses a TOML config file at path, starting from Default()
// so any field the file omits keeps its default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
