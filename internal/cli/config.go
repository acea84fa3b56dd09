package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// GlobalConfig holds optional defaults stored at ~/.pulseboard/config.json.
// Flags and PULSEBOARD_* environment variables take precedence over it.
type GlobalConfig struct {
	// Store selects the preference backend ("file", "sqlite", "http").
	Store string `json:"store,omitempty"`
	// Remote is the base URL for the http backend.
	Remote string `json:"remote,omitempty"`
	// Addr is the default listen address for `pulseboard serve`.
	Addr string `json:"addr,omitempty"`
	// Theme forces the appearance ("light", "dark"); empty means auto.
	Theme string `json:"theme,omitempty"`
}

const configFileName = "config.json"

// configDir resolves where config.json lives. PULSEBOARD_CONFIG_DIR exists
// so tests and scripts can redirect it without touching $HOME.
func configDir() (string, error) {
	if dir := os.Getenv("PULSEBOARD_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pulseboard"), nil
}

// loadGlobalConfig reads config.json, best-effort: a missing or unreadable
// file yields zero defaults, a malformed one is an explicit error so a typo
// does not silently fall back.
func loadGlobalConfig() (GlobalConfig, error) {
	dir, err := configDir()
	if err != nil {
		return GlobalConfig{}, nil
	}
	b, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		return GlobalConfig{}, nil
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return GlobalConfig{}, err
	}
	return cfg, nil
}
