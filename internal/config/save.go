package config

import (
	"os"
	"path/filepath"
)

// Save writes the config to the user's config directory.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), "config.yaml"))
}

// SaveTo writes the config to a specific path, as TOML for .toml paths and
// YAML otherwise.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := marshal(path, c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
