// Package config handles irrtool configuration.
package config

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/irrscene/internal/logger"
	"github.com/Faultbox/irrscene/pkg/irr"
)

// Config holds all irrtool settings.
type Config struct {
	Import     ImportConfig     `yaml:"import" toml:"import"`
	Validation ValidationConfig `yaml:"validation" toml:"validation"`
	Export     ExportConfig     `yaml:"export" toml:"export"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

// ImportConfig holds scene import settings.
type ImportConfig struct {
	AnimFPS  int  `yaml:"anim_fps" toml:"anim_fps"`
	Validate bool `yaml:"validate" toml:"validate"`
}

// ValidationConfig holds settings for the validate command.
type ValidationConfig struct {
	Strict bool `yaml:"strict" toml:"strict"` // treat warnings as failures
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	Format string `yaml:"format" toml:"format"` // gltf or glb
	Dir    string `yaml:"dir" toml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	LogFile    string `yaml:"log_file" toml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
	Compress   bool   `yaml:"compress" toml:"compress"`
	JSON       bool   `yaml:"json" toml:"json"`
}

// Default returns the default configuration.
func Default() *Config {
	file := logger.DefaultFileConfig("")
	return &Config{
		Import: ImportConfig{
			AnimFPS:  irr.DefaultAnimFPS,
			Validate: true,
		},
		Export: ExportConfig{
			Format: "glb",
			Dir:    ".",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  file.MaxSizeMB,
			MaxBackups: file.MaxBackups,
			MaxAgeDays: file.MaxAgeDays,
			Compress:   file.Compress,
		},
	}
}

// Validate normalizes out of range values to their defaults. The returned
// error lists what was replaced; the config is usable either way.
func (c *Config) Validate() error {
	var err error
	if c.Import.AnimFPS <= 0 {
		err = errors.Errorf("import.anim_fps must be positive, got %d", c.Import.AnimFPS)
		c.Import.AnimFPS = irr.DefaultAnimFPS
	}
	switch c.Export.Format {
	case "gltf", "glb":
	default:
		if err == nil {
			err = errors.Errorf("export.format must be gltf or glb, got %q", c.Export.Format)
		}
		c.Export.Format = "glb"
	}
	return err
}

// ImportOptions returns importer options for this config.
func (c *Config) ImportOptions() irr.Options {
	opts := irr.DefaultOptions()
	opts.AnimFPS = c.Import.AnimFPS
	opts.Validate = c.Import.Validate
	return opts
}

// LoggerOptions returns logger options for this config.
func (c *Config) LoggerOptions() logger.Options {
	opts := logger.Options{Level: c.Logging.Level, Console: true, JSON: c.Logging.JSON}
	if c.Logging.LogFile != "" {
		opts.File = logger.FileConfig{
			Path:       c.Logging.LogFile,
			MaxSizeMB:  c.Logging.MaxSizeMB,
			MaxBackups: c.Logging.MaxBackups,
			MaxAgeDays: c.Logging.MaxAgeDays,
			Compress:   c.Logging.Compress,
		}
	}
	return opts
}
