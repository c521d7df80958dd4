package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Import.AnimFPS != 100 {
		t.Errorf("expected anim fps 100, got %d", cfg.Import.AnimFPS)
	}
	if !cfg.Import.Validate {
		t.Error("expected validation to be enabled by default")
	}
	if cfg.Validation.Strict {
		t.Error("expected strict to be false by default")
	}
	if cfg.Export.Format != "glb" {
		t.Errorf("expected export format glb, got %s", cfg.Export.Format)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if cfg.Logging.MaxSizeMB != 50 {
		t.Errorf("expected max size 50, got %d", cfg.Logging.MaxSizeMB)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "irrscene.yaml")

	yamlContent := `
import:
  anim_fps: 30
  validate: false

validation:
  strict: true

export:
  format: gltf
  dir: out

logging:
  level: "debug"
  log_file: "irrtool.log"
  json: true
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Import.AnimFPS != 30 {
		t.Errorf("expected anim fps 30, got %d", cfg.Import.AnimFPS)
	}
	if cfg.Import.Validate {
		t.Error("expected validate to be false")
	}
	if !cfg.Validation.Strict {
		t.Error("expected strict to be true")
	}
	if cfg.Export.Format != "gltf" || cfg.Export.Dir != "out" {
		t.Errorf("unexpected export config %+v", cfg.Export)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "irrtool.log" {
		t.Errorf("expected log file 'irrtool.log', got %s", cfg.Logging.LogFile)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Logging.MaxBackups != 3 {
		t.Errorf("expected max backups 3, got %d", cfg.Logging.MaxBackups)
	}
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "irrscene.toml")

	tomlContent := `
[import]
anim_fps = 25

[export]
format = "gltf"

[logging]
level = "warn"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Import.AnimFPS != 25 {
		t.Errorf("expected anim fps 25, got %d", cfg.Import.AnimFPS)
	}
	if !cfg.Import.Validate {
		t.Error("expected validate default to survive")
	}
	if cfg.Export.Format != "gltf" {
		t.Errorf("expected format gltf, got %s", cfg.Export.Format)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level warn, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "invalid.yaml", "import:\n  anim_fps: not a number\n  invalid syntax here\n"},
		{"toml", "invalid.toml", "[import\nanim_fps = \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), path); err == nil {
				t.Error("expected error loading invalid config, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		wantErr    bool
		wantFPS    int
		wantFormat string
	}{
		{"valid", func(*Config) {}, false, 100, "glb"},
		{"gltf", func(c *Config) { c.Export.Format = "gltf" }, false, 100, "gltf"},
		{"zero fps", func(c *Config) { c.Import.AnimFPS = 0 }, true, 100, "glb"},
		{"negative fps", func(c *Config) { c.Import.AnimFPS = -5 }, true, 100, "glb"},
		{"unknown format", func(c *Config) { c.Export.Format = "fbx" }, true, 100, "glb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if cfg.Import.AnimFPS != tt.wantFPS {
				t.Errorf("anim fps = %d, want %d", cfg.Import.AnimFPS, tt.wantFPS)
			}
			if cfg.Export.Format != tt.wantFormat {
				t.Errorf("format = %s, want %s", cfg.Export.Format, tt.wantFormat)
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"nested/irrscene.yaml", "nested/irrscene.toml"} {
		t.Run(filepath.Ext(name), func(t *testing.T) {
			cfg := Default()
			cfg.Import.AnimFPS = 60
			cfg.Logging.LogFile = "x.log"

			path := filepath.Join(tmpDir, name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo: %v", err)
			}

			loaded := &Config{}
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("reload: %v", err)
			}
			if *loaded != *cfg {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *cfg)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Import.AnimFPS = 24
	cfg.Import.Validate = false

	opts := cfg.ImportOptions()
	if opts.AnimFPS != 24 || opts.Validate {
		t.Errorf("unexpected import options %+v", opts)
	}

	lopts := cfg.LoggerOptions()
	if lopts.File.Path != "" {
		t.Errorf("expected no file core, got %s", lopts.File.Path)
	}
	cfg.Logging.LogFile = "irrtool.log"
	lopts = cfg.LoggerOptions()
	if lopts.File.Path != "irrtool.log" || lopts.File.MaxSizeMB != 50 {
		t.Errorf("unexpected file options %+v", lopts.File)
	}
	if !lopts.Console {
		t.Error("expected console output")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "irrscene.toml")
	if err := os.WriteFile(configPath, []byte("[import]\nanim_fps = 10\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path != "./irrscene.toml" {
		t.Errorf("expected ./irrscene.toml, got %q", path)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fps flag",
			setup: func() { *flagFPS = 48 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Import.AnimFPS != 48 {
					t.Errorf("expected fps 48, got %d", cfg.Import.AnimFPS)
				}
			},
			teardown: func() { *flagFPS = 0 },
		},
		{
			name:  "no-validate flag",
			setup: func() { *flagNoValidate = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Import.Validate {
					t.Error("expected validation disabled")
				}
			},
			teardown: func() { *flagNoValidate = false },
		},
		{
			name: "strict and format flags",
			setup: func() {
				*flagStrict = true
				*flagFormat = "gltf"
			},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Validation.Strict {
					t.Error("expected strict validation")
				}
				if cfg.Export.Format != "gltf" {
					t.Errorf("expected format gltf, got %s", cfg.Export.Format)
				}
			},
			teardown: func() {
				*flagStrict = false
				*flagFormat = ""
			},
		},
		{
			name:  "log-file flag",
			setup: func() { *flagLogFile = "run.log" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "run.log" {
					t.Errorf("expected log file run.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "irrscene.yaml")

	yamlContent := `
import:
  anim_fps: 30
export:
  format: gltf
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagFPS = 60
	defer func() {
		*flagConfig = ""
		*flagFPS = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// fps from flag, format from file
	if cfg.Import.AnimFPS != 60 {
		t.Errorf("expected fps 60 from flag, got %d", cfg.Import.AnimFPS)
	}
	if cfg.Export.Format != "gltf" {
		t.Errorf("expected format gltf from file, got %s", cfg.Export.Format)
	}
}
