package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagFPS        = flag.Int("fps", 0, "Animation sampling rate in ticks per second")
	flagNoValidate = flag.Bool("no-validate", false, "Skip scene validation")
	flagStrict     = flag.Bool("strict", false, "Treat validation warnings as failures")
	flagFormat     = flag.String("format", "", "Export format: gltf or glb")
	flagLogFile    = flag.String("log-file", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFPS != 0 {
		cfg.Import.AnimFPS = *flagFPS
	}
	if *flagNoValidate {
		cfg.Import.Validate = false
	}
	if *flagStrict {
		cfg.Validation.Strict = true
	}
	if *flagFormat != "" {
		cfg.Export.Format = *flagFormat
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
