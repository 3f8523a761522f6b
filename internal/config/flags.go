package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagMode   = flag.String("mode", "", "Edge mode: auto, full or external")
	flagSmooth = flag.Bool("smooth", false, "Smooth normals before extraction")
	flagFlat   = flag.Bool("flat", false, "Keep authored normals")
	flagColors = flag.Bool("colors", false, "Fill missing vertex colours with random colours")
	flagSeed   = flag.Int64("seed", 0, "Random colour seed (0 = unseeded)")
	flagAddr   = flag.String("addr", "", "Server listen address")
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
	if *flagMode != "" {
		cfg.Extract.Mode = *flagMode
	}
	if *flagSmooth {
		cfg.Extract.SmoothNormals = true
	}
	if *flagFlat {
		cfg.Extract.SmoothNormals = false
	}
	if *flagColors {
		cfg.Extract.RandomColors = true
	}
	if *flagSeed != 0 {
		cfg.Extract.Seed = *flagSeed
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
}
