package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagOutput  = flag.String("f", "", "Output format (cem, cem2, ssmf, obj, dae, collada)")
	flagInput   = flag.String("g", "", "Input format")
	flagInPath  = flag.String("i", "", "Input file, default is stdin")
	flagFrame   = flag.Int("n", -1, "Frame index to extract for single-frame outputs")
	flagLogFile = flag.String("log-file", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// InputPath returns the input file path from -i, empty for stdin.
func InputPath() string {
	return *flagInPath
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagInput != "" {
		cfg.Convert.InputFormat = *flagInput
	}
	if *flagOutput != "" {
		cfg.Convert.OutputFormat = *flagOutput
	}
	if *flagFrame >= 0 {
		cfg.Convert.FrameIndex = *flagFrame
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
