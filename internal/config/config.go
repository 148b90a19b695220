// Package config handles converter configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig holds conversion defaults. Command-line flags override
// any of these per invocation.
type ConvertConfig struct {
	InputFormat  string `yaml:"input_format"`  // cem, cem2, ssmf, cem1.3, obj, dae, collada
	OutputFormat string `yaml:"output_format"` // same tokens as input_format
	FrameIndex   int    `yaml:"frame_index"`   // frame to extract for single-frame outputs
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			InputFormat:  "cem",
			OutputFormat: "",
			FrameIndex:   0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
