package config

import (
	"time"
)

// DefaultPath is the config file looked up when -config is not given.
const DefaultPath = "sl2c.toml"

type Config struct {
	Input     Input     `toml:"input"`
	Output    Output    `toml:"output"`
	Watch     Watch     `toml:"watch"`
	History   History   `toml:"history"`
	Telemetry Telemetry `toml:"telemetry"`
}

// Input selects which files a directory argument expands to.
type Input struct {
	Include      []string `toml:"include"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
}

type Output struct {
	Dir            string `toml:"dir"`
	FormulaExt     string `toml:"formula_ext"`
	ParamsExt      string `toml:"params_ext"`
	VariablesExt   string `toml:"variables_ext"`
	WriteVariables *bool  `toml:"write_variables"`
	Format         string `toml:"format"` // text, json or sarif
}

// VariablesEnabled reports whether the variable table is written next to each formula.
func (o Output) VariablesEnabled() bool {
	return o.WriteVariables != nil && *o.WriteVariables
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// Rate and Burst bound how often a batch of changes is re-translated.
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	// Keep is the number of runs retained; 0 keeps everything.
	Keep int `toml:"keep"`
}

type Telemetry struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
