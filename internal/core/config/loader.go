package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	cerrors "sl2c/internal/core/errors"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeIO, "read config").(*cerrors.DomainError).WithContext(cerrors.CtxPath, path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeValidationError, "decode config").(*cerrors.DomainError).WithContext(cerrors.CtxPath, path)
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, cerrors.AddContext(err, cerrors.CtxPath, path)
	}
	return &cfg, nil
}

// LoadOrDefault loads path. A missing file falls back to DefaultConfig unless
// the path was given explicitly.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return nil, err
}

func applyDefaults(cfg *Config) {
	if len(cfg.Input.Include) == 0 {
		cfg.Input.Include = []string{"*.sl2"}
	}
	if cfg.Input.ExcludeDirs == nil {
		cfg.Input.ExcludeDirs = []string{".git", "node_modules"}
	}

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		cfg.Output.Dir = "out"
	}
	if strings.TrimSpace(cfg.Output.FormulaExt) == "" {
		cfg.Output.FormulaExt = ".stl"
	}
	if strings.TrimSpace(cfg.Output.ParamsExt) == "" {
		cfg.Output.ParamsExt = ".par"
	}
	if strings.TrimSpace(cfg.Output.VariablesExt) == "" {
		cfg.Output.VariablesExt = ".vars"
	}
	if cfg.Output.WriteVariables == nil {
		enabled := true
		cfg.Output.WriteVariables = &enabled
	}
	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if cfg.Watch.Rate == 0 {
		cfg.Watch.Rate = 4
	}
	if cfg.Watch.Burst == 0 {
		cfg.Watch.Burst = 1
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "data/sl2c-history.db"
	}

	if strings.TrimSpace(cfg.Telemetry.ServiceName) == "" {
		cfg.Telemetry.ServiceName = "sl2c"
	}
}

func normalize(cfg *Config) {
	cfg.Input.Include = trimAll(cfg.Input.Include)
	cfg.Input.ExcludeDirs = trimAll(cfg.Input.ExcludeDirs)
	cfg.Input.ExcludeFiles = trimAll(cfg.Input.ExcludeFiles)

	cfg.Output.Dir = strings.TrimSpace(cfg.Output.Dir)
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Output.FormulaExt = normalizeExt(cfg.Output.FormulaExt)
	cfg.Output.ParamsExt = normalizeExt(cfg.Output.ParamsExt)
	cfg.Output.VariablesExt = normalizeExt(cfg.Output.VariablesExt)

	cfg.History.Path = strings.TrimSpace(cfg.History.Path)
	cfg.Telemetry.MetricsAddr = strings.TrimSpace(cfg.Telemetry.MetricsAddr)
	cfg.Telemetry.OTLPEndpoint = strings.TrimSpace(cfg.Telemetry.OTLPEndpoint)
	cfg.Telemetry.ServiceName = strings.TrimSpace(cfg.Telemetry.ServiceName)
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
