package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/shared/util"
)

// Formats lists the accepted output.format values.
var Formats = []string{"text", "json", "sarif"}

// Validate checks every section and returns the first problem found.
func Validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateInput,
		validateOutput,
		validateWatch,
		validateHistory,
		validateTelemetry,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func invalid(field, format string, args ...interface{}) error {
	return cerrors.New(cerrors.CodeValidationError, field+" "+fmt.Sprintf(format, args...)).(*cerrors.DomainError).
		WithContext(cerrors.CtxField, field)
}

func validateInput(cfg *Config) error {
	if len(cfg.Input.Include) == 0 {
		return invalid("input.include", "must list at least one pattern")
	}
	groups := map[string][]string{
		"input.include":       cfg.Input.Include,
		"input.exclude_dirs":  cfg.Input.ExcludeDirs,
		"input.exclude_files": cfg.Input.ExcludeFiles,
	}
	for _, field := range []string{"input.include", "input.exclude_dirs", "input.exclude_files"} {
		for _, pattern := range groups[field] {
			if _, err := glob.Compile(pattern); err != nil {
				return invalid(field, "has invalid glob pattern %q: %v", pattern, err)
			}
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if strings.TrimSpace(cfg.Output.Dir) == "" {
		return invalid("output.dir", "must not be empty")
	}
	known := false
	for _, f := range Formats {
		if cfg.Output.Format == f {
			known = true
			break
		}
	}
	if !known {
		return invalid("output.format", "must be one of: %s, got %q", strings.Join(Formats, ", "), cfg.Output.Format)
	}

	exts := map[string]string{
		"output.formula_ext": cfg.Output.FormulaExt,
		"output.params_ext":  cfg.Output.ParamsExt,
	}
	if cfg.Output.VariablesEnabled() {
		exts["output.variables_ext"] = cfg.Output.VariablesExt
	}
	seen := make(map[string]string, len(exts))
	for _, field := range []string{"output.formula_ext", "output.params_ext", "output.variables_ext"} {
		ext, ok := exts[field]
		if !ok {
			continue
		}
		if util.ContainsPathSeparator(ext) {
			return invalid(field, "must not contain a path separator, got %q", ext)
		}
		if other, dup := seen[ext]; dup {
			return invalid(field, "duplicates %s (%q)", other, ext)
		}
		seen[ext] = field
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return invalid("watch.debounce", "must not be negative, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.Rate <= 0 {
		return invalid("watch.rate", "must be positive, got %v", cfg.Watch.Rate)
	}
	if cfg.Watch.Burst < 1 {
		return invalid("watch.burst", "must be at least 1, got %d", cfg.Watch.Burst)
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return invalid("history.path", "must not be empty when history is enabled")
	}
	if cfg.History.Keep < 0 {
		return invalid("history.keep", "must not be negative, got %d", cfg.History.Keep)
	}
	return nil
}

func validateTelemetry(cfg *Config) error {
	if addr := cfg.Telemetry.MetricsAddr; addr != "" && !strings.Contains(addr, ":") {
		return invalid("telemetry.metrics_addr", "must be host:port, got %q", addr)
	}
	if cfg.Telemetry.OTLPEndpoint != "" && cfg.Telemetry.ServiceName == "" {
		return invalid("telemetry.service_name", "must not be empty when otlp_endpoint is set")
	}
	return nil
}
