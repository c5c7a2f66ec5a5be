package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: SL2C_[SECTION]_[KEY] (e.g., SL2C_OUTPUT_DIR).
func ApplyEnvOverrides(cfg *Config) {
	// Output
	setEnvString(&cfg.Output.Dir, "SL2C_OUTPUT_DIR")
	setEnvString(&cfg.Output.Format, "SL2C_OUTPUT_FORMAT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "SL2C_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.Rate, "SL2C_WATCH_RATE")
	setEnvInt(&cfg.Watch.Burst, "SL2C_WATCH_BURST")

	// History
	setEnvBool(&cfg.History.Enabled, "SL2C_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "SL2C_HISTORY_PATH")
	setEnvInt(&cfg.History.Keep, "SL2C_HISTORY_KEEP")

	// Telemetry
	setEnvString(&cfg.Telemetry.MetricsAddr, "SL2C_TELEMETRY_METRICS_ADDR")
	setEnvString(&cfg.Telemetry.OTLPEndpoint, "SL2C_TELEMETRY_OTLP_ENDPOINT")
	setEnvString(&cfg.Telemetry.ServiceName, "SL2C_TELEMETRY_SERVICE_NAME")

	normalize(cfg)
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
