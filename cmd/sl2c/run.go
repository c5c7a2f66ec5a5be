package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"sl2c/internal/core/app"
	"sl2c/internal/core/config"
	"sl2c/internal/core/ports"
	"sl2c/internal/data/history"
	"sl2c/internal/shared/observability"
	"sl2c/internal/shared/version"
	"sl2c/internal/ui/report"
)

const (
	exitOK          = 0
	exitDiagnostics = 1
	exitFailure     = 2
)

type options struct {
	configPath string
	outDir     string
	format     string
	stdout     bool
	watch      bool
	history    int
	verbose    bool
	version    bool
	inputs     []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("sl2c", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", config.DefaultPath, "Path to config file")
	fs.StringVar(&opts.outDir, "o", "", "Output directory (overrides output.dir)")
	fs.StringVar(&opts.format, "format", "", "Report format: text, json or sarif")
	fs.BoolVar(&opts.stdout, "stdout", false, "Print artefacts instead of writing files")
	fs.BoolVar(&opts.watch, "watch", false, "Re-translate inputs when they change")
	fs.IntVar(&opts.history, "history", 0, "Print the N most recent recorded runs and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: sl2c [flags] FILE|DIR...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.inputs = fs.Args()
	return opts, nil
}

// apply layers command-line overrides on top of a loaded configuration.
func (o options) apply(cfg *config.Config) {
	if o.outDir != "" {
		cfg.Output.Dir = o.outDir
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.history > 0 {
		cfg.History.Enabled = true
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitFailure
	}

	if opts.version {
		fmt.Fprintf(stdout, "sl2c v%s\n", version.Version)
		return exitOK
	}

	logLevel := slog.LevelInfo
	if opts.verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel})))

	explicitConfig := opts.configPath != config.DefaultPath
	cfg, err := config.LoadOrDefault(opts.configPath, explicitConfig)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitFailure
	}
	config.ApplyEnvOverrides(cfg)
	opts.apply(cfg)
	if err := config.Validate(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		return exitFailure
	}

	if opts.history <= 0 && len(opts.inputs) == 0 {
		fmt.Fprintln(stderr, "usage: sl2c [flags] FILE|DIR...")
		return exitFailure
	}

	shutdown, err := observability.InitTracing(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				slog.Warn("failed to flush traces", "error", err)
			}
		}()
	}

	var store ports.HistoryStore
	if cfg.History.Enabled {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			slog.Error("failed to open history", "path", cfg.History.Path, "error", err)
			return exitFailure
		}
		adapter := history.NewAdapter(db, cfg.History.Keep)
		defer adapter.Close()
		store = adapter
	}

	var sink ports.ArtifactSink = app.NewFileSink(cfg.Output)
	if opts.stdout {
		sink = app.NewWriterSink(stdout, cfg.Output.VariablesEnabled())
	}

	svc, err := app.NewService(cfg, store, sink)
	if err != nil {
		slog.Error("failed to initialize service", "error", err)
		return exitFailure
	}

	if opts.history > 0 {
		runs, err := svc.RecentRuns(ctx, opts.history)
		if err != nil {
			slog.Error("failed to read history", "error", err)
			return exitFailure
		}
		if err := report.RenderRuns(stdout, runs); err != nil {
			return exitFailure
		}
		return exitOK
	}

	res, err := svc.TranslateFiles(ctx, ports.TranslateRequest{Paths: opts.inputs})
	if renderErr := report.Render(reportWriter(opts, stdout, stderr), cfg.Output.Format, res); renderErr != nil {
		slog.Error("failed to render report", "error", renderErr)
	}
	if err != nil && !opts.watch {
		slog.Error("translation failed", "error", err)
		return exitFailure
	}

	if opts.watch {
		return watch(ctx, opts, svc, stdout, stderr)
	}
	if res.DiagnosticCount() > 0 {
		return exitDiagnostics
	}
	return exitOK
}

// reportWriter keeps the report off stdout when artefacts are printed there.
func reportWriter(opts options, stdout, stderr io.Writer) io.Writer {
	if opts.stdout {
		return stderr
	}
	return stdout
}

func watch(ctx context.Context, opts options, svc *app.Service, stdout, stderr io.Writer) int {
	cfg := svc.Config()

	var lastErr atomic.Pointer[string]
	var lastRun atomic.Pointer[time.Time]
	health := func() observability.HealthStatus {
		st := observability.HealthStatus{Status: "up"}
		if t := lastRun.Load(); t != nil {
			st.LastRun = *t
		}
		if msg := lastErr.Load(); msg != nil {
			st.LastError = *msg
		}
		return st
	}

	if cfg.Telemetry.MetricsAddr != "" {
		srv := observability.NewServer(cfg.Telemetry.MetricsAddr, health)
		if err := srv.Start(ctx); err != nil {
			slog.Error("failed to start metrics server", "addr", cfg.Telemetry.MetricsAddr, "error", err)
			return exitFailure
		}
		slog.Info("serving metrics", "addr", srv.Addr())
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(sctx)
		}()
	}

	cfgWatcher := config.NewWatcher(opts.configPath, func(next *config.Config) {
		opts.apply(next)
		if err := config.Validate(next); err != nil {
			slog.Warn("ignoring invalid configuration", "error", err)
			return
		}
		svc.SetConfig(next)
	})
	if err := cfgWatcher.Start(ctx); err != nil {
		slog.Warn("config hot reload disabled", "error", err)
	} else {
		defer cfgWatcher.Stop()
	}

	err := svc.Watch(ctx, opts.inputs, func(res ports.TranslateResult, err error) {
		now := time.Now()
		lastRun.Store(&now)
		if err != nil {
			msg := err.Error()
			lastErr.Store(&msg)
			slog.Warn("re-translation failed", "error", err)
		} else {
			lastErr.Store(nil)
		}
		if renderErr := report.Render(reportWriter(opts, stdout, stderr), svc.Config().Output.Format, res); renderErr != nil {
			slog.Error("failed to render report", "error", renderErr)
		}
	})
	if err != nil {
		slog.Error("watch failed", "error", err)
		return exitFailure
	}
	return exitOK
}
