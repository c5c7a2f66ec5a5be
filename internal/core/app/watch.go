package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"sl2c/internal/core/config"
	"sl2c/internal/core/ports"
	"sl2c/internal/core/watcher"
	"sl2c/internal/shared/observability"
	"sl2c/internal/shared/util"
)

// Watch re-translates changed sources under paths until ctx is done. Every
// batch is paced by the watch rate limit and handed to report.
func (s *Service) Watch(ctx context.Context, paths []string, report func(ports.TranslateResult, error)) error {
	cfg := s.Config()

	limiter := util.NewLimiter(cfg.Watch.Rate, cfg.Watch.Burst)
	s.mu.Lock()
	s.limiter = limiter
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.limiter = nil
		s.mu.Unlock()
	}()

	batches := make(chan []string)
	w, err := watcher.NewWatcher(cfg.Watch.Debounce, cfg.Input.Include, watchExcludeDirs(cfg), cfg.Input.ExcludeFiles, func(changed []string) {
		select {
		case batches <- changed:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.watcher = nil
		s.mu.Unlock()
	}()

	if err := w.Watch(paths); err != nil {
		return err
	}
	slog.Info("watching for changes", "paths", paths)

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-batches:
			if !limiter.Allow(1) {
				observability.WatcherThrottledTotal.Inc()
				if err := limiter.Wait(ctx, 1); err != nil {
					return nil
				}
			}

			existing := changed[:0:0]
			for _, p := range changed {
				if _, err := os.Stat(p); err == nil {
					existing = append(existing, p)
				} else {
					slog.Debug("source removed", "path", p)
				}
			}
			if len(existing) == 0 {
				continue
			}

			res, err := s.TranslateFiles(ctx, ports.TranslateRequest{Paths: existing})
			report(res, err)
		}
	}
}

// watchExcludeDirs is the configured directory exclusions plus the output
// directory.
func watchExcludeDirs(cfg *config.Config) []string {
	dirs := append([]string(nil), cfg.Input.ExcludeDirs...)
	if cfg.Output.Dir != "" {
		dirs = append(dirs, filepath.Base(cfg.Output.Dir))
	}
	return dirs
}
