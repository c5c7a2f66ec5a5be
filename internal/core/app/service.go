package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sl2c/internal/core/config"
	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/core/ports"
	"sl2c/internal/core/watcher"
	"sl2c/internal/data/history"
	"sl2c/internal/shared/util"
)

// Service translates SL2 files on disk and records the outcome. The pure
// translator does the work; Service adds I/O, tracing and metrics around it.
type Service struct {
	mu      sync.RWMutex
	cfg     *config.Config
	history ports.HistoryStore
	sink    ports.ArtifactSink
	limiter *util.Limiter
	watcher *watcher.Watcher
}

var _ ports.TranslationService = (*Service)(nil)

// NewService builds a service. history and sink may be nil, in which case
// runs are not recorded and artefacts are not written.
func NewService(cfg *config.Config, history ports.HistoryStore, sink ports.ArtifactSink) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &Service{cfg: cfg, history: history, sink: sink}, nil
}

// Config returns the active configuration.
func (s *Service) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig swaps the configuration used by subsequent translations. A file
// sink is rebuilt for the new output section, and a running watch loop picks
// up the new rate limit, debounce and filters immediately.
func (s *Service) SetConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.mu.Lock()
	s.cfg = cfg
	if _, ok := s.sink.(*FileSink); ok {
		s.sink = NewFileSink(cfg.Output)
	}
	limiter, w := s.limiter, s.watcher
	s.mu.Unlock()

	if limiter != nil {
		limiter.Update(cfg.Watch.Rate, cfg.Watch.Burst)
	}
	if w != nil {
		w.SetDebounce(cfg.Watch.Debounce)
		if err := w.SetFilters(cfg.Input.Include, watchExcludeDirs(cfg), cfg.Input.ExcludeFiles); err != nil {
			slog.Warn("failed to apply watch filters", "error", err)
		}
	}
	slog.Info("configuration applied", "output_dir", cfg.Output.Dir, "format", cfg.Output.Format)
}

func (s *Service) artifactSink() ports.ArtifactSink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sink
}

// TranslateFiles expands req.Paths and translates every resulting file.
// Files that cannot be read are reported in the returned error; the others
// are still translated.
func (s *Service) TranslateFiles(ctx context.Context, req ports.TranslateRequest) (ports.TranslateResult, error) {
	started := time.Now()
	files, err := s.ExpandInputs(req.Paths)
	if err != nil {
		return ports.TranslateResult{}, err
	}

	var (
		out  ports.TranslateResult
		errs []error
	)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		fr, err := s.TranslateFile(ctx, path)
		if err != nil {
			slog.Warn("failed to translate file", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}
		out.Files = append(out.Files, fr)
	}
	out.Duration = time.Since(started)
	return out, errors.Join(errs...)
}

// RecentRuns lists recorded runs, newest first.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]history.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, cerrors.New(cerrors.CodeNotFound, "history is disabled")
	}
	runs, err := s.history.RecentRuns(limit)
	if err != nil {
		return nil, cerrors.AddContext(err, cerrors.CtxOperation, "recent_runs")
	}
	return runs, nil
}
