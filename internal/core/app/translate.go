package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/core/ports"
	"sl2c/internal/data/history"
	"sl2c/internal/engine/translator"
	"sl2c/internal/shared/observability"
)

// TranslateFile reads one source, translates it, hands the artefacts to the
// sink and records the run. Diagnostics are part of the result, not an error.
func (s *Service) TranslateFile(ctx context.Context, path string) (ports.FileResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.TranslateFile",
		trace.WithAttributes(attribute.String("sl2c.path", path)))
	defer span.End()

	src, err := os.ReadFile(path)
	if err != nil {
		span.SetStatus(codes.Error, "read source")
		return ports.FileResult{}, cerrors.AddContext(cerrors.Wrap(err, cerrors.CodeIO, "read source"), cerrors.CtxPath, path)
	}

	started := time.Now()
	res := translator.TranslateObserved(string(src), stageObserver(ctx))
	out := ports.FileResult{
		Path:     path,
		Result:   res,
		Duration: time.Since(started),
	}
	recordMetrics(res)
	span.SetAttributes(
		attribute.Int("sl2c.artifacts", len(res.Artifacts)),
		attribute.Int("sl2c.diagnostics", len(res.Diagnostics)),
	)

	if sink := s.artifactSink(); sink != nil && len(res.Artifacts) > 0 {
		written, err := sink.WriteArtifacts(path, res.Artifacts)
		if err != nil {
			span.SetStatus(codes.Error, "write artefacts")
			return out, cerrors.AddContext(err, cerrors.CtxPath, path)
		}
		out.Written = written
	}

	out.RunID = s.recordRun(path, src, out)
	if out.RunID != "" {
		span.SetAttributes(attribute.String("sl2c.run_id", out.RunID))
	}

	slog.Debug("translated", "path", path, "artifacts", len(res.Artifacts), "diagnostics", len(res.Diagnostics), "duration", out.Duration)
	return out, nil
}

// stageObserver times every pipeline stage and opens a child span for it.
func stageObserver(ctx context.Context) translator.Observer {
	return func(stage translator.Stage, run func()) {
		_, span := observability.Tracer.Start(ctx, "translate."+string(stage))
		started := time.Now()
		run()
		observability.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(started).Seconds())
		span.End()
	}
}

func recordMetrics(res translator.Result) {
	status := observability.StatusOK
	if !res.OK() {
		status = observability.StatusDiagnostics
	}
	observability.TranslationsTotal.WithLabelValues(status).Inc()
	observability.ArtifactsTotal.Add(float64(len(res.Artifacts)))
	for kind, n := range res.Diagnostics.CountByKind() {
		observability.DiagnosticsTotal.WithLabelValues(string(kind)).Add(float64(n))
	}
}

// recordRun stores the outcome in the history store. A storage failure is
// logged and counted; it never fails the translation.
func (s *Service) recordRun(path string, src []byte, fr ports.FileResult) string {
	if s.history == nil {
		return ""
	}

	sum := sha256.Sum256(src)
	run := history.Run{
		Timestamp:  time.Now().UTC(),
		Source:     path,
		SourceHash: hex.EncodeToString(sum[:]),
		Duration:   fr.Duration,
		Artifacts:  len(fr.Result.Artifacts),
	}
	for _, d := range fr.Result.Diagnostics {
		run.Diagnostics = append(run.Diagnostics, history.Diagnostic{
			Kind:    string(d.Kind),
			Line:    d.Pos.Line,
			Column:  d.Pos.Column,
			Message: d.Message,
		})
	}

	saved, err := s.history.SaveRun(run)
	if err != nil {
		observability.HistoryWriteErrorsTotal.Inc()
		slog.Warn("failed to record run", "path", path, "error", err)
		return ""
	}
	return saved.ID
}
