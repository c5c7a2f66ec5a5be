package ports

import (
	"context"
	"time"

	"sl2c/internal/data/history"
	"sl2c/internal/engine/translator"
)

// HistoryStore abstracts run persistence for the history listing.
type HistoryStore interface {
	SaveRun(run history.Run) (history.Run, error)
	RecentRuns(limit int) ([]history.Run, error)
}

// ArtifactSink receives the artefacts translated from one source file and
// returns where they went.
type ArtifactSink interface {
	WriteArtifacts(source string, artifacts []translator.Artifact) ([]string, error)
}

// TranslateRequest names the inputs of one batch. Directories are expanded
// with the configured include and exclude patterns.
type TranslateRequest struct {
	Paths []string
}

// FileResult is the outcome of translating one source file.
type FileResult struct {
	Path     string
	RunID    string
	Result   translator.Result
	Written  []string
	Duration time.Duration
}

// TranslateResult summarizes a batch.
type TranslateResult struct {
	Files    []FileResult
	Duration time.Duration
}

func (r TranslateResult) ArtifactCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Result.Artifacts)
	}
	return n
}

func (r TranslateResult) DiagnosticCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Result.Diagnostics)
	}
	return n
}

// TranslationService is the driving port used by the CLI and watch mode.
type TranslationService interface {
	ExpandInputs(paths []string) ([]string, error)
	TranslateFiles(ctx context.Context, req TranslateRequest) (TranslateResult, error)
	RecentRuns(ctx context.Context, limit int) ([]history.Run, error)
}
