package report

import (
	"encoding/json"
	"io"

	"sl2c/internal/core/ports"
)

type jsonReport struct {
	Files   []jsonFile  `json:"files"`
	Summary jsonSummary `json:"summary"`
}

type jsonFile struct {
	Path        string           `json:"path"`
	RunID       string           `json:"run_id,omitempty"`
	Artifacts   []jsonArtifact   `json:"artifacts"`
	Written     []string         `json:"written,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	DurationMS  int64            `json:"duration_ms"`
}

type jsonArtifact struct {
	Property  string            `json:"property"`
	Index     int               `json:"index"`
	Formula   string            `json:"formula"`
	Params    string            `json:"params"`
	Variables map[string]string `json:"variables"`
}

type jsonDiagnostic struct {
	Kind    string                 `json:"kind"`
	Line    int                    `json:"line"`
	Column  int                    `json:"column"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

type jsonSummary struct {
	Files       int   `json:"files"`
	Artifacts   int   `json:"artifacts"`
	Diagnostics int   `json:"diagnostics"`
	DurationMS  int64 `json:"duration_ms"`
}

// JSON writes res as an indented JSON document.
func JSON(w io.Writer, res ports.TranslateResult) error {
	out := jsonReport{
		Files: make([]jsonFile, 0, len(res.Files)),
		Summary: jsonSummary{
			Files:       len(res.Files),
			Artifacts:   res.ArtifactCount(),
			Diagnostics: res.DiagnosticCount(),
			DurationMS:  res.Duration.Milliseconds(),
		},
	}

	for _, f := range res.Files {
		jf := jsonFile{
			Path:        f.Path,
			RunID:       f.RunID,
			Artifacts:   make([]jsonArtifact, 0, len(f.Result.Artifacts)),
			Written:     f.Written,
			Diagnostics: make([]jsonDiagnostic, 0, len(f.Result.Diagnostics)),
			DurationMS:  f.Duration.Milliseconds(),
		}
		for _, a := range f.Result.Artifacts {
			vars := make(map[string]string, len(a.Variables))
			for _, v := range a.Variables {
				vars[v.Name()] = v.Signal
			}
			jf.Artifacts = append(jf.Artifacts, jsonArtifact{
				Property:  a.Property,
				Index:     a.Index,
				Formula:   a.Formula,
				Params:    a.Params,
				Variables: vars,
			})
		}
		for _, d := range f.Result.Diagnostics.Sorted() {
			jf.Diagnostics = append(jf.Diagnostics, jsonDiagnostic{
				Kind:    string(d.Kind),
				Line:    d.Pos.Line,
				Column:  d.Pos.Column,
				Message: d.Message,
				Context: d.Context,
			})
		}
		out.Files = append(out.Files, jf)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
