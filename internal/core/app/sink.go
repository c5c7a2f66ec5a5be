package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"sl2c/internal/core/config"
	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/core/ports"
	"sl2c/internal/engine/translator"
	"sl2c/internal/shared/util"
)

// ArtifactBase names the files of one artefact: <stem>.<index>.<property>.
func ArtifactBase(source string, a translator.Artifact) string {
	return fmt.Sprintf("%s.%d.%s", util.Stem(source), a.Index, a.Property)
}

// FileSink writes each artefact as a formula file, a parameter file and,
// when enabled, a variable table into one directory.
type FileSink struct {
	Dir          string
	FormulaExt   string
	ParamsExt    string
	VariablesExt string
	Variables    bool
}

var _ ports.ArtifactSink = (*FileSink)(nil)

// NewFileSink builds a sink from the output section of cfg.
func NewFileSink(out config.Output) *FileSink {
	return &FileSink{
		Dir:          out.Dir,
		FormulaExt:   out.FormulaExt,
		ParamsExt:    out.ParamsExt,
		VariablesExt: out.VariablesExt,
		Variables:    out.VariablesEnabled(),
	}
}

func (s *FileSink) WriteArtifacts(source string, artifacts []translator.Artifact) ([]string, error) {
	written := make([]string, 0, len(artifacts)*3)
	for _, a := range artifacts {
		base := filepath.Join(s.Dir, ArtifactBase(source, a))
		files := []struct {
			path, content string
		}{
			{base + s.FormulaExt, a.Formula},
			{base + s.ParamsExt, a.Params},
		}
		if s.Variables {
			files = append(files, struct{ path, content string }{base + s.VariablesExt, a.VariablesText()})
		}
		for _, f := range files {
			if err := util.WriteStringWithDirs(f.path, f.content, 0o644); err != nil {
				return written, cerrors.AddContext(cerrors.Wrap(err, cerrors.CodeIO, "write artefact"), "artifact", f.path)
			}
			written = append(written, f.path)
		}
	}
	return written, nil
}

// WriterSink prints artefacts to a stream instead of writing files.
type WriterSink struct {
	mu        sync.Mutex
	w         io.Writer
	variables bool
}

var _ ports.ArtifactSink = (*WriterSink)(nil)

func NewWriterSink(w io.Writer, variables bool) *WriterSink {
	return &WriterSink{w: w, variables: variables}
}

func (s *WriterSink) WriteArtifacts(source string, artifacts []translator.Artifact) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for _, a := range artifacts {
		fmt.Fprintf(&b, "# %s\n", ArtifactBase(source, a))
		b.WriteString(a.Formula)
		b.WriteByte('\n')
		if a.Params != "" {
			b.WriteString("# params\n")
			b.WriteString(a.Params)
		}
		if s.variables && len(a.Variables) > 0 {
			b.WriteString("# variables\n")
			b.WriteString(a.VariablesText())
		}
	}
	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeIO, "write artefacts")
	}
	return nil, nil
}
