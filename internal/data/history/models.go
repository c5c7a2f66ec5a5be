package history

import "time"

const SchemaVersion = 1

// Run records one translation of one source file.
type Run struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Source      string        `json:"source"`
	SourceHash  string        `json:"source_hash"`
	Duration    time.Duration `json:"duration"`
	Artifacts   int           `json:"artifacts"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}

// Diagnostic is the stored form of one reported problem.
type Diagnostic struct {
	Kind    string `json:"kind"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// OK reports whether the run finished without diagnostics.
func (r Run) OK() bool {
	return len(r.Diagnostics) == 0
}
