package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cleanSource = `let signal s1;
let param p1;
prop1 := F[0,p1] s1 < 0;
eval prop1 with p1 in [0, 0.5]`
	brokenSource = `let signal s1;
prop := G[5,2] s1 > 0;
eval prop with`
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "-version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "sl2c v")
}

func TestRun_RequiresInputs(t *testing.T) {
	code, _, errOut := runCLI(t)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "usage: sl2c")
}

func TestRun_TranslatesIntoOutputDir(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "brake.sl2", cleanSource)
	outDir := filepath.Join(dir, "out")

	code, out, _ := runCLI(t, "-o", outDir, src)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "1 file, 1 artefact, 0 diagnostics")

	formula, err := os.ReadFile(filepath.Join(outDir, "brake.0.prop1.stl"))
	require.NoError(t, err)
	assert.Equal(t, "(F (0 p1) (< x1 0))", string(formula))
	params, err := os.ReadFile(filepath.Join(outDir, "brake.0.prop1.par"))
	require.NoError(t, err)
	assert.Equal(t, "p1 0 0.5\n", string(params))
}

func TestRun_DiagnosticsExitNonZero(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "broken.sl2", brokenSource)

	code, out, _ := runCLI(t, "-o", filepath.Join(dir, "out"), src)
	assert.Equal(t, exitDiagnostics, code)
	assert.Contains(t, out, "EmptyInterval at 2:")

	_, err := os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(err), "no artefacts expected for a rejected evaluation")
}

func TestRun_StdoutAndJSON(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "brake.sl2", cleanSource)

	code, out, errOut := runCLI(t, "-stdout", "-format", "json", src)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "# brake.0.prop1\n(F (0 p1) (< x1 0))\n")

	var doc struct {
		Summary struct {
			Artifacts int `json:"artifacts"`
		} `json:"summary"`
	}
	start := bytes.IndexByte([]byte(errOut), '{')
	require.GreaterOrEqual(t, start, 0, "json report expected on stderr")
	require.NoError(t, json.NewDecoder(bytes.NewBufferString(errOut[start:])).Decode(&doc))
	assert.Equal(t, 1, doc.Summary.Artifacts)
}

func TestRun_MissingInput(t *testing.T) {
	code, _, _ := runCLI(t, filepath.Join(t.TempDir(), "missing.sl2"))
	assert.Equal(t, exitFailure, code)
}

func TestRun_ExplicitConfigMustExist(t *testing.T) {
	code, _, errOut := runCLI(t, "-config", filepath.Join(t.TempDir(), "nope.toml"), "x.sl2")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "failed to load config")
}

func TestRun_HistoryListing(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "brake.sl2", cleanSource)
	cfgPath := filepath.Join(dir, "sl2c.toml")
	cfg := "[output]\ndir = " + quote(filepath.Join(dir, "out")) + "\n\n" +
		"[history]\nenabled = true\npath = " + quote(filepath.Join(dir, "history.db")) + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	code, _, _ := runCLI(t, "-config", cfgPath, src)
	require.Equal(t, exitOK, code)

	code, out, _ := runCLI(t, "-config", cfgPath, "-history", "5")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "brake.sl2")
	assert.Contains(t, out, "1 artefact")
	assert.Contains(t, out, "ok")
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
