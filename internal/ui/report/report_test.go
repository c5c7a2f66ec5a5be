package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/core/ports"
	"sl2c/internal/data/history"
	"sl2c/internal/engine/translator"
)

const (
	cleanSource = `let signal s1;
let param p1;
prop1 := F[0,p1] s1 < 0;
eval prop1 with p1 in [0, 0.5]`
	lexErrSource = "let signal s1;\np := s1 > 0;$\neval p with"
)

func sampleResult() ports.TranslateResult {
	return ports.TranslateResult{
		Files: []ports.FileResult{
			{
				Path:    "/work/specs/clean.sl2",
				RunID:   "0b7c1f3e-aaaa-bbbb-cccc-000000000001",
				Result:  translator.Translate(cleanSource),
				Written: []string{"/work/out/clean.0.prop1.stl", "/work/out/clean.0.prop1.par"},
			},
			{
				Path:   "/work/specs/broken.sl2",
				Result: translator.Translate(lexErrSource),
			},
		},
		Duration: 12 * time.Millisecond,
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "/work/specs/clean.sl2")
	assert.Contains(t, out, "1 artefact (clean.0.prop1.stl, clean.0.prop1.par)")
	assert.Contains(t, out, "LexicalError at 2:13: unexpected character '$'")
	assert.Contains(t, out, "2 files, 2 artefacts, 1 diagnostic in 12ms")
	assert.NotContains(t, out, "\x1b[", "colour codes written to a non-terminal")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleResult()))

	var doc jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Files, 2)
	assert.Equal(t, jsonSummary{Files: 2, Artifacts: 2, Diagnostics: 1, DurationMS: 12}, doc.Summary)

	clean := doc.Files[0]
	require.Len(t, clean.Artifacts, 1)
	assert.Equal(t, "(F (0 p1) (< x1 0))", clean.Artifacts[0].Formula)
	assert.Equal(t, "p1 0 0.5\n", clean.Artifacts[0].Params)
	assert.Equal(t, map[string]string{"x1": "s1"}, clean.Artifacts[0].Variables)
	assert.Empty(t, clean.Diagnostics)

	broken := doc.Files[1]
	require.Len(t, broken.Diagnostics, 1)
	assert.Equal(t, "LexicalError", broken.Diagnostics[0].Kind)
	assert.Equal(t, 2, broken.Diagnostics[0].Line)
	assert.Equal(t, 13, broken.Diagnostics[0].Column)
}

func TestGenerateSARIF(t *testing.T) {
	data, err := GenerateSARIF("/work", sampleResult().Files)
	require.NoError(t, err)

	var doc sarifReport
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, sarifSchema, doc.Schema)
	assert.Equal(t, sarifVersion, doc.Version)
	require.Len(t, doc.Runs, 1)

	run := doc.Runs[0]
	assert.Equal(t, "sl2c", run.Tool.Driver.Name)
	require.Len(t, run.Tool.Driver.Rules, 1)
	assert.Equal(t, "SL2C001", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "LexicalError", run.Tool.Driver.Rules[0].Name)

	require.Len(t, run.Results, 1)
	res := run.Results[0]
	assert.Equal(t, "SL2C001", res.RuleID)
	assert.Equal(t, "error", res.Level)
	require.Len(t, res.Locations, 1)
	loc := res.Locations[0].PhysicalLocation
	assert.Equal(t, "specs/broken.sl2", loc.ArtifactLocation.URI)
	require.NotNil(t, loc.Region)
	assert.Equal(t, 2, loc.Region.StartLine)
	assert.Equal(t, 13, loc.Region.StartColumn)
}

func TestGenerateSARIF_Empty(t *testing.T) {
	data, err := GenerateSARIF("", nil)
	require.NoError(t, err)

	var doc sarifReport
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Runs, 1)
	assert.Empty(t, doc.Runs[0].Results)
	assert.Empty(t, doc.Runs[0].Tool.Driver.Rules)
}

func TestRuleIDsAreStable(t *testing.T) {
	assert.Equal(t, "SL2C001", RuleID(cerrors.KindLexical))
	assert.Equal(t, "SL2C007", RuleID(cerrors.KindCyclicAlias))
	assert.Equal(t, "SL2C011", RuleID(cerrors.KindNonProbabilisticPr))
	assert.Equal(t, "SL2C012", RuleID(cerrors.KindInternal))
	assert.Equal(t, "SL2C000", RuleID(cerrors.Kind("Unknown")))
	for _, kind := range cerrors.AllKinds {
		assert.NotEmpty(t, ruleDescriptions[kind], "missing description for %s", kind)
	}
}

func TestRender(t *testing.T) {
	for _, format := range []string{FormatText, FormatJSON, FormatSARIF} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, format, sampleResult()))
			assert.NotEmpty(t, buf.String())
		})
	}

	var buf bytes.Buffer
	assert.Error(t, Render(&buf, "yaml", sampleResult()))
}

func TestRenderRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRuns(&buf, nil))
	assert.Equal(t, "no recorded runs", strings.TrimSpace(buf.String()))

	runs := []history.Run{
		{
			ID:        "12345678-0000-0000-0000-000000000000",
			Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Source:    "brake.sl2",
			Artifacts: 0,
			Diagnostics: []history.Diagnostic{
				{Kind: "UndeclaredIdentifier", Line: 3, Column: 9, Message: "undeclared identifier 'v'"},
			},
		},
		{
			ID:        "abcdef01-0000-0000-0000-000000000000",
			Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			Source:    "speed.sl2",
			Artifacts: 2,
		},
	}
	buf.Reset()
	require.NoError(t, RenderRuns(&buf, runs))
	out := buf.String()
	assert.Contains(t, out, "12345678  brake.sl2  0 artefacts  1 diagnostic")
	assert.Contains(t, out, "UndeclaredIdentifier at 3:9: undeclared identifier 'v'")
	assert.Contains(t, out, "abcdef01  speed.sl2  2 artefacts  ok")
}
