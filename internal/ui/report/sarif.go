package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/core/ports"
	"sl2c/internal/shared/version"
)

// SARIF v2.1.0 schema, see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

var ruleDescriptions = map[cerrors.Kind]string{
	cerrors.KindLexical:            "A character sequence does not form an SL2 token.",
	cerrors.KindSyntax:             "A statement does not match the SL2 grammar.",
	cerrors.KindRedeclaration:      "An identifier is declared more than once.",
	cerrors.KindUndeclared:         "An identifier is used without a declaration.",
	cerrors.KindCategoryMismatch:   "An identifier is used where a different declaration category is required.",
	cerrors.KindEmptyInterval:      "An interval has a lower bound greater than its upper bound.",
	cerrors.KindCyclicAlias:        "Property aliases reference each other in a cycle.",
	cerrors.KindMissingBinding:     "A free parameter or signal of an evaluation is not bound.",
	cerrors.KindExtraBinding:       "An evaluation binds a name its property does not use.",
	cerrors.KindDuplicateBinding:   "An evaluation binds the same name twice.",
	cerrors.KindNonProbabilisticPr: "Pr is applied to a formula over non-probabilistic signals.",
	cerrors.KindInternal:           "An evaluation passed analysis but could not be lowered.",
}

// RuleID maps a diagnostic kind to its stable SARIF rule id, SL2C001 for the
// first kind of the taxonomy onwards.
func RuleID(kind cerrors.Kind) string {
	for i, k := range cerrors.AllKinds {
		if k == kind {
			return fmt.Sprintf("SL2C%03d", i+1)
		}
	}
	return "SL2C000"
}

// GenerateSARIF builds a SARIF v2.1.0 document from per-file diagnostics.
// File URIs are made relative to projectRoot when it is set.
func GenerateSARIF(projectRoot string, files []ports.FileResult) ([]byte, error) {
	seen := make(map[cerrors.Kind]bool)
	results := make([]sarifResult, 0)

	for _, f := range files {
		uri := relativeURI(projectRoot, f.Path)
		for _, d := range f.Result.Diagnostics.Sorted() {
			seen[d.Kind] = true
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{
						URI:       uri,
						URIBaseID: "%SRCROOT%",
					},
				},
			}
			if d.Pos.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine:   d.Pos.Line,
					StartColumn: d.Pos.Column,
				}
			}
			results = append(results, sarifResult{
				RuleID:    RuleID(d.Kind),
				Level:     "error",
				Message:   sarifMessage{Text: d.Message},
				Locations: []sarifLocation{loc},
			})
		}
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "sl2c",
						Version: version.Version,
						Rules:   buildSARIFRules(seen),
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

// buildSARIFRules returns only the rules that are relevant for the given findings.
func buildSARIFRules(seen map[cerrors.Kind]bool) []sarifRule {
	rules := make([]sarifRule, 0, len(seen))
	for _, kind := range cerrors.AllKinds {
		if !seen[kind] {
			continue
		}
		rules = append(rules, sarifRule{
			ID:               RuleID(kind),
			Name:             string(kind),
			ShortDescription: sarifMessage{Text: ruleDescriptions[kind]},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
		})
	}
	return rules
}

// relativeURI converts an absolute file path to a forward-slash relative URI
// anchored at projectRoot. If the path is already relative or projectRoot is
// empty, the original path (with forward slashes) is returned.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		rel, err := filepath.Rel(projectRoot, filePath)
		if err == nil {
			filePath = rel
		}
	}
	return filepath.ToSlash(filePath)
}
