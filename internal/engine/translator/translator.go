// Package translator is the single entry point of the SL2 to SL1 pipeline:
// lex, parse, analyse, then lower and emit every evaluation that passed.
//
// Translate holds no state between calls and is safe for concurrent use.
package translator

import (
	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/engine/ast"
	"sl2c/internal/engine/emit"
	"sl2c/internal/engine/lexer"
	"sl2c/internal/engine/lower"
	"sl2c/internal/engine/parser"
	"sl2c/internal/engine/semantic"
)

// Artifact is the output of one evaluation request.
type Artifact struct {
	// Property is the evaluated property and Index the evaluation's
	// position among all eval statements of the source.
	Property  string
	Index     int
	Formula   string
	Params    string
	Variables []lower.Variable
}

// VariablesText renders the variable table as "x<i> signal" lines.
func (a Artifact) VariablesText() string {
	return emit.Variables(a.Variables)
}

type Result struct {
	Artifacts   []Artifact
	Diagnostics cerrors.Diagnostics
}

// OK reports whether the source produced no diagnostics.
func (r Result) OK() bool {
	return len(r.Diagnostics) == 0
}

type Stage string

const (
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageAnalyze Stage = "analyze"
	StageLower   Stage = "lower"
	StageEmit    Stage = "emit"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{StageLex, StageParse, StageAnalyze, StageLower, StageEmit}

// Observer wraps the execution of one stage. It must call run exactly once.
type Observer func(stage Stage, run func())

// Translate runs the whole pipeline over src.
func Translate(src string) Result {
	return TranslateObserved(src, nil)
}

// TranslateObserved is Translate with every stage passed through observe,
// which lets callers time or trace stages without the core knowing about it.
func TranslateObserved(src string, observe Observer) Result {
	if observe == nil {
		observe = func(_ Stage, run func()) { run() }
	}

	var res Result

	var tokens []lexer.Token
	observe(StageLex, func() {
		var diags cerrors.Diagnostics
		tokens, diags = lexer.Tokenize(src)
		res.Diagnostics = append(res.Diagnostics, diags...)
	})

	var spec *ast.Spec
	observe(StageParse, func() {
		var diags cerrors.Diagnostics
		spec, diags = parser.Parse(tokens)
		res.Diagnostics = append(res.Diagnostics, diags...)
	})

	var prog *semantic.Program
	observe(StageAnalyze, func() {
		var diags cerrors.Diagnostics
		prog, diags = semantic.Analyze(spec)
		res.Diagnostics = append(res.Diagnostics, diags...)
	})

	var lowered []*lower.Evaluation
	observe(StageLower, func() {
		var diags cerrors.Diagnostics
		lowered, diags = lowerAll(prog)
		res.Diagnostics = append(res.Diagnostics, diags...)
	})

	observe(StageEmit, func() {
		for _, ev := range lowered {
			res.Artifacts = append(res.Artifacts, Artifact{
				Property:  ev.Property,
				Index:     ev.Index,
				Formula:   emit.Formula(ev.Formula),
				Params:    emit.Params(ev.Bindings),
				Variables: ev.Variables,
			})
		}
	})

	return res
}

// lowerAll lowers every valid evaluation. A lowering failure is reported
// against the evaluation target and the evaluation yields no artifact.
func lowerAll(prog *semantic.Program) ([]*lower.Evaluation, cerrors.Diagnostics) {
	var (
		out   []*lower.Evaluation
		diags cerrors.Diagnostics
	)
	for _, eval := range prog.Evaluations {
		if !eval.Valid {
			continue
		}
		ev, err := lower.Lower(prog, eval)
		if err != nil {
			target := eval.Eval.Target
			diags = append(diags, cerrors.NewDiagnostic(cerrors.KindInternal, target.Pos,
				"cannot lower evaluation of %q: %v", target.Text, err).
				WithContext(cerrors.CtxName, target.Text).
				WithContext(cerrors.CtxEval, eval.Index))
			continue
		}
		out = append(out, ev)
	}
	return out, diags
}
