package translator

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/engine/ast"
	"sl2c/internal/engine/parser"
	"sl2c/internal/engine/semantic"
	"sl2c/internal/engine/sl1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateScenarios(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		formula string
		params  string
	}{
		{
			name: "minimal signal property",
			src: `let signal s1;
let param p1;
prop1 := F[0,p1] s1 < 0;
eval prop1 with p1 in [0, 0.5]`,
			formula: "(F (0 p1) (< x1 0))",
			params:  "p1 0 0.5\n",
		},
		{
			name: "global with conjunction of parameters",
			src: `let param p1, p2;
let signal s1;
prop1 := G[8,12] (p1 and p2);
eval prop1 with p1 in [5, 8], p2 in [7, inf]`,
			formula: "(G (8 12) (and p1 p2))",
			params:  "p1 5 8\np2 7\n",
		},
		{
			name: "alias inlining with two signals",
			src: `let signal s1, s2;
let param p1;
inner := s1 + s2 > 0;
outer := F[0,p1] inner;
eval outer with p1 in [0, 1]`,
			formula: "(F (0 p1) (> (+ x1 x2) 0))",
			params:  "p1 0 1\n",
		},
		{
			name: "probabilistic",
			src: `let probabilistic signal ps1;
prop := Pr (F ps1 > 0);
eval prop with`,
			formula: "(Pr (F (0 inf) (> x1 0)))",
			params:  "",
		},
		{
			name: "until implies and aggregate",
			src: `let signal a, b;
let param w;
agg := on [0, w] Int (a - b) <> 0;
prop := a > 1 -> G[0, 5] (b >= -inf U agg);
eval prop with w in [-inf, 3]`,
			formula: "(-> (> x1 1) (G (0 5) (StlUntil (0 inf) (>= x2 -inf) (On (0 w) (Int (!= (- x1 x2) 0))))))",
			params:  "w 3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Translate(tt.src)
			require.Empty(t, res.Diagnostics.Strings())
			require.Len(t, res.Artifacts, 1)
			assert.Equal(t, tt.formula, res.Artifacts[0].Formula)
			assert.Equal(t, tt.params, res.Artifacts[0].Params)
			assert.True(t, res.OK())
		})
	}
}

func TestTranslateEmptyIntervalRejected(t *testing.T) {
	res := Translate(`let signal s1; prop := F[9,8] s1 < 0; eval prop with`)
	assert.Empty(t, res.Artifacts)
	require.Len(t, res.Diagnostics, 1)
	msg := res.Diagnostics[0].String()
	assert.True(t, strings.HasPrefix(msg, "EmptyInterval at 1:"), msg)
	assert.Contains(t, msg, `"[9,8]"`)
}

func TestTranslateCyclicAliasRejected(t *testing.T) {
	res := Translate(`a := F b;
b := G a;
eval a with
eval b with`)
	assert.Empty(t, res.Artifacts)
	require.True(t, res.Diagnostics.HasKind(cerrors.KindCyclicAlias))
	cycle := res.Diagnostics.OfKind(cerrors.KindCyclicAlias)[0]
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Context[cerrors.CtxChain])
}

func TestTranslateKeepsValidEvaluations(t *testing.T) {
	res := Translate(`let signal s1;
let param p;
good := F s1 > 0;
bad := G[0, p] s1 > 0;
eval bad with
eval good with
eval good with`)
	assert.Equal(t, []cerrors.Kind{cerrors.KindMissingBinding}, kinds(res.Diagnostics))
	require.Len(t, res.Artifacts, 2)
	assert.Equal(t, 1, res.Artifacts[0].Index)
	assert.Equal(t, 2, res.Artifacts[1].Index)
	assert.Equal(t, "good", res.Artifacts[0].Property)

	// identical requests give byte-identical artefacts
	first, second := res.Artifacts[0], res.Artifacts[1]
	assert.Equal(t, first.Formula, second.Formula)
	assert.Equal(t, first.Params, second.Params)
}

func TestTranslateLexicalErrorStillTranslates(t *testing.T) {
	res := Translate("let signal s1;\nq := s1 $ 1;\np := s1 > 0;\neval p with")
	assert.Equal(t, []cerrors.Kind{cerrors.KindLexical}, kinds(res.Diagnostics))
	assert.Equal(t, "LexicalError at 2:9: unexpected character '$'", res.Diagnostics[0].String())
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, "p", res.Artifacts[0].Property)
	assert.Equal(t, "(> x1 0)", res.Artifacts[0].Formula)
	assert.False(t, res.OK())
}

func TestTranslateIllegalCharacterDropsItsStatement(t *testing.T) {
	res := Translate("let signal s1;\np := !(s1 > 0);\neval p with")
	assert.Empty(t, res.Artifacts)
	require.Equal(t, []cerrors.Kind{cerrors.KindLexical}, kinds(res.Diagnostics))
	assert.Equal(t, "LexicalError at 2:6: unexpected character '!'", res.Diagnostics[0].String())
}

func TestTranslateDroppedPropertyIsNotUndeclared(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind cerrors.Kind
	}{
		{
			name: "syntax error",
			src:  "let signal s1;\np := s1 > ;\nq := p and s1 > 1;\neval p with\neval q with",
			kind: cerrors.KindSyntax,
		},
		{
			name: "illegal character",
			src:  "let signal s1;\np := s1 # 0;\nq := p and s1 > 1;\neval p with\neval q with",
			kind: cerrors.KindLexical,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Translate(tt.src)
			assert.Equal(t, []cerrors.Kind{tt.kind}, kinds(res.Diagnostics))
			assert.Empty(t, res.Artifacts)
		})
	}
}

func TestLowerAllReportsLoweringFailure(t *testing.T) {
	spec, diags := parser.ParseString("let signal s1;\np := s1 > 0;\neval p with")
	require.Empty(t, diags)
	prog, diags := semantic.Analyze(spec)
	require.Empty(t, diags)
	require.True(t, prog.Evaluations[0].Valid)

	prog.Evaluations[0].Target.Body = &ast.Ident{Name: "ghost"}

	lowered, diags := lowerAll(prog)
	assert.Empty(t, lowered)
	require.Len(t, diags, 1)
	assert.Equal(t, cerrors.KindInternal, diags[0].Kind)
	assert.Equal(t, cerrors.Position{Line: 3, Column: 6}, diags[0].Pos)
	assert.Contains(t, diags[0].Message, `unresolved identifier "ghost"`)
	assert.Equal(t, 0, diags[0].Context[cerrors.CtxEval])
}

func TestTranslateSyntaxRecovery(t *testing.T) {
	res := Translate(`let signal s1;
broken := s1 > ;
fine := s1 > 2;
eval fine with`)
	assert.Equal(t, []cerrors.Kind{cerrors.KindSyntax}, kinds(res.Diagnostics))
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, "(> x1 2)", res.Artifacts[0].Formula)
}

func TestTranslateVariableTable(t *testing.T) {
	res := Translate(`let signal speed, rpm;
let probabilistic signal risk;
p := Pr (rpm > 3000 and risk > 0.5) or speed < 1;
eval p with
eval p on speed, rpm, risk with`)
	require.Len(t, res.Artifacts, 2)
	assert.Equal(t, "x1 rpm\nx2 risk\nx3 speed\n", res.Artifacts[0].VariablesText())
	assert.Equal(t, "(or (Pr (and (> x1 3000) (> x2 0.5))) (< x3 1))", res.Artifacts[0].Formula)
	assert.Equal(t, "(or (Pr (and (> x2 3000) (> x3 0.5))) (< x1 1))", res.Artifacts[1].Formula)
}

const invariantSource = `let signal s1, s2, s3;
let probabilistic signal ps;
let param lo, hi, k;
base := s3 * 2 > k;
chain := F[lo, hi] (base U[0, 4] s1 <= s2);
prob := Pr G ps > 0.1;
agg := on [lo, 10] Der s2 < 0;
top := chain and (prob or not agg);
eval top with lo in [0, 1], hi in [2, inf], k in [-inf, inf]
eval agg with lo in [0, 0]
eval base with k in [1, 1]`

func TestTranslateInvariants(t *testing.T) {
	res := Translate(invariantSource)
	require.Empty(t, res.Diagnostics.Strings())
	require.Len(t, res.Artifacts, 3)

	for _, art := range res.Artifacts {
		t.Run(art.Property, func(t *testing.T) {
			heads, leaves := scan(art.Formula)

			for _, h := range heads {
				assert.True(t, sl1.Head(h).Valid(), "head %q", h)
			}

			var indices []int
			params := map[string]bool{}
			for _, leaf := range leaves {
				if m := varPattern.FindStringSubmatch(leaf); m != nil {
					n, _ := strconv.Atoi(m[1])
					indices = append(indices, n)
					continue
				}
				if _, err := strconv.ParseFloat(leaf, 64); err == nil || leaf == "true" || leaf == "false" {
					continue
				}
				params[leaf] = true
			}

			// variable numbering is gap-free from 1
			sort.Ints(indices)
			distinct := dedupe(indices)
			for i, n := range distinct {
				assert.Equal(t, i+1, n)
			}
			assert.Len(t, art.Variables, len(distinct))

			// every symbolic parameter leads exactly one params line
			firsts := map[string]int{}
			for _, line := range strings.Split(strings.TrimSuffix(art.Params, "\n"), "\n") {
				if line != "" {
					firsts[strings.Fields(line)[0]]++
				}
			}
			for p := range params {
				assert.Equal(t, 1, firsts[p], "parameter %q", p)
			}
		})
	}
}

func TestTranslateConcurrent(t *testing.T) {
	want := Translate(invariantSource)

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Translate(invariantSource)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestTranslateObserved(t *testing.T) {
	var seen []Stage
	res := TranslateObserved(`let signal s; p := s > 0; eval p with`, func(stage Stage, run func()) {
		seen = append(seen, stage)
		run()
	})
	assert.Equal(t, Stages, seen)
	assert.Len(t, res.Artifacts, 1)
}

func TestTranslateEmptySource(t *testing.T) {
	res := Translate("")
	assert.Empty(t, res.Artifacts)
	assert.Empty(t, res.Diagnostics)
}

var varPattern = regexp.MustCompile(`^x(\d+)$`)

// scan splits an SL1 formula into head tokens and leaf tokens. Interval
// contents count as leaves.
func scan(formula string) (heads, leaves []string) {
	fields := strings.Fields(strings.NewReplacer("(", " ( ", ")", " ) ").Replace(formula))
	expectInterval := false
	for i := 0; i < len(fields); i++ {
		switch f := fields[i]; f {
		case "(":
			if expectInterval {
				expectInterval = false
				continue
			}
			i++
			heads = append(heads, fields[i])
			expectInterval = sl1.Head(fields[i]).Temporal()
		case ")":
		default:
			leaves = append(leaves, f)
		}
	}
	return heads, leaves
}

func dedupe(sorted []int) []int {
	var out []int
	for i, n := range sorted {
		if i == 0 || n != sorted[i-1] {
			out = append(out, n)
		}
	}
	return out
}

func kinds(diags cerrors.Diagnostics) []cerrors.Kind {
	var out []cerrors.Kind
	for _, d := range diags {
		out = append(out, d.Kind)
	}
	return out
}
