// Package semantic checks an SL2 specification and classifies its identifiers.
//
// Analysis runs in passes: declarations, property bodies, alias cycles,
// evaluations. Every problem becomes a diagnostic; nothing stops early.
package semantic

import (
	"strings"

	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/engine/ast"
)

// PropertyInfo is a property after analysis.
type PropertyInfo struct {
	Name string
	Pos  ast.Pos
	// Body has every identifier resolved.
	Body        ast.Expr
	Diagnostics cerrors.Diagnostics
	Cyclic      bool
	// Tainted is set when the property or anything it references is invalid.
	Tainted bool
}

// EvaluationInfo is one evaluation request after analysis.
type EvaluationInfo struct {
	Index  int
	Eval   *ast.Evaluation
	Target *PropertyInfo
	// FreeParams lists the target's parameters in first-occurrence order.
	FreeParams []string
	// Signals is the variable order: the explicit on-list when present,
	// otherwise first occurrence through alias traversal.
	Signals     []string
	Diagnostics cerrors.Diagnostics
	Valid       bool
}

// Program is the typed result of analysis.
type Program struct {
	Spec        *ast.Spec
	Symbols     *SymbolTable
	Graph       *AliasGraph
	Properties  []*PropertyInfo
	Evaluations []*EvaluationInfo
	byName      map[string]*PropertyInfo
}

func (p *Program) Property(name string) (*PropertyInfo, bool) {
	info, ok := p.byName[name]
	return info, ok
}

type analyzer struct {
	symbols *SymbolTable
	graph   *AliasGraph
	props   map[string]*PropertyInfo
	// broken holds property names whose statement was dropped by the parser.
	broken map[string]bool

	probMemo   map[string]bool
	taintMemo  map[string]bool
	paramMemo  map[string][]string
	signalMemo map[string][]string
	busy       map[string]bool
}

// Analyze checks spec and returns the resolved program with all diagnostics.
func Analyze(spec *ast.Spec) (*Program, cerrors.Diagnostics) {
	a := &analyzer{
		symbols:    NewSymbolTable(),
		graph:      NewAliasGraph(),
		props:      make(map[string]*PropertyInfo),
		broken:     make(map[string]bool),
		probMemo:   make(map[string]bool),
		taintMemo:  make(map[string]bool),
		paramMemo:  make(map[string][]string),
		signalMemo: make(map[string][]string),
		busy:       make(map[string]bool),
	}
	prog := &Program{
		Spec:    &ast.Spec{Decls: spec.Decls, Evals: spec.Evals},
		Symbols: a.symbols,
		Graph:   a.graph,
		byName:  a.props,
	}

	var diags cerrors.Diagnostics

	// Declarations.
	for _, decl := range spec.Decls {
		cat := declCategory(decl.Kind)
		for _, name := range decl.Names {
			if d, ok := a.declare(name, cat); !ok {
				diags = append(diags, d)
			}
		}
	}

	// Property names first so bodies may reference later properties.
	var registered []*ast.Property
	for _, prop := range spec.Props {
		if d, ok := a.declare(prop.Name, CatProperty); !ok {
			diags = append(diags, d)
			continue
		}
		a.graph.AddNode(prop.Name.Text)
		registered = append(registered, prop)
	}

	// Dropped properties stay known so later references do not read as
	// undeclared. A name that is already taken keeps its first meaning.
	for _, name := range spec.Broken {
		if _, ok := a.declare(name, CatProperty); !ok {
			continue
		}
		a.graph.AddNode(name.Text)
		a.broken[name.Text] = true
	}

	// Property bodies.
	for _, prop := range registered {
		s := &scope{a: a, owner: prop.Name.Text}
		info := &PropertyInfo{Name: prop.Name.Text, Pos: prop.Name.Pos, Body: s.resolve(prop.Body)}
		info.Diagnostics = s.diags
		a.props[info.Name] = info
		prog.Properties = append(prog.Properties, info)
		prog.Spec.Props = append(prog.Spec.Props, &ast.Property{Pos: prop.Pos, Name: prop.Name, Body: info.Body})
	}
	for _, info := range prog.Properties {
		info.Diagnostics = append(info.Diagnostics, a.checkProb(info)...)
		diags = append(diags, info.Diagnostics...)
	}

	// Alias cycles.
	for _, cycle := range a.graph.Cycles() {
		for _, name := range cycle {
			a.props[name].Cyclic = true
		}
		head := a.props[cycle[0]]
		diags = append(diags, cerrors.NewDiagnostic(cerrors.KindCyclicAlias, head.Pos,
			"property aliases form a cycle: %s", strings.Join(cycle, " -> ")).
			WithContext(cerrors.CtxChain, cycle))
	}
	for _, info := range prog.Properties {
		info.Tainted = a.tainted(info.Name)
	}

	// Evaluations.
	for i, eval := range spec.Evals {
		info := a.evaluation(i, eval)
		prog.Evaluations = append(prog.Evaluations, info)
		diags = append(diags, info.Diagnostics...)
	}

	return prog, diags
}

func declCategory(kind ast.DeclKind) Category {
	switch kind {
	case ast.DeclProbSignal:
		return CatProbSignal
	case ast.DeclParam:
		return CatParam
	}
	return CatSignal
}

func (a *analyzer) declare(name ast.Name, cat Category) (cerrors.Diagnostic, bool) {
	first, ok := a.symbols.Declare(name.Text, cat, name.Pos)
	if ok {
		return cerrors.Diagnostic{}, true
	}
	return cerrors.NewDiagnostic(cerrors.KindRedeclaration, name.Pos,
		"%q is already declared as a %s at %s", name.Text, first.Category, first.Pos).
		WithContext(cerrors.CtxName, name.Text).
		WithContext(cerrors.CtxFirst, first.Pos.String()), false
}

// checkProb reports every Pr whose operand reaches no probabilistic signal.
func (a *analyzer) checkProb(info *PropertyInfo) cerrors.Diagnostics {
	var diags cerrors.Diagnostics
	ast.Walk(info.Body, func(e ast.Expr) bool {
		if pr, ok := e.(*ast.Prob); ok && !a.mentionsProb(pr.Operand) {
			diags = append(diags, cerrors.NewDiagnostic(cerrors.KindNonProbabilisticPr, pr.Pos,
				"Pr applied to a formula that mentions no probabilistic signal"))
		}
		return true
	})
	return diags
}

func (a *analyzer) mentionsProb(e ast.Expr) bool {
	found := false
	ast.Walk(e, func(n ast.Expr) bool {
		if found {
			return false
		}
		switch ref := n.(type) {
		case *ast.SignalRef:
			found = ref.Probabilistic
		case *ast.PropRef:
			found = a.propMentionsProb(ref.Name)
		}
		return !found
	})
	return found
}

func (a *analyzer) propMentionsProb(name string) bool {
	if v, ok := a.probMemo[name]; ok {
		return v
	}
	if a.broken[name] {
		// The body is unknown, so Pr over it is not reported.
		return true
	}
	info, ok := a.props[name]
	if !ok || a.busy[name] {
		return false
	}
	a.busy[name] = true
	v := a.mentionsProb(info.Body)
	delete(a.busy, name)
	a.probMemo[name] = v
	return v
}

func (a *analyzer) tainted(name string) bool {
	if v, ok := a.taintMemo[name]; ok {
		return v
	}
	info, ok := a.props[name]
	if !ok {
		return true
	}
	if info.Cyclic || len(info.Diagnostics) > 0 {
		a.taintMemo[name] = true
		return true
	}
	// Acyclic from here on, so the recursion terminates.
	v := false
	for _, dep := range a.graph.Edges(name) {
		if a.tainted(dep) {
			v = true
			break
		}
	}
	a.taintMemo[name] = v
	return v
}
