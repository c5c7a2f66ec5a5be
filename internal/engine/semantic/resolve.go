package semantic

import (
	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/engine/ast"
)

// scope resolves identifiers inside one property body and records the
// diagnostics that belong to it.
type scope struct {
	a     *analyzer
	owner string
	diags cerrors.Diagnostics
}

func (s *scope) report(d cerrors.Diagnostic) {
	s.diags = append(s.diags, d)
}

// resolve returns a fresh tree in which every Ident has been classified.
func (s *scope) resolve(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Ident:
		return s.ident(n)
	case *ast.Arith:
		return &ast.Arith{Pos: n.Pos, Op: n.Op, Left: s.resolve(n.Left), Right: s.resolve(n.Right)}
	case *ast.Compare:
		return &ast.Compare{Pos: n.Pos, Op: n.Op, Left: s.resolve(n.Left), Right: s.resolve(n.Right)}
	case *ast.BoolBin:
		return &ast.BoolBin{Pos: n.Pos, Op: n.Op, Left: s.resolve(n.Left), Right: s.resolve(n.Right)}
	case *ast.Not:
		return &ast.Not{Pos: n.Pos, Operand: s.resolve(n.Operand)}
	case *ast.Prob:
		return &ast.Prob{Pos: n.Pos, Operand: s.resolve(n.Operand)}
	case *ast.Future:
		return &ast.Future{Pos: n.Pos, Interval: s.optInterval(n.Interval), Operand: s.resolve(n.Operand)}
	case *ast.Global:
		return &ast.Global{Pos: n.Pos, Interval: s.optInterval(n.Interval), Operand: s.resolve(n.Operand)}
	case *ast.Until:
		left := s.resolve(n.Left)
		iv := s.optInterval(n.Interval)
		return &ast.Until{Pos: n.Pos, Interval: iv, Left: left, Right: s.resolve(n.Right)}
	case *ast.On:
		s.a.checkInterval(n.Interval, s.report)
		return &ast.On{Pos: n.Pos, Interval: n.Interval, Body: s.aggregate(n.Body)}
	case *ast.Aggregate:
		return s.aggregate(n)
	}
	// Literals and already-resolved references are immutable leaves.
	return e
}

func (s *scope) aggregate(n *ast.Aggregate) *ast.Aggregate {
	return &ast.Aggregate{Pos: n.Pos, Kind: n.Kind, Operand: s.resolve(n.Operand)}
}

func (s *scope) optInterval(iv *ast.Interval) *ast.Interval {
	if iv == nil {
		return nil
	}
	s.a.checkInterval(*iv, s.report)
	out := *iv
	return &out
}

func (s *scope) ident(n *ast.Ident) ast.Expr {
	sym, ok := s.a.symbols.Lookup(n.Name)
	if !ok {
		s.report(cerrors.NewDiagnostic(cerrors.KindUndeclared, n.Pos,
			"identifier %q is not declared", n.Name).WithContext(cerrors.CtxName, n.Name))
		return n
	}
	switch sym.Category {
	case CatSignal:
		return &ast.SignalRef{Pos: n.Pos, Name: n.Name}
	case CatProbSignal:
		return &ast.SignalRef{Pos: n.Pos, Name: n.Name, Probabilistic: true}
	case CatParam:
		return &ast.ParamRef{Pos: n.Pos, Name: n.Name}
	default:
		s.a.graph.AddEdge(s.owner, n.Name)
		return &ast.PropRef{Pos: n.Pos, Name: n.Name}
	}
}

// checkInterval validates identifier bounds and literal ordering.
func (a *analyzer) checkInterval(iv ast.Interval, report func(cerrors.Diagnostic)) {
	for _, bound := range []ast.Bound{iv.Lo, iv.Hi} {
		if !bound.IsParam() {
			continue
		}
		sym, ok := a.symbols.Lookup(bound.Name)
		switch {
		case !ok:
			report(cerrors.NewDiagnostic(cerrors.KindUndeclared, bound.Pos,
				"interval bound %q is not declared", bound.Name).WithContext(cerrors.CtxName, bound.Name))
		case sym.Category != CatParam:
			report(cerrors.NewDiagnostic(cerrors.KindCategoryMismatch, bound.Pos,
				"interval bound %q is a %s, expected a parameter", bound.Name, sym.Category).WithContext(cerrors.CtxName, bound.Name))
		}
	}
	if iv.Empty() {
		text := compactInterval(iv)
		report(cerrors.NewDiagnostic(cerrors.KindEmptyInterval, iv.Pos,
			"interval %q is empty: lower bound exceeds upper bound", text).WithContext(cerrors.CtxInterval, text))
	}
}

func compactInterval(iv ast.Interval) string {
	return "[" + ast.PrintBound(iv.Lo) + "," + ast.PrintBound(iv.Hi) + "]"
}
