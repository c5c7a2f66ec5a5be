package semantic

import (
	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/engine/ast"
)

func (a *analyzer) evaluation(index int, eval *ast.Evaluation) *EvaluationInfo {
	info := &EvaluationInfo{Index: index, Eval: eval}
	report := func(d cerrors.Diagnostic) {
		info.Diagnostics = append(info.Diagnostics, d.WithContext(cerrors.CtxEval, index))
	}

	target := eval.Target
	sym, ok := a.symbols.Lookup(target.Text)
	switch {
	case !ok:
		report(cerrors.NewDiagnostic(cerrors.KindUndeclared, target.Pos,
			"evaluation target %q is not declared", target.Text).WithContext(cerrors.CtxName, target.Text))
	case sym.Category != CatProperty:
		report(cerrors.NewDiagnostic(cerrors.KindCategoryMismatch, target.Pos,
			"evaluation target %q is a %s, expected a property", target.Text, sym.Category).WithContext(cerrors.CtxName, target.Text))
	default:
		info.Target = a.props[target.Text]
	}

	if info.Target != nil {
		info.FreeParams = a.freeParams(target.Text)
	}
	a.checkBindings(info, report)
	a.checkSignals(info, report)

	info.Valid = info.Target != nil && !info.Target.Tainted && len(info.Diagnostics) == 0
	return info
}

func (a *analyzer) checkBindings(info *EvaluationInfo, report func(cerrors.Diagnostic)) {
	free := make(map[string]bool, len(info.FreeParams))
	for _, p := range info.FreeParams {
		free[p] = true
	}

	bound := make(map[string]bool)
	for _, binding := range info.Eval.Bindings {
		name := binding.Name
		sym, ok := a.symbols.Lookup(name.Text)
		switch {
		case !ok:
			report(cerrors.NewDiagnostic(cerrors.KindUndeclared, name.Pos,
				"bound parameter %q is not declared", name.Text).WithContext(cerrors.CtxName, name.Text))
		case sym.Category != CatParam:
			report(cerrors.NewDiagnostic(cerrors.KindCategoryMismatch, name.Pos,
				"%q is a %s and cannot be bound", name.Text, sym.Category).WithContext(cerrors.CtxName, name.Text))
		case bound[name.Text]:
			report(cerrors.NewDiagnostic(cerrors.KindDuplicateBinding, name.Pos,
				"parameter %q is bound more than once", name.Text).WithContext(cerrors.CtxName, name.Text))
		case info.Target != nil && !free[name.Text]:
			report(cerrors.NewDiagnostic(cerrors.KindExtraBinding, name.Pos,
				"parameter %q is not free in %q", name.Text, info.Target.Name).WithContext(cerrors.CtxName, name.Text))
		}
		if ok && sym.Category == CatParam {
			bound[name.Text] = true
		}
		a.checkInterval(binding.Interval, report)
	}

	for _, p := range info.FreeParams {
		if !bound[p] {
			report(cerrors.NewDiagnostic(cerrors.KindMissingBinding, info.Eval.Target.Pos,
				"evaluation of %q does not bind parameter %q", info.Target.Name, p).WithContext(cerrors.CtxName, p))
		}
	}
}

// checkSignals validates an explicit on-list, which then fixes variable order.
func (a *analyzer) checkSignals(info *EvaluationInfo, report func(cerrors.Diagnostic)) {
	var reachable []string
	if info.Target != nil {
		reachable = a.signals(info.Target.Name)
	}
	if len(info.Eval.Signals) == 0 {
		info.Signals = reachable
		return
	}

	isReachable := make(map[string]bool, len(reachable))
	for _, s := range reachable {
		isReachable[s] = true
	}

	listed := make(map[string]bool)
	for _, name := range info.Eval.Signals {
		sym, ok := a.symbols.Lookup(name.Text)
		switch {
		case !ok:
			report(cerrors.NewDiagnostic(cerrors.KindUndeclared, name.Pos,
				"signal %q is not declared", name.Text).WithContext(cerrors.CtxName, name.Text))
			continue
		case !sym.Category.IsSignal():
			report(cerrors.NewDiagnostic(cerrors.KindCategoryMismatch, name.Pos,
				"%q is a %s, expected a signal", name.Text, sym.Category).WithContext(cerrors.CtxName, name.Text))
			continue
		case listed[name.Text]:
			report(cerrors.NewDiagnostic(cerrors.KindDuplicateBinding, name.Pos,
				"signal %q is listed more than once", name.Text).WithContext(cerrors.CtxName, name.Text))
			continue
		case info.Target != nil && !isReachable[name.Text]:
			report(cerrors.NewDiagnostic(cerrors.KindExtraBinding, name.Pos,
				"signal %q is not used by %q", name.Text, info.Target.Name).WithContext(cerrors.CtxName, name.Text))
		}
		listed[name.Text] = true
		info.Signals = append(info.Signals, name.Text)
	}

	for _, s := range reachable {
		if !listed[s] {
			report(cerrors.NewDiagnostic(cerrors.KindMissingBinding, info.Eval.Target.Pos,
				"signal %q used by %q is missing from the on-list", s, info.Target.Name).WithContext(cerrors.CtxName, s))
		}
	}
}

// freeParams returns the parameters reachable from a property, in first-occurrence order.
func (a *analyzer) freeParams(name string) []string {
	return a.reach(name, a.paramMemo, func(e ast.Expr, add func(string)) {
		if ref, ok := e.(*ast.ParamRef); ok {
			add(ref.Name)
		}
	}, func(b ast.Bound, add func(string)) {
		if b.IsParam() && a.symbols.Is(b.Name, CatParam) {
			add(b.Name)
		}
	})
}

// signals returns the signals reachable from a property, in first-occurrence order.
func (a *analyzer) signals(name string) []string {
	return a.reach(name, a.signalMemo, func(e ast.Expr, add func(string)) {
		if ref, ok := e.(*ast.SignalRef); ok {
			add(ref.Name)
		}
	}, nil)
}

func (a *analyzer) reach(name string, memo map[string][]string,
	onExpr func(ast.Expr, func(string)), onBound func(ast.Bound, func(string))) []string {
	if v, ok := memo[name]; ok {
		return v
	}
	info, ok := a.props[name]
	if !ok || a.busy[name] {
		return nil
	}
	a.busy[name] = true
	defer delete(a.busy, name)

	var (
		out  []string
		seen = make(map[string]bool)
	)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	var boundFn func(ast.Bound)
	if onBound != nil {
		boundFn = func(b ast.Bound) { onBound(b, add) }
	}
	ast.Inspect(info.Body, func(e ast.Expr) {
		if ref, ok := e.(*ast.PropRef); ok {
			for _, s := range a.reach(ref.Name, memo, onExpr, onBound) {
				add(s)
			}
			return
		}
		onExpr(e, add)
	}, boundFn)

	memo[name] = out
	return out
}
