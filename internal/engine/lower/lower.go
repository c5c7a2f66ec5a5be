// Package lower rewrites an analysed evaluation into a single SL1 tree:
// aliases are inlined, signals become positional variables and surface
// operators take their prefix spelling.
package lower

import (
	"fmt"

	"sl2c/internal/engine/ast"
	"sl2c/internal/engine/semantic"
	"sl2c/internal/engine/sl1"
)

// Variable maps a positional handle to the signal it stands for.
type Variable struct {
	Index  int
	Signal string
}

// Name is the handle as printed, x<Index>.
func (v Variable) Name() string {
	return fmt.Sprintf("x%d", v.Index)
}

// Binding is one parameter range in source order.
type Binding struct {
	Name     string
	Interval sl1.Interval
}

// Evaluation is the lowered form of one evaluation request.
type Evaluation struct {
	Property  string
	Index     int
	Formula   sl1.Node
	Variables []Variable
	Bindings  []Binding
}

// Lower rewrites one evaluation. It only accepts evaluations that passed
// analysis.
func Lower(prog *semantic.Program, eval *semantic.EvaluationInfo) (*Evaluation, error) {
	if eval == nil || !eval.Valid || eval.Target == nil {
		return nil, fmt.Errorf("lower: evaluation is not valid")
	}

	l := &lowerer{prog: prog, vars: make(map[string]int, len(eval.Signals))}
	out := &Evaluation{Property: eval.Target.Name, Index: eval.Index}
	for i, name := range eval.Signals {
		l.vars[name] = i + 1
		out.Variables = append(out.Variables, Variable{Index: i + 1, Signal: name})
	}

	formula, err := l.expr(eval.Target.Body)
	if err != nil {
		return nil, fmt.Errorf("lower %q: %w", eval.Target.Name, err)
	}
	out.Formula = formula

	for _, b := range eval.Eval.Bindings {
		out.Bindings = append(out.Bindings, Binding{Name: b.Name.Text, Interval: interval(b.Interval)})
	}
	return out, nil
}

type lowerer struct {
	prog  *semantic.Program
	vars  map[string]int
	depth int
}

// maxInlineDepth bounds alias inlining if the graph was not checked.
const maxInlineDepth = 1 << 12

func (l *lowerer) expr(e ast.Expr) (sl1.Node, error) {
	switch n := e.(type) {
	case *ast.SignalRef:
		idx, ok := l.vars[n.Name]
		if !ok {
			return nil, fmt.Errorf("signal %q has no variable", n.Name)
		}
		return &sl1.Var{Index: idx}, nil
	case *ast.ParamRef:
		return &sl1.Sym{Name: n.Name}, nil
	case *ast.PropRef:
		return l.inline(n.Name)
	case *ast.Number:
		return &sl1.Num{Value: n.Value}, nil
	case *ast.Bool:
		return &sl1.Bool{Value: n.Value}, nil
	case *ast.Arith:
		return l.apply(sl1.Head(n.Op), nil, n.Left, n.Right)
	case *ast.Compare:
		return l.apply(compareHead(n.Op), nil, n.Left, n.Right)
	case *ast.BoolBin:
		return l.apply(sl1.Head(n.Op), nil, n.Left, n.Right)
	case *ast.Not:
		return l.apply(sl1.HeadNot, nil, n.Operand)
	case *ast.Prob:
		return l.apply(sl1.HeadProb, nil, n.Operand)
	case *ast.Future:
		return l.apply(sl1.HeadFuture, optInterval(n.Interval), n.Operand)
	case *ast.Global:
		return l.apply(sl1.HeadGlobal, optInterval(n.Interval), n.Operand)
	case *ast.Until:
		return l.apply(sl1.HeadUntil, optInterval(n.Interval), n.Left, n.Right)
	case *ast.On:
		iv := interval(n.Interval)
		return l.apply(sl1.HeadOn, &iv, n.Body)
	case *ast.Aggregate:
		return l.apply(sl1.Head(n.Kind), nil, n.Operand)
	case *ast.Ident:
		return nil, fmt.Errorf("unresolved identifier %q", n.Name)
	}
	return nil, fmt.Errorf("unexpected node %T", e)
}

func (l *lowerer) apply(head sl1.Head, iv *sl1.Interval, operands ...ast.Expr) (sl1.Node, error) {
	out := &sl1.Apply{Head: head, Interval: iv, Args: make([]sl1.Node, 0, len(operands))}
	for _, operand := range operands {
		arg, err := l.expr(operand)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, arg)
	}
	return out, nil
}

// inline lowers the body of an aliased property in place of the reference.
// Every reference gets its own copy of the lowered tree.
func (l *lowerer) inline(name string) (sl1.Node, error) {
	info, ok := l.prog.Property(name)
	if !ok {
		return nil, fmt.Errorf("property %q is not defined", name)
	}
	if l.depth >= maxInlineDepth {
		return nil, fmt.Errorf("property %q: alias inlining too deep", name)
	}
	l.depth++
	defer func() { l.depth-- }()
	return l.expr(info.Body)
}

func compareHead(op ast.CompareOp) sl1.Head {
	if op == ast.NotEq {
		return sl1.HeadNotEq
	}
	return sl1.Head(op)
}

func optInterval(iv *ast.Interval) *sl1.Interval {
	out := sl1.DefaultInterval()
	if iv != nil {
		out = interval(*iv)
	}
	return &out
}

func interval(iv ast.Interval) sl1.Interval {
	return sl1.Interval{Lo: bound(iv.Lo), Hi: bound(iv.Hi)}
}

func bound(b ast.Bound) sl1.Bound {
	if b.IsParam() {
		return sl1.SymBound(b.Name)
	}
	return sl1.NumBound(b.Value)
}
