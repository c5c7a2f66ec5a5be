package ast

import "math"

// Equal compares two formulae structurally, ignoring source positions.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Ident:
		y, ok := b.(*Ident)
		return ok && x.Name == y.Name
	case *SignalRef:
		y, ok := b.(*SignalRef)
		return ok && x.Name == y.Name && x.Probabilistic == y.Probabilistic
	case *ParamRef:
		y, ok := b.(*ParamRef)
		return ok && x.Name == y.Name
	case *PropRef:
		y, ok := b.(*PropRef)
		return ok && x.Name == y.Name
	case *Number:
		y, ok := b.(*Number)
		return ok && sameNumber(x.Value, y.Value)
	case *Bool:
		y, ok := b.(*Bool)
		return ok && x.Value == y.Value
	case *Arith:
		y, ok := b.(*Arith)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Compare:
		y, ok := b.(*Compare)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *BoolBin:
		y, ok := b.(*BoolBin)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Not:
		y, ok := b.(*Not)
		return ok && Equal(x.Operand, y.Operand)
	case *Prob:
		y, ok := b.(*Prob)
		return ok && Equal(x.Operand, y.Operand)
	case *Future:
		y, ok := b.(*Future)
		return ok && equalOptInterval(x.Interval, y.Interval) && Equal(x.Operand, y.Operand)
	case *Global:
		y, ok := b.(*Global)
		return ok && equalOptInterval(x.Interval, y.Interval) && Equal(x.Operand, y.Operand)
	case *Until:
		y, ok := b.(*Until)
		return ok && equalOptInterval(x.Interval, y.Interval) && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *On:
		y, ok := b.(*On)
		return ok && EqualInterval(x.Interval, y.Interval) && Equal(x.Body, y.Body)
	case *Aggregate:
		y, ok := b.(*Aggregate)
		return ok && x.Kind == y.Kind && Equal(x.Operand, y.Operand)
	}
	return false
}

// EqualInterval compares intervals ignoring positions.
func EqualInterval(a, b Interval) bool {
	return equalBound(a.Lo, b.Lo) && equalBound(a.Hi, b.Hi)
}

// EqualSpec compares whole specifications ignoring positions.
func EqualSpec(a, b *Spec) bool {
	if len(a.Decls) != len(b.Decls) || len(a.Props) != len(b.Props) || len(a.Evals) != len(b.Evals) {
		return false
	}
	for i := range a.Decls {
		if a.Decls[i].Kind != b.Decls[i].Kind || !equalNames(a.Decls[i].Names, b.Decls[i].Names) {
			return false
		}
	}
	for i := range a.Props {
		if a.Props[i].Name.Text != b.Props[i].Name.Text || !Equal(a.Props[i].Body, b.Props[i].Body) {
			return false
		}
	}
	for i := range a.Evals {
		x, y := a.Evals[i], b.Evals[i]
		if x.Target.Text != y.Target.Text || !equalNames(x.Signals, y.Signals) || len(x.Bindings) != len(y.Bindings) {
			return false
		}
		for j := range x.Bindings {
			if x.Bindings[j].Name.Text != y.Bindings[j].Name.Text || !EqualInterval(x.Bindings[j].Interval, y.Bindings[j].Interval) {
				return false
			}
		}
	}
	return true
}

func equalOptInterval(a, b *Interval) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return EqualInterval(*a, *b)
}

func equalBound(a, b Bound) bool {
	if a.IsParam() || b.IsParam() {
		return a.Name == b.Name
	}
	return sameNumber(a.Value, b.Value)
}

func equalNames(a, b []Name) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text {
			return false
		}
	}
	return true
}

func sameNumber(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
