package ast

// Children returns the direct sub-formulae of e, left to right.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *Arith:
		return []Expr{n.Left, n.Right}
	case *Compare:
		return []Expr{n.Left, n.Right}
	case *BoolBin:
		return []Expr{n.Left, n.Right}
	case *Not:
		return []Expr{n.Operand}
	case *Prob:
		return []Expr{n.Operand}
	case *Future:
		return []Expr{n.Operand}
	case *Global:
		return []Expr{n.Operand}
	case *Until:
		return []Expr{n.Left, n.Right}
	case *On:
		return []Expr{n.Body}
	case *Aggregate:
		return []Expr{n.Operand}
	}
	return nil
}

// IntervalOf returns the interval attached directly to e, if any.
func IntervalOf(e Expr) (Interval, bool) {
	switch n := e.(type) {
	case *Future:
		if n.Interval != nil {
			return *n.Interval, true
		}
	case *Global:
		if n.Interval != nil {
			return *n.Interval, true
		}
	case *Until:
		if n.Interval != nil {
			return *n.Interval, true
		}
	case *On:
		return n.Interval, true
	}
	return Interval{}, false
}

// Walk visits e and its descendants in pre-order, left to right. Returning
// false from fn skips the node's children.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range Children(e) {
		Walk(child, fn)
	}
}

// Inspect visits e in source order: every node before its operands, and
// interval bounds where they appear in the text (after the left operand of U,
// before the operand of F, G and on).
func Inspect(e Expr, onExpr func(Expr), onBound func(Bound)) {
	if e == nil {
		return
	}
	onExpr(e)
	bounds := func(iv *Interval) {
		if iv != nil && onBound != nil {
			onBound(iv.Lo)
			onBound(iv.Hi)
		}
	}
	switch n := e.(type) {
	case *Until:
		Inspect(n.Left, onExpr, onBound)
		bounds(n.Interval)
		Inspect(n.Right, onExpr, onBound)
	case *Future:
		bounds(n.Interval)
		Inspect(n.Operand, onExpr, onBound)
	case *Global:
		bounds(n.Interval)
		Inspect(n.Operand, onExpr, onBound)
	case *On:
		bounds(&n.Interval)
		Inspect(n.Body, onExpr, onBound)
	default:
		for _, child := range Children(e) {
			Inspect(child, onExpr, onBound)
		}
	}
}
