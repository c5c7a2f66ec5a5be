// Package sl1 models the prefix-notation formulae consumed by the STL
// monitoring engine. Trees are built by the lowering pass and printed by the
// emitter; they are never mutated after construction.
package sl1

import "math"

// Node is one SL1 formula.
type Node interface {
	node()
}

// Var is the positional trace column x<Index>. Indices start at 1.
type Var struct {
	Index int
}

type Num struct {
	Value float64
}

type Bool struct {
	Value bool
}

// Sym is a parameter kept symbolic in the formula text.
type Sym struct {
	Name string
}

// Apply is a compound node. Interval is set for temporal heads only.
type Apply struct {
	Head     Head
	Interval *Interval
	Args     []Node
}

func (*Var) node()   {}
func (*Num) node()   {}
func (*Bool) node()  {}
func (*Sym) node()   {}
func (*Apply) node() {}

// Bound is a numeric interval end or a parameter name.
type Bound struct {
	Name  string
	Value float64
}

func NumBound(v float64) Bound   { return Bound{Value: v} }
func SymBound(name string) Bound { return Bound{Name: name} }

func (b Bound) IsSym() bool {
	return b.Name != ""
}

// IsInf reports a literal +inf (or -inf when negative is set).
func (b Bound) IsInf(negative bool) bool {
	if b.IsSym() {
		return false
	}
	if negative {
		return math.IsInf(b.Value, -1)
	}
	return math.IsInf(b.Value, 1)
}

type Interval struct {
	Lo, Hi Bound
}

// DefaultInterval is the window given to F, G and StlUntil written without one.
func DefaultInterval() Interval {
	return Interval{Lo: NumBound(0), Hi: NumBound(math.Inf(1))}
}

// Walk visits n and its arguments depth-first, parents first.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	if app, ok := n.(*Apply); ok {
		for _, arg := range app.Args {
			Walk(arg, fn)
		}
	}
}
