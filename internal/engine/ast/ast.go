// Package ast defines the typed syntax tree of an SL2 specification.
//
// Formulae form a sealed sum type: every variant implements Expr through an
// unexported marker, so passes switch over a closed set of node types. Trees
// are never mutated after construction; passes build fresh trees.
package ast

import (
	cerrors "sl2c/internal/core/errors"
)

type Pos = cerrors.Position

// Expr is a path formula (φ) or a quantitative aggregate (ψ).
type Expr interface {
	Position() Pos
	expr()
}

// Ident is an identifier the parser could not classify. The analyser replaces
// it with SignalRef, ParamRef or PropRef.
type Ident struct {
	Pos  Pos
	Name string
}

type SignalRef struct {
	Pos           Pos
	Name          string
	Probabilistic bool
}

type ParamRef struct {
	Pos  Pos
	Name string
}

type PropRef struct {
	Pos  Pos
	Name string
}

type Number struct {
	Pos   Pos
	Value float64
}

type Bool struct {
	Pos   Pos
	Value bool
}

type Arith struct {
	Pos         Pos
	Op          ArithOp
	Left, Right Expr
}

type Compare struct {
	Pos         Pos
	Op          CompareOp
	Left, Right Expr
}

type BoolBin struct {
	Pos         Pos
	Op          BoolOp
	Left, Right Expr
}

type Not struct {
	Pos     Pos
	Operand Expr
}

type Prob struct {
	Pos     Pos
	Operand Expr
}

// Future is F; a nil Interval means unbounded.
type Future struct {
	Pos      Pos
	Interval *Interval
	Operand  Expr
}

// Global is G; a nil Interval means unbounded.
type Global struct {
	Pos      Pos
	Interval *Interval
	Operand  Expr
}

// Until is φ U ψ; a nil Interval means unbounded.
type Until struct {
	Pos         Pos
	Interval    *Interval
	Left, Right Expr
}

type On struct {
	Pos      Pos
	Interval Interval
	Body     *Aggregate
}

type Aggregate struct {
	Pos     Pos
	Kind    AggKind
	Operand Expr
}

func (e *Ident) Position() Pos     { return e.Pos }
func (e *SignalRef) Position() Pos { return e.Pos }
func (e *ParamRef) Position() Pos  { return e.Pos }
func (e *PropRef) Position() Pos   { return e.Pos }
func (e *Number) Position() Pos    { return e.Pos }
func (e *Bool) Position() Pos      { return e.Pos }
func (e *Arith) Position() Pos     { return e.Pos }
func (e *Compare) Position() Pos   { return e.Pos }
func (e *BoolBin) Position() Pos   { return e.Pos }
func (e *Not) Position() Pos       { return e.Pos }
func (e *Prob) Position() Pos      { return e.Pos }
func (e *Future) Position() Pos    { return e.Pos }
func (e *Global) Position() Pos    { return e.Pos }
func (e *Until) Position() Pos     { return e.Pos }
func (e *On) Position() Pos        { return e.Pos }
func (e *Aggregate) Position() Pos { return e.Pos }

func (*Ident) expr()     {}
func (*SignalRef) expr() {}
func (*ParamRef) expr()  {}
func (*PropRef) expr()   {}
func (*Number) expr()    {}
func (*Bool) expr()      {}
func (*Arith) expr()     {}
func (*Compare) expr()   {}
func (*BoolBin) expr()   {}
func (*Not) expr()       {}
func (*Prob) expr()      {}
func (*Future) expr()    {}
func (*Global) expr()    {}
func (*Until) expr()     {}
func (*On) expr()        {}
func (*Aggregate) expr() {}

// Bound is one end of an interval: a literal or a parameter name.
type Bound struct {
	Pos   Pos
	Name  string
	Value float64
}

// IsParam reports whether the bound names a parameter.
func (b Bound) IsParam() bool {
	return b.Name != ""
}

type Interval struct {
	Pos    Pos
	Lo, Hi Bound
}

// IsLiteral reports whether both bounds are numbers.
func (iv Interval) IsLiteral() bool {
	return !iv.Lo.IsParam() && !iv.Hi.IsParam()
}

// Empty reports a literal interval with lo > hi.
func (iv Interval) Empty() bool {
	return iv.IsLiteral() && iv.Lo.Value > iv.Hi.Value
}

type DeclKind int

const (
	DeclSignal DeclKind = iota
	DeclProbSignal
	DeclParam
)

func (k DeclKind) String() string {
	switch k {
	case DeclSignal:
		return "signal"
	case DeclProbSignal:
		return "probabilistic signal"
	case DeclParam:
		return "param"
	}
	return "unknown"
}

// Name is an identifier occurrence in a declaration, property head or evaluation.
type Name struct {
	Pos  Pos
	Text string
}

type Decl struct {
	Pos   Pos
	Kind  DeclKind
	Names []Name
}

type Property struct {
	Pos  Pos
	Name Name
	Body Expr
}

type Binding struct {
	Name     Name
	Interval Interval
}

type Evaluation struct {
	Pos      Pos
	Target   Name
	Signals  []Name
	Bindings []Binding
}

// Spec is a whole SL2 source. Each slice keeps source order.
type Spec struct {
	Decls []*Decl
	Props []*Property
	Evals []*Evaluation
	// Broken names the heads of property statements that failed to lex or
	// parse. They are known to exist but have no body.
	Broken []Name
}
