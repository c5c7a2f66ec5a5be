package errors

import (
	"fmt"
	"sort"
)

// Kind classifies a diagnostic reported against SL2 source.
type Kind string

const (
	KindLexical            Kind = "LexicalError"
	KindSyntax             Kind = "SyntaxError"
	KindRedeclaration      Kind = "Redeclaration"
	KindUndeclared         Kind = "UndeclaredIdentifier"
	KindCategoryMismatch   Kind = "CategoryMismatch"
	KindEmptyInterval      Kind = "EmptyInterval"
	KindCyclicAlias        Kind = "CyclicPropertyAlias"
	KindMissingBinding     Kind = "MissingBinding"
	KindExtraBinding       Kind = "ExtraBinding"
	KindDuplicateBinding   Kind = "DuplicateBinding"
	KindNonProbabilisticPr Kind = "NonProbabilisticProbOperator"
	// KindInternal marks an evaluation that passed analysis but could not be
	// lowered. It points at a translator bug, not at the source.
	KindInternal Kind = "InternalError"
)

// AllKinds lists every diagnostic kind in taxonomy order.
var AllKinds = []Kind{
	KindLexical,
	KindSyntax,
	KindRedeclaration,
	KindUndeclared,
	KindCategoryMismatch,
	KindEmptyInterval,
	KindCyclicAlias,
	KindMissingBinding,
	KindExtraBinding,
	KindDuplicateBinding,
	KindNonProbabilisticPr,
	KindInternal,
}

// Position is a 1-based line/column location in SL2 source.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before orders positions by line, then column.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Diagnostic is a non-fatal problem found while translating SL2 source.
type Diagnostic struct {
	Kind    Kind
	Pos     Position
	Message string
	Context map[string]interface{}
}

const (
	CtxName     = "name"
	CtxChain    = "chain"
	CtxInterval = "interval"
	CtxGot      = "got"
	CtxExpected = "expected"
	CtxFirst    = "first"
	CtxEval     = "evaluation"
)

func NewDiagnostic(kind Kind, pos Position, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (d Diagnostic) WithContext(key string, value interface{}) Diagnostic {
	ctx := make(map[string]interface{}, len(d.Context)+1)
	for k, v := range d.Context {
		ctx[k] = v
	}
	ctx[key] = value
	d.Context = ctx
	return d
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %d:%d: %s", d.Kind, d.Pos.Line, d.Pos.Column, d.Message)
}

// Diagnostics is an ordered diagnostic list.
type Diagnostics []Diagnostic

func (ds Diagnostics) HasKind(kind Kind) bool {
	for _, d := range ds {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func (ds Diagnostics) OfKind(kind Kind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// CountByKind tallies diagnostics per kind.
func (ds Diagnostics) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, d := range ds {
		counts[d.Kind]++
	}
	return counts
}

// Sorted returns a copy ordered by source position; ties keep report order.
func (ds Diagnostics) Sorted() Diagnostics {
	out := append(Diagnostics(nil), ds...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos.Before(out[j].Pos)
	})
	return out
}

func (ds Diagnostics) Strings() []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.String())
	}
	return out
}
