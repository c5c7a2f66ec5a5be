package ast

import (
	"strings"

	"sl2c/internal/engine/lexer"
)

// Print renders spec as SL2 source. Compound formulae are fully
// parenthesised so re-parsing the output yields an equal tree.
func Print(spec *Spec) string {
	var b strings.Builder
	for _, d := range spec.Decls {
		b.WriteString("let ")
		b.WriteString(d.Kind.String())
		if len(d.Names) > 0 {
			b.WriteString(" ")
			b.WriteString(joinNames(d.Names))
		}
		b.WriteString(";\n")
	}
	for _, p := range spec.Props {
		b.WriteString(p.Name.Text)
		b.WriteString(" := ")
		b.WriteString(PrintExpr(p.Body))
		b.WriteString(";\n")
	}
	for _, e := range spec.Evals {
		b.WriteString("eval ")
		b.WriteString(e.Target.Text)
		if len(e.Signals) > 0 {
			b.WriteString(" on ")
			b.WriteString(joinNames(e.Signals))
		}
		b.WriteString(" with")
		for i, binding := range e.Bindings {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(" ")
			b.WriteString(binding.Name.Text)
			b.WriteString(" in ")
			b.WriteString(PrintInterval(binding.Interval))
		}
		b.WriteString(";\n")
	}
	return b.String()
}

// PrintExpr renders one formula in SL2 surface syntax.
func PrintExpr(e Expr) string {
	var b strings.Builder
	printExpr(&b, e)
	return b.String()
}

func printExpr(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *Ident:
		b.WriteString(n.Name)
	case *SignalRef:
		b.WriteString(n.Name)
	case *ParamRef:
		b.WriteString(n.Name)
	case *PropRef:
		b.WriteString(n.Name)
	case *Number:
		b.WriteString(lexer.FormatNumber(n.Value))
	case *Bool:
		if n.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case *Arith:
		printBinary(b, n.Left, string(n.Op), n.Right)
	case *Compare:
		printBinary(b, n.Left, string(n.Op), n.Right)
	case *BoolBin:
		printBinary(b, n.Left, string(n.Op), n.Right)
	case *Not:
		printPrefix(b, "not", nil, n.Operand)
	case *Prob:
		printPrefix(b, "Pr", nil, n.Operand)
	case *Future:
		printPrefix(b, "F", n.Interval, n.Operand)
	case *Global:
		printPrefix(b, "G", n.Interval, n.Operand)
	case *Until:
		b.WriteString("(")
		printExpr(b, n.Left)
		b.WriteString(" U")
		if n.Interval != nil {
			b.WriteString(PrintInterval(*n.Interval))
		}
		b.WriteString(" ")
		printExpr(b, n.Right)
		b.WriteString(")")
	case *On:
		b.WriteString("(on ")
		b.WriteString(PrintInterval(n.Interval))
		b.WriteString(" ")
		printExpr(b, n.Body)
		b.WriteString(")")
	case *Aggregate:
		b.WriteString(string(n.Kind))
		b.WriteString(" ")
		printExpr(b, n.Operand)
	}
}

func printBinary(b *strings.Builder, left Expr, op string, right Expr) {
	b.WriteString("(")
	printExpr(b, left)
	b.WriteString(" ")
	b.WriteString(op)
	b.WriteString(" ")
	printExpr(b, right)
	b.WriteString(")")
}

func printPrefix(b *strings.Builder, op string, iv *Interval, operand Expr) {
	b.WriteString("(")
	b.WriteString(op)
	if iv != nil {
		b.WriteString(PrintInterval(*iv))
	}
	b.WriteString(" ")
	printExpr(b, operand)
	b.WriteString(")")
}

// PrintInterval renders an interval as [lo, hi].
func PrintInterval(iv Interval) string {
	return "[" + PrintBound(iv.Lo) + ", " + PrintBound(iv.Hi) + "]"
}

func PrintBound(bd Bound) string {
	if bd.IsParam() {
		return bd.Name
	}
	return lexer.FormatNumber(bd.Value)
}

func joinNames(names []Name) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n.Text)
	}
	return strings.Join(parts, ", ")
}
