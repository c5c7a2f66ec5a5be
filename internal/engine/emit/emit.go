// Package emit prints lowered evaluations as SL1 text.
package emit

import (
	"strconv"
	"strings"

	"sl2c/internal/engine/lexer"
	"sl2c/internal/engine/lower"
	"sl2c/internal/engine/sl1"
)

// Formula renders n in prefix form with single spaces and every compound
// node parenthesised. There is no trailing newline.
func Formula(n sl1.Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n sl1.Node) {
	switch v := n.(type) {
	case *sl1.Var:
		b.WriteString("x")
		b.WriteString(strconv.Itoa(v.Index))
	case *sl1.Num:
		b.WriteString(lexer.FormatNumber(v.Value))
	case *sl1.Bool:
		if v.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case *sl1.Sym:
		b.WriteString(v.Name)
	case *sl1.Apply:
		b.WriteString("(")
		b.WriteString(string(v.Head))
		if v.Interval != nil {
			b.WriteString(" ")
			b.WriteString(Interval(*v.Interval))
		}
		for _, arg := range v.Args {
			b.WriteString(" ")
			writeNode(b, arg)
		}
		b.WriteString(")")
	}
}

// Interval renders (lo hi).
func Interval(iv sl1.Interval) string {
	return "(" + Bound(iv.Lo) + " " + Bound(iv.Hi) + ")"
}

func Bound(bd sl1.Bound) string {
	if bd.IsSym() {
		return bd.Name
	}
	return lexer.FormatNumber(bd.Value)
}

// Params renders the parameter file: one line per binding in source order.
// A bound is written only when it is a finite-side literal, so an open upper
// end gives "name lo", an open lower end "name hi" and a fully open range
// just "name".
func Params(bindings []lower.Binding) string {
	var b strings.Builder
	for _, binding := range bindings {
		b.WriteString(ParamLine(binding))
		b.WriteString("\n")
	}
	return b.String()
}

func ParamLine(binding lower.Binding) string {
	lo, hi := binding.Interval.Lo, binding.Interval.Hi
	fields := []string{binding.Name}
	if !lo.IsSym() && !lo.IsInf(true) {
		fields = append(fields, Bound(lo))
	}
	if !hi.IsSym() && !hi.IsInf(false) {
		fields = append(fields, Bound(hi))
	}
	return strings.Join(fields, " ")
}

// Variables renders the variable table, one "x<i> signal" line per entry.
func Variables(vars []lower.Variable) string {
	var b strings.Builder
	for _, v := range vars {
		b.WriteString(v.Name())
		b.WriteString(" ")
		b.WriteString(v.Signal)
		b.WriteString("\n")
	}
	return b.String()
}
