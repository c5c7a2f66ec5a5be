package parser

import (
	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/engine/ast"
	"sl2c/internal/engine/lexer"
)

// builder folds grammar nodes into ast variants.
type builder struct {
	spec  *ast.Spec
	diags cerrors.Diagnostics
}

func (b *builder) statement(stmt *statement) {
	switch {
	case stmt.Decl != nil:
		b.spec.Decls = append(b.spec.Decls, b.decl(stmt.Decl))
	case stmt.Prop != nil:
		b.spec.Props = append(b.spec.Props, b.property(stmt.Prop))
	case stmt.Eval != nil:
		b.spec.Evals = append(b.spec.Evals, b.evaluation(stmt.Eval))
	}
}

// broken records the head of a dropped property statement.
func (b *builder) broken(segment []lexer.Token) {
	if len(segment) < 2 || segment[0].Kind != lexer.Ident || !segment[1].Is(":=") {
		return
	}
	head := segment[0]
	b.spec.Broken = append(b.spec.Broken, ast.Name{
		Pos:  ast.Pos{Line: head.Line, Column: head.Column},
		Text: head.Lexeme,
	})
}

func (b *builder) decl(d *declStmt) *ast.Decl {
	out := &ast.Decl{Pos: convertPos(d.Pos), Kind: ast.DeclSignal}
	switch {
	case d.Param:
		out.Kind = ast.DeclParam
	case d.Prob:
		out.Kind = ast.DeclProbSignal
	}
	out.Names = names(d.Names)
	return out
}

func (b *builder) property(p *propStmt) *ast.Property {
	out := &ast.Property{Pos: convertPos(p.Pos), Name: name(p.Name)}
	if p.Body.Psi != nil {
		out.Body = b.psi(p.Body.Psi)
	} else {
		out.Body = b.phi(p.Body.Phi)
	}
	return out
}

func (b *builder) evaluation(e *evalStmt) *ast.Evaluation {
	out := &ast.Evaluation{
		Pos:     convertPos(e.Pos),
		Target:  name(e.Target),
		Signals: names(e.Signals),
	}
	for _, binding := range e.Bindings {
		out.Bindings = append(out.Bindings, ast.Binding{
			Name:     name(binding.Name),
			Interval: b.interval(binding.Interval),
		})
	}
	return out
}

func (b *builder) psi(p *psiExpr) *ast.Aggregate {
	return &ast.Aggregate{
		Pos:     convertPos(p.Pos),
		Kind:    ast.AggKind(p.Kind),
		Operand: b.unary(p.Operand),
	}
}

func (b *builder) phi(p *phiExpr) ast.Expr {
	left := b.or(p.Left)
	if p.Right == nil {
		return left
	}
	return &ast.BoolBin{Pos: convertPos(p.Pos), Op: ast.Implies, Left: left, Right: b.phi(p.Right)}
}

func (b *builder) or(o *orExpr) ast.Expr {
	out := b.and(o.Left)
	for _, rest := range o.Rest {
		out = &ast.BoolBin{Pos: convertPos(o.Pos), Op: ast.Or, Left: out, Right: b.and(rest)}
	}
	return out
}

func (b *builder) and(a *andExpr) ast.Expr {
	out := b.until(a.Left)
	for _, rest := range a.Rest {
		out = &ast.BoolBin{Pos: convertPos(a.Pos), Op: ast.And, Left: out, Right: b.until(rest)}
	}
	return out
}

func (b *builder) until(u *untilExpr) ast.Expr {
	left := b.unary(u.Left)
	if u.Until == nil {
		return left
	}
	return &ast.Until{
		Pos:      convertPos(u.Pos),
		Interval: b.optInterval(u.Until.Interval),
		Left:     left,
		Right:    b.until(u.Until.Right),
	}
}

func (b *builder) unary(u *unaryExpr) ast.Expr {
	pos := convertPos(u.Pos)
	switch {
	case u.Not != nil:
		return &ast.Not{Pos: pos, Operand: b.unary(u.Not)}
	case u.Prob != nil:
		return &ast.Prob{Pos: pos, Operand: b.unary(u.Prob)}
	case u.Future != nil:
		return &ast.Future{Pos: pos, Interval: b.optInterval(u.Future.Interval), Operand: b.unary(u.Future.Operand)}
	case u.Global != nil:
		return &ast.Global{Pos: pos, Interval: b.optInterval(u.Global.Interval), Operand: b.unary(u.Global.Operand)}
	case u.On != nil:
		return &ast.On{Pos: pos, Interval: b.interval(u.On.Interval), Body: b.psi(u.On.Body)}
	}
	return b.atom(u.Atom)
}

func (b *builder) atom(a *atomExpr) ast.Expr {
	switch {
	case a.Compare != nil:
		return &ast.Compare{
			Pos:   convertPos(a.Compare.Pos),
			Op:    ast.CompareOp(a.Compare.Op),
			Left:  b.sig(a.Compare.Left),
			Right: b.sig(a.Compare.Right),
		}
	case a.Group != nil:
		return b.phi(a.Group)
	}
	return b.sig(a.Sig)
}

func (b *builder) sig(s *sigExpr) ast.Expr {
	out := b.term(s.Left)
	for _, op := range s.Rest {
		out = &ast.Arith{Pos: convertPos(op.Pos), Op: ast.ArithOp(op.Op), Left: out, Right: b.term(op.Right)}
	}
	return out
}

func (b *builder) term(t *termExpr) ast.Expr {
	out := b.factor(t.Left)
	for _, op := range t.Rest {
		out = &ast.Arith{Pos: convertPos(op.Pos), Op: ast.ArithOp(op.Op), Left: out, Right: b.factor(op.Right)}
	}
	return out
}

func (b *builder) factor(f *factorExpr) ast.Expr {
	pos := convertPos(f.Pos)
	switch {
	case f.Number != nil:
		return &ast.Number{Pos: pos, Value: b.number(pos, *f.Number)}
	case f.Bool != nil:
		return &ast.Bool{Pos: pos, Value: *f.Bool == "true"}
	case f.Ident != nil:
		return &ast.Ident{Pos: pos, Name: *f.Ident}
	}
	return b.sig(f.Group)
}

func (b *builder) optInterval(iv *intervalNode) *ast.Interval {
	if iv == nil {
		return nil
	}
	out := b.interval(iv)
	return &out
}

func (b *builder) interval(iv *intervalNode) ast.Interval {
	return ast.Interval{Pos: convertPos(iv.Pos), Lo: b.bound(iv.Lo), Hi: b.bound(iv.Hi)}
}

func (b *builder) bound(bd *boundNode) ast.Bound {
	pos := convertPos(bd.Pos)
	if bd.Name != nil {
		return ast.Bound{Pos: pos, Name: *bd.Name}
	}
	return ast.Bound{Pos: pos, Value: b.number(pos, *bd.Number)}
}

func (b *builder) number(pos ast.Pos, lexeme string) float64 {
	v, err := lexer.ParseNumber(lexeme)
	if err != nil {
		b.diags = append(b.diags, cerrors.NewDiagnostic(cerrors.KindSyntax, pos, "%v", err))
	}
	return v
}

func name(id *identNode) ast.Name {
	return ast.Name{Pos: convertPos(id.Pos), Text: id.Name}
}

func names(ids []*identNode) []ast.Name {
	if len(ids) == 0 {
		return nil
	}
	out := make([]ast.Name, 0, len(ids))
	for _, id := range ids {
		out = append(out, name(id))
	}
	return out
}
