package parser

import (
	"github.com/alecthomas/participle/v2"
	plexer "github.com/alecthomas/participle/v2/lexer"

	"sl2c/internal/engine/lexer"
)

// statement is one segment of SL2 source: a declaration, a property or an
// evaluation. Segments are cut by splitStatements, so no terminator appears here.
type statement struct {
	Decl *declStmt `  @@`
	Eval *evalStmt `| @@`
	Prop *propStmt `| @@`
}

type declStmt struct {
	Pos    plexer.Position
	Param  bool         `"let" ( @"param"`
	Prob   bool         `      | @"probabilistic" "signal"`
	Signal bool         `      | @"signal" )`
	Names  []*identNode `( @@ ( "," @@ )* )?`
}

type propStmt struct {
	Pos  plexer.Position
	Name *identNode `@@ ":="`
	Body *bodyExpr  `@@`
}

type evalStmt struct {
	Pos      plexer.Position
	Target   *identNode     `"eval" @@`
	Signals  []*identNode   `( "on" @@ ( "," @@ )* )?`
	Bindings []*bindingNode `"with" ( @@ ( "," @@ )* )?`
}

type bindingNode struct {
	Name     *identNode    `@@ "in"`
	Interval *intervalNode `@@`
}

type identNode struct {
	Pos  plexer.Position
	Name string `@Ident`
}

type intervalNode struct {
	Pos plexer.Position
	Lo  *boundNode `"[" @@ ","`
	Hi  *boundNode `@@ "]"`
}

type boundNode struct {
	Pos    plexer.Position
	Number *string `  @Number`
	Name   *string `| @Ident`
}

// bodyExpr is the right-hand side of a property: ψ or φ.
type bodyExpr struct {
	Psi *psiExpr `  @@`
	Phi *phiExpr `| @@`
}

type psiExpr struct {
	Pos     plexer.Position
	Kind    string     `@( "Min" | "Max" | "Int" | "Der" )`
	Operand *unaryExpr `@@`
}

// phiExpr is the loosest level: right-associative implication.
type phiExpr struct {
	Pos   plexer.Position
	Left  *orExpr  `@@`
	Right *phiExpr `( "->" @@ )?`
}

type orExpr struct {
	Pos  plexer.Position
	Left *andExpr   `@@`
	Rest []*andExpr `( "or" @@ )*`
}

type andExpr struct {
	Pos  plexer.Position
	Left *untilExpr   `@@`
	Rest []*untilExpr `( "and" @@ )*`
}

// untilExpr is right-associative: a U b U c is a U (b U c).
type untilExpr struct {
	Pos   plexer.Position
	Left  *unaryExpr `@@`
	Until *untilTail `@@?`
}

type untilTail struct {
	Pos      plexer.Position
	Interval *intervalNode `"U" @@?`
	Right    *untilExpr    `@@`
}

type unaryExpr struct {
	Pos    plexer.Position
	Not    *unaryExpr    `  "not" @@`
	Prob   *unaryExpr    `| "Pr" @@`
	Future *temporalExpr `| "F" @@`
	Global *temporalExpr `| "G" @@`
	On     *onExpr       `| "on" @@`
	Atom   *atomExpr     `| @@`
}

// temporalExpr binds an optional interval; an interval always starts with '['.
type temporalExpr struct {
	Interval *intervalNode `@@?`
	Operand  *unaryExpr    `@@`
}

type onExpr struct {
	Interval *intervalNode `@@`
	Body     *psiExpr      `@@`
}

// atomExpr tries a comparison before a parenthesised formula so that
// "(s1 + s2) > 0" and "(s1 > 0)" both resolve.
type atomExpr struct {
	Compare *compareExpr `  @@`
	Group   *phiExpr     `| "(" @@ ")"`
	Sig     *sigExpr     `| @@`
}

type compareExpr struct {
	Pos   plexer.Position
	Left  *sigExpr `@@`
	Op    string   `@( "<=" | ">=" | "<>" | "<" | ">" )`
	Right *sigExpr `@@`
}

type sigExpr struct {
	Pos  plexer.Position
	Left *termExpr `@@`
	Rest []*sigOp  `@@*`
}

type sigOp struct {
	Pos   plexer.Position
	Op    string    `@( "+" | "-" )`
	Right *termExpr `@@`
}

type termExpr struct {
	Pos  plexer.Position
	Left *factorExpr `@@`
	Rest []*termOp   `@@*`
}

type termOp struct {
	Pos   plexer.Position
	Op    string      `@( "*" | "/" )`
	Right *factorExpr `@@`
}

type factorExpr struct {
	Pos    plexer.Position
	Number *string  `  @Number`
	Bool   *string  `| @Bool`
	Ident  *string  `| @Ident`
	Group  *sigExpr `| "(" @@ ")"`
}

// maxLookahead bounds how far a failed alternative may advance before the
// parser commits to its error instead of backtracking.
const maxLookahead = 4096

// statementParser is immutable once built and safe for concurrent use.
var statementParser = participle.MustBuild[statement](
	participle.Lexer(lexer.Definition{}),
	participle.UseLookahead(maxLookahead),
)
