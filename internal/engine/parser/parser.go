// Package parser turns SL2 tokens into an ast.Spec.
//
// Source is first cut into statements; each statement is parsed on its own by
// a participle grammar. A syntax error is recorded and the rest of its
// statement skipped, which gives panic-mode recovery up to the next ';',
// 'let', 'eval' or property head.
package parser

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	plexer "github.com/alecthomas/participle/v2/lexer"

	cerrors "sl2c/internal/core/errors"
	"sl2c/internal/engine/ast"
	"sl2c/internal/engine/lexer"
)

// ParseString tokenizes and parses src, returning lexical and syntax diagnostics together.
func ParseString(src string) (*ast.Spec, cerrors.Diagnostics) {
	tokens, diags := lexer.Tokenize(src)
	spec, parseDiags := Parse(tokens)
	return spec, append(diags, parseDiags...)
}

// Parse builds a Spec from tokens. It never fails outright; statements that
// do not parse are dropped and reported as SyntaxError diagnostics. A
// statement holding an Illegal token is dropped silently, since the lexer
// already reported it. Dropped property heads are kept in Spec.Broken.
func Parse(tokens []lexer.Token) (*ast.Spec, cerrors.Diagnostics) {
	b := &builder{spec: &ast.Spec{}}
	for _, segment := range splitStatements(tokens) {
		if hasIllegal(segment) {
			b.broken(segment)
			continue
		}
		stmt, err := parseStatement(segment)
		if err != nil {
			b.diags = append(b.diags, syntaxDiagnostic(err, segment))
			b.broken(segment)
			continue
		}
		b.statement(stmt)
	}
	return b.spec, b.diags
}

func hasIllegal(segment []lexer.Token) bool {
	for _, tok := range segment {
		if tok.Kind == lexer.Illegal {
			return true
		}
	}
	return false
}

// splitStatements cuts the token stream at ';' and before tokens that can
// only start a new statement. Empty statements vanish.
func splitStatements(tokens []lexer.Token) [][]lexer.Token {
	var (
		segments [][]lexer.Token
		current  []lexer.Token
	)
	flush := func() {
		if len(current) > 0 {
			segments = append(segments, current)
		}
		current = nil
	}

	for i, tok := range tokens {
		if tok.Kind == lexer.EOF {
			break
		}
		if tok.Is(";") {
			flush()
			continue
		}
		if len(current) > 0 && startsStatement(tokens, i) {
			flush()
		}
		current = append(current, tok)
	}
	flush()
	return segments
}

func startsStatement(tokens []lexer.Token, i int) bool {
	tok := tokens[i]
	if tok.Is("let") || tok.Is("eval") {
		return true
	}
	return tok.Kind == lexer.Ident && i+1 < len(tokens) && tokens[i+1].Is(":=")
}

func parseStatement(segment []lexer.Token) (*statement, error) {
	plex, err := plexer.Upgrade(lexer.NewStream("", segment))
	if err != nil {
		return nil, err
	}
	return statementParser.ParseFromLexer(plex)
}

func syntaxDiagnostic(err error, segment []lexer.Token) cerrors.Diagnostic {
	pos := cerrors.Position{Line: segment[0].Line, Column: segment[0].Column}
	message := err.Error()

	var perr participle.Error
	if errors.As(err, &perr) {
		pos = convertPos(perr.Position())
		message = perr.Message()
	}

	got, expected := "", ""
	var uerr *participle.UnexpectedTokenError
	if errors.As(err, &uerr) {
		got = describeToken(uerr.Unexpected)
		expected = uerr.Expect
		message = "unexpected " + got
		if expected != "" {
			message += ", expected " + expected
		}
	}

	d := cerrors.NewDiagnostic(cerrors.KindSyntax, pos, "%s", message)
	if got != "" {
		d = d.WithContext(cerrors.CtxGot, got)
	}
	if expected != "" {
		d = d.WithContext(cerrors.CtxExpected, expected)
	}
	return d
}

func describeToken(tok plexer.Token) string {
	if tok.EOF() {
		return "end of statement"
	}
	return fmt.Sprintf("%q", tok.Value)
}

func convertPos(p plexer.Position) ast.Pos {
	return ast.Pos{Line: p.Line, Column: p.Column}
}
