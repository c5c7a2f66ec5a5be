package lexer

import (
	"math"
	"strings"
	"testing"

	cerrors "sl2c/internal/core/errors"

	plexer "github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kl struct {
	kind   Kind
	lexeme string
}

func kinds(tokens []Token) []kl {
	out := make([]kl, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, kl{t.Kind, t.Lexeme})
	}
	return out
}

func TestTokenizeDeclarationsAndProperty(t *testing.T) {
	tokens, diags := Tokenize("let signal s1;\nprop1 := F[0,p1] s1 < 0;")
	require.Empty(t, diags)

	assert.Equal(t, []kl{
		{Keyword, "let"}, {Keyword, "signal"}, {Ident, "s1"}, {Punct, ";"},
		{Ident, "prop1"}, {Punct, ":="}, {Keyword, "F"}, {Punct, "["}, {Number, "0"},
		{Punct, ","}, {Ident, "p1"}, {Punct, "]"}, {Ident, "s1"}, {Punct, "<"},
		{Number, "0"}, {Punct, ";"}, {EOF, ""},
	}, kinds(tokens))

	assert.Equal(t, 2, tokens[4].Line)
	assert.Equal(t, 1, tokens[4].Column)
	assert.Equal(t, 10, tokens[6].Column)
}

func TestTokenizeMultiCharPunctuation(t *testing.T) {
	tokens, diags := Tokenize("a<=b>=c<>d->e:=f<g>h")
	require.Empty(t, diags)

	var puncts []string
	for _, tok := range tokens {
		if tok.Kind == Punct {
			puncts = append(puncts, tok.Lexeme)
		}
	}
	assert.Equal(t, []string{"<=", ">=", "<>", "->", ":=", "<", ">"}, puncts)
}

func TestTokenizeNumbers(t *testing.T) {
	cases := []struct {
		src  string
		want []kl
	}{
		{"12", []kl{{Number, "12"}, {EOF, ""}}},
		{"0.5", []kl{{Number, "0.5"}, {EOF, ""}}},
		{".25", []kl{{Number, ".25"}, {EOF, ""}}},
		{"inf", []kl{{Number, "inf"}, {EOF, ""}}},
		{"-inf", []kl{{Number, "-inf"}, {EOF, ""}}},
		{"- inf", []kl{{Punct, "-"}, {Number, "inf"}, {EOF, ""}}},
		{"-infinity", []kl{{Punct, "-"}, {Ident, "infinity"}, {EOF, ""}}},
		{"3-1", []kl{{Number, "3"}, {Punct, "-"}, {Number, "1"}, {EOF, ""}}},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			tokens, diags := Tokenize(tc.src)
			require.Empty(t, diags)
			assert.Equal(t, tc.want, kinds(tokens))
		})
	}
}

func TestTokenizeIdentifiersAndWords(t *testing.T) {
	tokens, diags := Tokenize("x' a.b _c9 true false Pr Int Integral")
	require.Empty(t, diags)
	assert.Equal(t, []kl{
		{Ident, "x'"}, {Ident, "a.b"}, {Ident, "_c9"}, {Bool, "true"}, {Bool, "false"},
		{Keyword, "Pr"}, {Keyword, "Int"}, {Ident, "Integral"}, {EOF, ""},
	}, kinds(tokens))
}

func TestTokenizeIllegalCharacterResumes(t *testing.T) {
	tokens, diags := Tokenize("a # b\n  é c")
	require.Len(t, diags, 2)

	assert.Equal(t, cerrors.KindLexical, diags[0].Kind)
	assert.Equal(t, cerrors.Position{Line: 1, Column: 3}, diags[0].Pos)
	assert.Equal(t, `LexicalError at 1:3: unexpected character '#'`, diags[0].String())
	assert.Equal(t, cerrors.Position{Line: 2, Column: 3}, diags[1].Pos)

	assert.Equal(t, []kl{
		{Ident, "a"}, {Illegal, "#"}, {Ident, "b"}, {Illegal, "é"}, {Ident, "c"}, {EOF, ""},
	}, kinds(tokens))
	assert.Equal(t, 3, tokens[1].Column)
	assert.Equal(t, 3, tokens[3].Column)
	assert.Equal(t, 5, tokens[4].Column)
}

func TestReprintIsIdempotent(t *testing.T) {
	src := "let param p1,p2;let signal s1;\nprop1 := G[8,12](p1 and p2);\neval prop1 with p1 in [5,8], p2 in [7,inf]"
	first, diags := Tokenize(src)
	require.Empty(t, diags)

	second, diags := Tokenize(Reprint(first))
	require.Empty(t, diags)
	assert.Equal(t, kinds(first), kinds(second))

	third, _ := Tokenize(Reprint(second))
	assert.Equal(t, Reprint(second), Reprint(third))
}

func TestParseAndFormatNumber(t *testing.T) {
	v, err := ParseNumber("inf")
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))

	v, err = ParseNumber("-inf")
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, -1))

	_, err = ParseNumber("abc")
	assert.Error(t, err)

	assert.Equal(t, "0.5", FormatNumber(0.5))
	assert.Equal(t, "12", FormatNumber(12))
	assert.Equal(t, "0.1", FormatNumber(0.1))
	assert.Equal(t, "1000000000000000000000", FormatNumber(1e21))
	assert.Equal(t, "inf", FormatNumber(math.Inf(1)))
	assert.Equal(t, "-inf", FormatNumber(math.Inf(-1)))
}

func TestDefinitionForParticiple(t *testing.T) {
	def := Definition{}
	symbols := def.Symbols()
	assert.Equal(t, plexer.EOF, symbols["EOF"])
	assert.Contains(t, symbols, "Ident")
	assert.Contains(t, symbols, "Number")

	lex, err := def.Lex("spec.sl2", strings.NewReader("s1 <= 2"))
	require.NoError(t, err)

	first, err := lex.Next()
	require.NoError(t, err)
	assert.Equal(t, symbols["Ident"], first.Type)
	assert.Equal(t, "s1", first.Value)
	assert.Equal(t, "spec.sl2", first.Pos.Filename)

	second, _ := lex.Next()
	assert.Equal(t, "<=", second.Value)
	assert.Equal(t, 4, second.Pos.Column)

	_, _ = lex.Next()
	eof, _ := lex.Next()
	assert.Equal(t, plexer.EOF, eof.Type)

	_, err = def.Lex("bad.sl2", strings.NewReader("s1 $"))
	assert.Error(t, err)
}
