package lexer

import (
	"fmt"
	"io"

	plexer "github.com/alecthomas/participle/v2/lexer"
)

// Participle token types. EOF must be participle's own EOF.
const (
	typeIdent plexer.TokenType = -(iota + 2)
	typeNumber
	typeBool
	typeKeyword
	typePunct
	typeIllegal
)

var participleTypes = map[Kind]plexer.TokenType{
	EOF:     plexer.EOF,
	Ident:   typeIdent,
	Number:  typeNumber,
	Bool:    typeBool,
	Keyword: typeKeyword,
	Punct:   typePunct,
	Illegal: typeIllegal,
}

// Definition exposes the SL2 tokenizer to participle grammars. Symbol names
// match Kind names so grammars can reference @Ident, @Number and @Bool.
type Definition struct{}

var _ plexer.Definition = Definition{}

func (Definition) Symbols() map[string]plexer.TokenType {
	symbols := make(map[string]plexer.TokenType, len(participleTypes))
	for kind, typ := range participleTypes {
		symbols[kind.String()] = typ
	}
	return symbols
}

// Lex tokenizes r. The first lexical diagnostic is returned as an error because
// participle has no diagnostic channel; Tokenize is the lenient entry point.
func (Definition) Lex(filename string, r io.Reader) (plexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	tokens, diags := Tokenize(string(data))
	if len(diags) > 0 {
		return nil, fmt.Errorf("%s: %s", filename, diags[0].String())
	}
	return NewStream(filename, tokens), nil
}

// Stream replays a token slice as a participle lexer.
type Stream struct {
	filename string
	tokens   []Token
	next     int
}

// NewStream wraps tokens. A trailing EOF token is synthesised when missing.
func NewStream(filename string, tokens []Token) *Stream {
	return &Stream{filename: filename, tokens: tokens}
}

func (s *Stream) Next() (plexer.Token, error) {
	if s.next >= len(s.tokens) {
		return plexer.Token{Type: plexer.EOF, Pos: s.eofPos()}, nil
	}
	t := s.tokens[s.next]
	s.next++
	return ToParticiple(s.filename, t), nil
}

func (s *Stream) eofPos() plexer.Position {
	if len(s.tokens) == 0 {
		return plexer.Position{Filename: s.filename, Line: 1, Column: 1}
	}
	last := s.tokens[len(s.tokens)-1]
	return plexer.Position{
		Filename: s.filename,
		Offset:   last.Offset + len(last.Lexeme),
		Line:     last.Line,
		Column:   last.Column + len(last.Lexeme),
	}
}

// ToParticiple converts a token to participle's representation.
func ToParticiple(filename string, t Token) plexer.Token {
	return plexer.Token{
		Type:  participleTypes[t.Kind],
		Value: t.Lexeme,
		Pos: plexer.Position{
			Filename: filename,
			Offset:   t.Offset,
			Line:     t.Line,
			Column:   t.Column,
		},
	}
}
