package lexer

import (
	"strings"
	"unicode/utf8"

	cerrors "sl2c/internal/core/errors"
)

// Punctuation, longest first so two-character operators win.
var punctuation = []string{":=", "<=", ">=", "<>", "->", ",", ";", "(", ")", "[", "]", "+", "-", "*", "/", "<", ">"}

type scanner struct {
	src    string
	offset int
	line   int
	column int
	tokens []Token
	diags  cerrors.Diagnostics
}

// Tokenize splits src into tokens terminated by a single EOF token. Illegal
// characters are reported as LexicalError diagnostics and kept as Illegal
// tokens so the parser can drop the statement that holds them.
func Tokenize(src string) ([]Token, cerrors.Diagnostics) {
	s := &scanner{src: src, line: 1, column: 1}
	s.run()
	return s.tokens, s.diags
}

func (s *scanner) run() {
	for s.offset < len(s.src) {
		c := s.src[s.offset]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			s.advance(1)
		case c == '\n':
			s.offset++
			s.line++
			s.column = 1
		case isIdentStart(c):
			s.scanWord()
		case isDigit(c) || (c == '.' && s.peekDigit(1)):
			s.scanNumber()
		case c == '-' && s.hasWordAt(s.offset+1, "inf"):
			s.emit(Number, 4)
		default:
			if !s.scanPunct() {
				s.illegal()
			}
		}
	}
	s.tokens = append(s.tokens, Token{Kind: EOF, Line: s.line, Column: s.column, Offset: s.offset})
}

func (s *scanner) scanWord() {
	end := s.offset + 1
	for end < len(s.src) && isIdentPart(s.src[end]) {
		end++
	}
	word := s.src[s.offset:end]
	kind := Ident
	switch {
	case keywords[word]:
		kind = Keyword
	case word == "true" || word == "false":
		kind = Bool
	case word == "inf":
		kind = Number
	}
	s.emit(kind, end-s.offset)
}

// scanNumber accepts d*.?d+; a trailing '.' without digits is left for the next token.
func (s *scanner) scanNumber() {
	end := s.offset
	for end < len(s.src) && isDigit(s.src[end]) {
		end++
	}
	if end < len(s.src) && s.src[end] == '.' && end+1 < len(s.src) && isDigit(s.src[end+1]) {
		end++
		for end < len(s.src) && isDigit(s.src[end]) {
			end++
		}
	}
	s.emit(Number, end-s.offset)
}

func (s *scanner) scanPunct() bool {
	rest := s.src[s.offset:]
	for _, p := range punctuation {
		if strings.HasPrefix(rest, p) {
			s.emit(Punct, len(p))
			return true
		}
	}
	return false
}

func (s *scanner) illegal() {
	r, size := utf8.DecodeRuneInString(s.src[s.offset:])
	s.diags = append(s.diags, cerrors.NewDiagnostic(cerrors.KindLexical,
		cerrors.Position{Line: s.line, Column: s.column},
		"unexpected character %q", r).WithContext(cerrors.CtxGot, string(r)))
	s.tokens = append(s.tokens, Token{
		Kind:   Illegal,
		Lexeme: string(r),
		Line:   s.line,
		Column: s.column,
		Offset: s.offset,
	})
	s.offset += size
	s.column++
}

func (s *scanner) emit(kind Kind, length int) {
	s.tokens = append(s.tokens, Token{
		Kind:   kind,
		Lexeme: s.src[s.offset : s.offset+length],
		Line:   s.line,
		Column: s.column,
		Offset: s.offset,
	})
	s.advance(length)
}

// advance moves over ASCII bytes on the current line.
func (s *scanner) advance(n int) {
	s.offset += n
	s.column += n
}

func (s *scanner) peekDigit(ahead int) bool {
	i := s.offset + ahead
	return i < len(s.src) && isDigit(s.src[i])
}

func (s *scanner) hasWordAt(i int, word string) bool {
	if !strings.HasPrefix(s.src[i:], word) {
		return false
	}
	end := i + len(word)
	return end >= len(s.src) || !isIdentPart(s.src[end])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '\'' || c == '.'
}

// Reprint serialises tokens back to SL2 text separated by single spaces.
func Reprint(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == EOF {
			break
		}
		parts = append(parts, t.Lexeme)
	}
	return strings.Join(parts, " ")
}
