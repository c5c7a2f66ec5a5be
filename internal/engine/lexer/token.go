package lexer

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags a token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	Bool
	Keyword
	Punct
	// Illegal carries a character the lexer rejected. No grammar accepts it.
	Illegal
)

var kindNames = map[Kind]string{
	EOF:     "EOF",
	Ident:   "Ident",
	Number:  "Number",
	Bool:    "Bool",
	Keyword: "Keyword",
	Punct:   "Punct",
	Illegal: "Illegal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Reserved words of SL2. They never lex as identifiers.
var keywords = map[string]bool{
	"let":           true,
	"param":         true,
	"signal":        true,
	"probabilistic": true,
	"eval":          true,
	"on":            true,
	"with":          true,
	"in":            true,
	"and":           true,
	"or":            true,
	"not":           true,
	"F":             true,
	"G":             true,
	"U":             true,
	"Min":           true,
	"Max":           true,
	"Pr":            true,
	"Der":           true,
	"Int":           true,
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	return keywords[word]
}

// Token is one lexeme with its 1-based source location.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
	Offset int
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Lexeme)
}

// Is reports whether the token is a keyword or punctuation with the given text.
func (t Token) Is(text string) bool {
	return (t.Kind == Keyword || t.Kind == Punct) && t.Lexeme == text
}

// ParseNumber converts a numeric lexeme, including inf and -inf, to a float64.
func ParseNumber(lexeme string) (float64, error) {
	switch lexeme {
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", lexeme, err)
	}
	return v, nil
}

// FormatNumber renders v as the shortest decimal that round-trips; infinities
// print as inf and -inf.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
