package token

import (
	"fmt"
	"strconv"

	"github.com/ahrtr/gocontainer/set"
)

// Kind identifies the lexical category of a token.
type Kind int

const (
	STRING Kind = iota
	INT
	FLOAT
	BOOL
	KEYWORD
	IDENT
	ILLEGAL
	COMMENT
	COMMA
	LBRACKET
	RBRACKET
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	DEBUG
	STOP
	STATELABEL
	EOF
)

func (k Kind) String() string {
	switch k {
	case STRING:
		return "STRING"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case BOOL:
		return "BOOL"
	case KEYWORD:
		return "KEYWORD"
	case IDENT:
		return "IDENT"
	case ILLEGAL:
		return "ILLEGAL"
	case COMMENT:
		return "COMMENT"
	case COMMA:
		return "COMMA"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case DEBUG:
		return "DEBUG"
	case STOP:
		return "STOP"
	case STATELABEL:
		return "STATELABEL"
	case EOF:
		return "EOF"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Token is a single lexical unit. Text holds the raw spelling (the payload
// for STRING, KEYWORD, IDENT, COMMENT and STATELABEL); numeric and boolean
// payloads are decoded into Int, Float and Bool.
type Token struct {
	Kind   Kind
	Text   string
	Int    int64
	Float  float64
	Bool   bool
	Reason string
}

func (t Token) String() string {
	switch t.Kind {
	case STRING:
		return strconv.Quote(t.Text)
	case ILLEGAL:
		return fmt.Sprintf("ILLEGAL: %q (%s)", t.Text, t.Reason)
	case COMMA, LBRACKET, RBRACKET, LPAREN, RPAREN, LBRACE, RBRACE, DEBUG, EOF:
		return t.Kind.String()
	default:
		return fmt.Sprintf("%s: %s", t.Kind, t.Text)
	}
}

// Is reports whether the token is the keyword word.
func (t Token) Is(word string) bool {
	return t.Kind == KEYWORD && t.Text == word
}

// IsLiteral reports whether the token carries a primitive literal payload.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case STRING, INT, FLOAT, BOOL:
		return true
	default:
		return false
	}
}

// Line is the comment-stripped token sequence of one source line.
type Line struct {
	Number int
	Tokens []Token
}

// Empty reports whether the line has no tokens.
func (l Line) Empty() bool {
	return len(l.Tokens) == 0
}

// First returns the first token, or EOF for an empty line.
func (l Line) First() Token {
	if len(l.Tokens) == 0 {
		return Token{Kind: EOF}
	}
	return l.Tokens[0]
}

// Keywords lists the reserved words in declaration order.
var Keywords = []string{
	"if",
	"then",
	"get",
	"repeat",
	"end",
	"else",
	"log",
	"is",
	"and",
	"or",
	"isnot",
	"immut",
	"mut",
	"set",
	"nil",
	"as",
	"func",
	"return",
	"import",
	"stop",
	"container",
	"del",
}

var keywordSet = NewWordSet(Keywords...)

// IsKeyword reports whether word is reserved. Matching is case-sensitive.
func IsKeyword(word string) bool {
	return keywordSet.Contains(word)
}

// NewWordSet builds a set of words.
func NewWordSet(words ...string) set.Interface {
	s := set.New()
	for _, w := range words {
		s.Add(w)
	}
	return s
}
