package interpreter

import (
	"strings"

	"github.com/voidwyrm-2/Mend/pkg/token"
)

// matcher accepts a single token.
type matcher func(t token.Token) bool

// shape is a token-kind pattern a statement must satisfy before any operand
// is read.
type shape []matcher

func kw(word string) matcher {
	return func(t token.Token) bool { return t.Is(word) }
}

func kinds(ks ...token.Kind) matcher {
	return func(t token.Token) bool {
		for _, k := range ks {
			if t.Kind == k {
				return true
			}
		}
		return false
	}
}

// literal accepts primitive literals and `nil`.
func literal(t token.Token) bool {
	return t.IsLiteral() || t.Is("nil")
}

// plainName accepts an undotted identifier.
func plainName(t token.Token) bool {
	return t.Kind == token.IDENT && !strings.Contains(t.Text, ".")
}

var (
	ident   matcher = kinds(token.IDENT)
	operand matcher = func(t token.Token) bool { return literal(t) || t.Kind == token.IDENT }
)

// matches reports whether toks has exactly the shape's length and kinds.
func (s shape) matches(toks []token.Token) bool {
	return len(toks) == len(s) && s.prefixOf(toks)
}

// prefixOf reports whether toks starts with the shape.
func (s shape) prefixOf(toks []token.Token) bool {
	if len(toks) < len(s) {
		return false
	}
	for i, m := range s {
		if !m(toks[i]) {
			return false
		}
	}
	return true
}

var (
	shapeStop        = shape{kw("stop")}
	shapeLogBlank    = shape{kw("log")}
	shapeGet         = shape{kw("get"), plainName}
	shapeElse        = shape{kw("else")}
	shapeEnd         = shape{kw("end")}
	shapeDeclBare    = shape{kinds(token.KEYWORD), plainName}
	shapeDeclInit    = shape{kinds(token.KEYWORD), plainName, kw("as")}
	shapeRepeat      = shape{kw("repeat"), kinds(token.INT, token.IDENT)}
	shapeFuncHead    = shape{kw("func"), plainName, kinds(token.LPAREN)}
	shapeReturnBare  = shape{kw("return")}
	shapeImport      = shape{kw("import"), kinds(token.STRING, token.IDENT)}
	shapeContainer   = shape{kw("container"), plainName}
	shapeDel         = shape{kw("del"), ident}
	shapeCallHead    = shape{ident, kinds(token.LPAREN)}
	shapeBareName    = shape{ident}
	shapeLabel       = shape{kinds(token.STATELABEL)}
	shapeSingleValue = shape{operand}
)

// render reconstructs a statement for trace output.
func render(toks []token.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && t.Kind != token.COMMA && t.Kind != token.RPAREN && t.Kind != token.RBRACKET &&
			toks[i-1].Kind != token.LPAREN && toks[i-1].Kind != token.LBRACKET &&
			!(t.Kind == token.LPAREN && toks[i-1].Kind == token.IDENT) {
			b.WriteByte(' ')
		}
		switch t.Kind {
		case token.STRING:
			b.WriteString(`"` + t.Text + `"`)
		case token.STATELABEL:
			b.WriteString("@" + t.Text)
		default:
			b.WriteString(t.Text)
		}
	}
	return b.String()
}
