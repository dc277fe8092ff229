package lexer

import (
	"strconv"
	"strings"

	"github.com/voidwyrm-2/Mend/pkg/token"
)

// lineLexer scans one source line. It keeps no state between lines.
type lineLexer struct {
	src  []rune
	pos  int
	last int // index of the last non-blank rune
}

// Lex converts one source line into its tokens, comments included.
func Lex(line string) []token.Token {
	l := &lineLexer{src: []rune(line)}
	l.last = len(l.src) - 1
	for l.last >= 0 && isBlank(l.src[l.last]) {
		l.last--
	}
	return l.run()
}

// LexSource splits src on newlines and lexes every line, dropping comments.
// Line numbers are 1-based.
func LexSource(src string) []token.Line {
	raw := strings.Split(src, "\n")
	lines := make([]token.Line, 0, len(raw))
	for i, text := range raw {
		toks := Lex(text)
		kept := toks[:0]
		for _, t := range toks {
			if t.Kind == token.COMMENT {
				continue
			}
			kept = append(kept, t)
		}
		lines = append(lines, token.Line{Number: i + 1, Tokens: kept})
	}
	return lines
}

func (l *lineLexer) peek() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lineLexer) run() []token.Token {
	var toks []token.Token
	for {
		c, ok := l.peek()
		if !ok {
			return toks
		}
		switch {
		case isBlank(c):
			l.pos++
		case isDigit(c):
			toks = append(toks, l.number())
		case c == '"':
			toks = append(toks, l.str())
		case isIdentStart(c):
			toks = append(toks, l.word())
		case c == '-':
			toks = append(toks, l.comment())
		case c == '@':
			toks = append(toks, l.label())
		case c == '?':
			if l.pos == l.last {
				toks = append(toks, token.Token{Kind: token.DEBUG, Text: "?"})
			} else {
				toks = append(toks, illegal(c, "'?' is only allowed at the end of a line"))
			}
			l.pos++
		default:
			if kind, ok := punctuation[c]; ok {
				toks = append(toks, token.Token{Kind: kind, Text: string(c)})
			} else {
				toks = append(toks, illegal(c, "unexpected character"))
			}
			l.pos++
		}
	}
}

var punctuation = map[rune]token.Kind{
	',': token.COMMA,
	'(': token.LPAREN,
	')': token.RPAREN,
	'[': token.LBRACKET,
	']': token.RBRACKET,
	'{': token.LBRACE,
	'}': token.RBRACE,
}

func (l *lineLexer) number() token.Token {
	start := l.pos
	dots := 0
	for {
		c, ok := l.peek()
		if !ok {
			break
		}
		if c == '.' {
			if dots == 1 {
				break
			}
			dots++
		} else if !isDigit(c) {
			break
		}
		l.pos++
	}
	text := string(l.src[start:l.pos])
	if dots == 0 {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return token.Token{Kind: token.ILLEGAL, Text: text, Reason: "integer literal out of range"}
		}
		return token.Token{Kind: token.INT, Text: text, Int: n}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token.Token{Kind: token.ILLEGAL, Text: text, Reason: "float literal out of range"}
	}
	return token.Token{Kind: token.FLOAT, Text: text, Float: f}
}

func (l *lineLexer) str() token.Token {
	l.pos++ // opening quote
	start := l.pos
	for {
		c, ok := l.peek()
		if !ok {
			return token.Token{Kind: token.STRING, Text: string(l.src[start:l.pos])}
		}
		if c == '"' {
			text := string(l.src[start:l.pos])
			l.pos++
			return token.Token{Kind: token.STRING, Text: text}
		}
		l.pos++
	}
}

func (l *lineLexer) word() token.Token {
	start := l.pos
	l.pos++
	for {
		c, ok := l.peek()
		if !ok || !isIdentPart(c) {
			break
		}
		l.pos++
	}
	text := string(l.src[start:l.pos])
	switch {
	case token.IsKeyword(text):
		return token.Token{Kind: token.KEYWORD, Text: text}
	case text == "true":
		return token.Token{Kind: token.BOOL, Text: text, Bool: true}
	case text == "false":
		return token.Token{Kind: token.BOOL, Text: text}
	default:
		return token.Token{Kind: token.IDENT, Text: text}
	}
}

func (l *lineLexer) comment() token.Token {
	l.pos++
	if c, ok := l.peek(); !ok || c != '-' {
		return illegal('-', "expected '--' to start a comment")
	}
	l.pos++
	if c, ok := l.peek(); ok && c == ' ' {
		l.pos++
	}
	text := string(l.src[l.pos:])
	l.pos = len(l.src)
	return token.Token{Kind: token.COMMENT, Text: text}
}

func (l *lineLexer) label() token.Token {
	l.pos++
	start := l.pos
	for {
		c, ok := l.peek()
		if !ok || !isLabelPart(c) {
			break
		}
		l.pos++
	}
	if l.pos == start {
		return illegal('@', "expected a label name after '@'")
	}
	return token.Token{Kind: token.STATELABEL, Text: string(l.src[start:l.pos])}
}

func illegal(c rune, reason string) token.Token {
	return token.Token{Kind: token.ILLEGAL, Text: string(c), Reason: reason}
}

func isBlank(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c rune) bool {
	return isLetter(c) || c == '_'
}

func isLabelPart(c rune) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

// Dots may continue an identifier so container paths and file names stay
// one token.
func isIdentPart(c rune) bool {
	return isLabelPart(c) || c == '.'
}
