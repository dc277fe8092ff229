package interpreter

import (
	"github.com/voidwyrm-2/Mend/pkg/diag"
	"github.com/voidwyrm-2/Mend/pkg/runtime"
	"github.com/voidwyrm-2/Mend/pkg/token"
)

// ParseList parses the bracketed literal starting at toks[start] and returns
// the list plus the index just after its closing bracket.
func ParseList(toks []token.Token, start, line int) (*runtime.ListValue, int, error) {
	if start >= len(toks) || toks[start].Kind != token.LBRACKET {
		return nil, 0, malformedDecl(line, "expected '['")
	}
	list := &runtime.ListValue{Elements: []runtime.Value{}}
	idx := start + 1
	wantComma := false
	for {
		if idx >= len(toks) {
			return nil, 0, malformedDecl(line, "unterminated list")
		}
		t := toks[idx]
		if t.Kind == token.RBRACKET {
			if !wantComma && len(list.Elements) > 0 {
				return nil, 0, malformedDecl(line, "trailing ',' in list")
			}
			return list, idx + 1, nil
		}
		if wantComma {
			if t.Kind != token.COMMA {
				return nil, 0, malformedDecl(line, "expected ',' between list elements")
			}
			wantComma = false
			idx++
			continue
		}
		if t.Kind == token.LBRACKET {
			nested, next, err := ParseList(toks, idx, line)
			if err != nil {
				return nil, 0, err
			}
			list.Elements = append(list.Elements, nested)
			idx = next
		} else {
			val, ok := runtime.FromToken(t)
			if !ok {
				return nil, 0, malformedDecl(line, "invalid list element '"+t.Text+"'")
			}
			list.Elements = append(list.Elements, val)
			idx++
		}
		wantComma = true
	}
}

func malformedDecl(line int, detail string) error {
	return diag.Errorf(diag.SyntaxError, line, "malformed declaration: %s", detail)
}
