package interpreter

import (
	"github.com/ahrtr/gocontainer/set"

	"github.com/voidwyrm-2/Mend/pkg/token"
)

// blockOpeners are the keywords whose statements are closed by `end`.
var blockOpeners = token.NewWordSet("func", "repeat", "container", "if")

// ExtractBlock collects the body of a block whose opening statement sits just
// before lines[start]. Nested opener/`end` pairs stay in the body; the
// closing `end` does not. next is the index after the closing `end`. ok is
// false when the lines run out before the block closes.
func ExtractBlock(lines []token.Line, start int, openers set.Interface) (body []token.Line, next int, ok bool) {
	depth := 0
	for idx := start; idx < len(lines); idx++ {
		line := lines[idx]
		if line.Empty() {
			continue
		}
		first := line.First()
		if first.Kind == token.KEYWORD {
			switch {
			case first.Text == "end":
				if depth == 0 {
					return body, idx + 1, true
				}
				depth--
			case openers.Contains(first.Text):
				depth++
			}
		}
		body = append(body, line)
	}
	return body, len(lines), false
}
