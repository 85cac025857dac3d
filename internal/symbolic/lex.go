package symbolic

import (
	"unicode"

	"github.com/njchilds90/dimplot/internal/diag"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) is(op string) bool { return t.kind == tokOp && t.text == op }

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return "\"" + t.text + "\""
}

// lex splits src into tokens. "**" is read as "^".
func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	// byte offsets for error positions
	offs := make([]int, len(rs)+1)
	for i, o := 0, 0; i < len(rs); i++ {
		offs[i] = o
		o += len(string(rs[i]))
		offs[i+1] = o
	}
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			for i < len(rs) && unicode.IsDigit(rs[i]) {
				i++
			}
			if i < len(rs) && rs[i] == '.' {
				i++
				for i < len(rs) && unicode.IsDigit(rs[i]) {
					i++
				}
			}
			if i < len(rs) && (rs[i] == 'e' || rs[i] == 'E') {
				j := i + 1
				if j < len(rs) && (rs[j] == '+' || rs[j] == '-') {
					j++
				}
				if j < len(rs) && unicode.IsDigit(rs[j]) {
					for j < len(rs) && unicode.IsDigit(rs[j]) {
						j++
					}
					i = j
				}
			}
			toks = append(toks, token{kind: tokNum, text: string(rs[start:i]), pos: offs[start]})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[start:i]), pos: offs[start]})
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: offs[i]})
			i += 2
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '^' || r == '(' || r == ')' || r == ',' || r == '=':
			toks = append(toks, token{kind: tokOp, text: string(r), pos: offs[i]})
			i++
		default:
			return nil, diag.Syntaxf(offs[i], "unexpected character %q", r)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: offs[len(rs)]})
	return toks, nil
}
