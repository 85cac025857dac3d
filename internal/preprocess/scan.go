package preprocess

import (
	"strings"
	"unicode/utf8"

	"github.com/njchilds90/dimplot/internal/diag"
)

// Binding strength of the loosest top-level operator in a piece of text.
const (
	precNone = iota // ',' '=' or nothing to bind to
	precSum         // binary + -, or a leading unary minus
	precProd        // * /
	precPow         // ^
	precAtom        // identifier, number, call or parenthesised group
)

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || b >= utf8.RuneSelf
}

func isIdentByte(b byte) bool { return isIdentStart(b) || isDigit(b) }

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

// isIdent reports whether s is exactly one identifier.
func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// numberEnd returns the end of the numeric literal starting at i.
func numberEnd(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

// nextIdent finds the next identifier at or after i, skipping numeric
// literals so that exponents like 1e3 are not read as names.
func nextIdent(s string, i int) (start, end int, ok bool) {
	for i < len(s) {
		b := s[i]
		switch {
		case isDigit(b) || (b == '.' && i+1 < len(s) && isDigit(s[i+1])):
			i = numberEnd(s, i)
		case isIdentStart(b):
			j := i + 1
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			return i, j, true
		default:
			i++
		}
	}
	return len(s), len(s), false
}

// skipSpace returns the index of the first non-space byte at or after i.
func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// followedBy reports whether the first non-space byte at or after i is c,
// and returns its index.
func followedBy(s string, i int, c byte) (int, bool) {
	j := skipSpace(s, i)
	if j < len(s) && s[j] == c {
		return j, true
	}
	return j, false
}

// matchClose returns the index of the bracket that closes s[open], or -1.
func matchClose(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitArgs splits an argument list at top-level commas. An empty list
// yields no arguments; empty entries are kept so callers can reject them.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[last:]))
}

// checkBalance verifies that every bracket is closed by its partner.
func checkBalance(s string) error {
	var stack []int
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', '[':
			stack = append(stack, i)
		case ')', ']':
			if len(stack) == 0 {
				return diag.Syntaxf(i, "unmatched %q", c)
			}
			open := stack[len(stack)-1]
			if (s[open] == '(') != (c == ')') {
				return diag.Syntaxf(i, "%q does not close %q at %d", c, s[open], open)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return diag.Syntaxf(open, "unclosed %q", s[open])
	}
	return nil
}

// precedence returns the binding strength of the loosest operator at the top
// level of text.
func precedence(text string) int {
	p := precAtom
	depth := 0
	seen, operand := false, false
	for i := 0; i < len(text); {
		b := text[i]
		switch {
		case isSpace(b):
			i++
			continue
		case b == '(' || b == '[':
			depth++
			operand = false
			i++
		case b == ')' || b == ']':
			depth--
			operand = true
			i++
		case isDigit(b) || b == '.':
			i = numberEnd(text, i)
			operand = true
		case isIdentStart(b):
			i++
			for i < len(text) && isIdentByte(text[i]) {
				i++
			}
			operand = true
		default:
			if depth == 0 {
				switch b {
				case '+', '-':
					if operand || !seen {
						p = min(p, precSum)
					}
				case '*', '/':
					p = min(p, precProd)
				case '^':
					p = min(p, precPow)
				case ',', '=':
					p = precNone
				}
			}
			operand = false
			i++
		}
		seen = true
	}
	return p
}

// leftNeed returns the binding strength an operand requires after the last
// token of before.
func leftNeed(before string) int {
	i := len(before) - 1
	for i >= 0 && isSpace(before[i]) {
		i--
	}
	if i < 0 {
		return precNone
	}
	switch before[i] {
	case '+':
		return precSum
	case '-', '*':
		return precProd
	case '/':
		return precPow
	case '^':
		return precAtom
	}
	return precNone
}

// rightNeed returns the binding strength an operand requires before the
// first token of after.
func rightNeed(after string) int {
	i := skipSpace(after, 0)
	if i >= len(after) {
		return precNone
	}
	switch after[i] {
	case '+', '-':
		return precSum
	case '*', '/':
		return precProd
	case '^':
		return precAtom
	}
	return precNone
}

// place returns text ready to sit between before and after, parenthesised
// only when its loosest operator binds weaker than its neighbours require.
func place(text, before, after string) string {
	if precedence(text) < max(leftNeed(before), rightNeed(after)) {
		return "(" + text + ")"
	}
	return text
}
