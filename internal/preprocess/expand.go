package preprocess

import (
	"errors"
	"strconv"
	"strings"

	"github.com/njchilds90/dimplot/internal/diag"
	"github.com/njchilds90/dimplot/internal/symbolic"
)

// MaxCallDepth bounds nested user-function expansion.
const MaxCallDepth = 32

type combinator struct {
	join string // operator between terms, for sum and product
	need int    // binding a term needs next to join
	fn   string // backend function, for max and min
}

func (c combinator) apply(terms []string) string {
	if c.fn != "" {
		return c.fn + "(" + strings.Join(terms, ", ") + ")"
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		if precedence(t) < c.need {
			t = "(" + t + ")"
		}
		parts[i] = t
	}
	return strings.Join(parts, c.join)
}

var combinators = map[string]combinator{
	"sum":     {join: " + ", need: precSum},
	"product": {join: "*", need: precProd},
	"prod":    {join: "*", need: precProd},
	"max":     {fn: "Max"},
	"min":     {fn: "Min"},
}

// IsCombinator reports whether name expands over the axes.
func IsCombinator(name string) bool {
	_, ok := combinators[name]
	return ok
}

// Expand rewrites src for the given axes and functions. The stages run in a
// fixed order:
//
//  1. "**" becomes "^", "|E|" becomes "abs(E)", brackets must balance
//  2. user-function calls, recursively, arguments bound as literal text
//  3. n[i] indexing
//  4. sum, product, max and min, innermost first
//
// so user functions may use the dimension-agnostic forms. Any call left
// after expansion must name a builtin. Expanding expanded text is a no-op.
func Expand(src string, axes Axes, fns Functions) (string, error) {
	if axes.Dimension() < MinDimension {
		return "", errors.New("preprocess: axes not initialised")
	}
	s, err := normalize(src)
	if err != nil {
		return "", err
	}
	if err := checkBalance(s); err != nil {
		return "", err
	}
	e := &expander{axes: axes, fns: fns}
	if s, err = e.calls(s, 0); err != nil {
		return "", err
	}
	if s, err = e.indexes(s); err != nil {
		return "", err
	}
	if s, err = e.combinators(s, false); err != nil {
		return "", err
	}
	if err := checkCalls(s); err != nil {
		return "", err
	}
	return s, nil
}

// normalize rewrites "**" to "^" and absolute-value bars to abs(...).
// A bar opens when it follows an operator, an opening bracket, a comma, an
// equals sign or the start of the text, and closes otherwise.
func normalize(src string) (string, error) {
	s := strings.ReplaceAll(src, "**", "^")
	if !strings.Contains(s, "|") {
		return s, nil
	}
	var b strings.Builder
	var open []int
	for i := 0; i < len(s); i++ {
		if s[i] != '|' {
			b.WriteByte(s[i])
			continue
		}
		if opensBar(b.String()) {
			open = append(open, i)
			b.WriteString("abs(")
			continue
		}
		if len(open) == 0 {
			return "", diag.Syntaxf(i, "unmatched '|'")
		}
		open = open[:len(open)-1]
		b.WriteByte(')')
	}
	if len(open) > 0 {
		return "", diag.Syntaxf(open[len(open)-1], "unclosed '|'")
	}
	return b.String(), nil
}

func opensBar(before string) bool {
	i := len(before) - 1
	for i >= 0 && isSpace(before[i]) {
		i--
	}
	if i < 0 {
		return true
	}
	return strings.IndexByte("+-*/^([,=", before[i]) >= 0
}

type expander struct {
	axes Axes
	fns  Functions
}

// calls expands user-function calls in s.
func (e *expander) calls(s string, depth int) (string, error) {
	var b strings.Builder
	last := 0
	for i := 0; ; {
		start, end, ok := nextIdent(s, i)
		if !ok {
			break
		}
		i = end
		name := s[start:end]
		def, isFn := e.fns[name]
		open, isCall := followedBy(s, end, '(')
		if !isFn || !isCall {
			continue
		}
		if depth >= MaxCallDepth {
			return "", diag.Syntaxf(start, "%s: calls nest deeper than %d", name, MaxCallDepth)
		}
		closing := matchClose(s, open)
		if closing < 0 {
			return "", diag.Syntaxf(open, "unclosed '('")
		}
		args := splitArgs(s[open+1 : closing])
		if len(args) != len(def.Params) {
			return "", diag.Syntaxf(start, "%s takes %d argument(s), got %d", name, len(def.Params), len(args))
		}
		bind := make(map[string]string, len(args))
		for k, arg := range args {
			if arg == "" {
				return "", diag.Syntaxf(open, "%s: argument %d is empty", name, k+1)
			}
			expanded, err := e.calls(arg, depth)
			if err != nil {
				return "", err
			}
			bind[def.Params[k]] = expanded
		}
		body, err := e.calls(Substitute(def.Body, bind), depth+1)
		if err != nil {
			return "", err
		}
		b.WriteString(s[last:start])
		b.WriteString(place(body, b.String(), s[closing+1:]))
		last = closing + 1
		i = last
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

// indexes replaces n[i] with the name of axis i.
func (e *expander) indexes(s string) (string, error) {
	var b strings.Builder
	last := 0
	for i := 0; ; {
		start, end, ok := nextIdent(s, i)
		if !ok {
			break
		}
		i = end
		if s[start:end] != Placeholder {
			continue
		}
		open, ok := followedBy(s, end, '[')
		if !ok {
			continue
		}
		closing := matchClose(s, open)
		if closing < 0 {
			return "", diag.Syntaxf(open, "unclosed '['")
		}
		text := strings.TrimSpace(s[open+1 : closing])
		if text == "" || strings.TrimLeft(text, "0123456789") != "" {
			return "", diag.Syntaxf(open+1, "axis index %q is not a non-negative integer", text)
		}
		k, err := strconv.Atoi(text)
		if err != nil {
			return "", diag.Syntaxf(open+1, "axis index %q: %v", text, err)
		}
		axis, ok := e.axes.Name(k)
		if !ok {
			return "", diag.Indexf(start, "axis index %d out of range for dimension %d", k, e.axes.Dimension())
		}
		b.WriteString(s[last:start])
		b.WriteString(axis)
		last = closing + 1
		i = last
	}
	b.WriteString(s[last:])
	out := b.String()
	if j := strings.IndexByte(out, '['); j >= 0 {
		return "", diag.Syntaxf(j, "'[' may only follow %s", Placeholder)
	}
	return out, nil
}

// combinators expands sum, product, max and min. A single argument is
// repeated once per axis with the placeholder replaced by the axis name;
// several arguments are combined as given and may only use the placeholder
// when an enclosing single-argument combinator binds it.
func (e *expander) combinators(s string, bound bool) (string, error) {
	var b strings.Builder
	last := 0
	for i := 0; ; {
		start, end, ok := nextIdent(s, i)
		if !ok {
			break
		}
		i = end
		name := s[start:end]
		c, isComb := combinators[name]
		open, isCall := followedBy(s, end, '(')
		if !isComb || !isCall {
			continue
		}
		closing := matchClose(s, open)
		if closing < 0 {
			return "", diag.Syntaxf(open, "unclosed '('")
		}
		single := len(splitArgs(s[open+1:closing])) == 1
		inner, err := e.combinators(s[open+1:closing], bound || single)
		if err != nil {
			return "", err
		}
		args := splitArgs(inner)
		if len(args) == 0 {
			return "", diag.Syntaxf(start, "%s() needs an argument", name)
		}
		for k, arg := range args {
			if arg == "" {
				return "", diag.Syntaxf(open, "%s: argument %d is empty", name, k+1)
			}
			if !single && !bound && hasIdent(arg, Placeholder) {
				return "", diag.Syntaxf(open, "%s: argument %d uses %s outside a single-argument call; write %s[i]", name, k+1, Placeholder, Placeholder)
			}
		}
		terms := args
		if len(args) == 1 {
			terms = make([]string, 0, e.axes.Dimension())
			for _, axis := range e.axes.names {
				terms = append(terms, Substitute(args[0], map[string]string{Placeholder: axis}))
			}
		}
		b.WriteString(s[last:start])
		b.WriteString(place(c.apply(terms), b.String(), s[closing+1:]))
		last = closing + 1
		i = last
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

// hasIdent reports whether name occurs in s as a whole identifier.
func hasIdent(s, name string) bool {
	for i := 0; ; {
		start, end, ok := nextIdent(s, i)
		if !ok {
			return false
		}
		if s[start:end] == name {
			return true
		}
		i = end
	}
}

// checkCalls rejects calls of names the backend does not know.
func checkCalls(s string) error {
	for i := 0; ; {
		start, end, ok := nextIdent(s, i)
		if !ok {
			return nil
		}
		i = end
		if _, call := followedBy(s, end, '('); call && !symbolic.IsBuiltin(s[start:end]) {
			return diag.Namef(start, "unknown function %q", s[start:end])
		}
	}
}
