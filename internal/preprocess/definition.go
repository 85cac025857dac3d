package preprocess

import (
	"errors"
	"sort"
	"strings"

	"github.com/njchilds90/dimplot/internal/diag"
	"github.com/njchilds90/dimplot/internal/symbolic"
)

// Placeholder is the axis placeholder inside a combinator argument.
const Placeholder = "n"

// Definition is a user function, Name(Params...) = Body.
type Definition struct {
	Name   string   `json:"name" yaml:"name"`
	Params []string `json:"params" yaml:"params"`
	Body   string   `json:"body" yaml:"body"`
	Source string   `json:"source" yaml:"-"`
}

func (d Definition) String() string {
	return d.Name + "(" + strings.Join(d.Params, ", ") + ") = " + d.Body
}

// Functions maps a function name to its definition.
type Functions map[string]Definition

// Names returns the defined names in sorted order.
func (f Functions) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of f.
func (f Functions) Clone() Functions {
	out := make(Functions, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Reserved reports whether name is taken by a combinator, a builtin function,
// a constant or the axis placeholder.
func Reserved(name string) bool {
	if _, ok := combinators[name]; ok {
		return true
	}
	return name == Placeholder || symbolic.IsBuiltin(name) || symbolic.IsConstant(name)
}

// ParseDefinition recognises "Name(p1, p2, ...) = body". It returns false
// with no error when text is an ordinary equation, including calls with
// non-identifier arguments such as "Circle(5) = 1".
func ParseDefinition(text string) (Definition, bool, error) {
	src := strings.TrimSpace(text)
	start, end, ok := nextIdent(src, 0)
	if !ok || start != 0 {
		return Definition{}, false, nil
	}
	name := src[:end]
	if Reserved(name) {
		return Definition{}, false, nil
	}
	open, ok := followedBy(src, end, '(')
	if !ok {
		return Definition{}, false, nil
	}
	closing := matchClose(src, open)
	if closing < 0 {
		return Definition{}, false, nil
	}
	eq, ok := followedBy(src, closing+1, '=')
	if !ok {
		return Definition{}, false, nil
	}
	params := splitArgs(src[open+1 : closing])
	for _, p := range params {
		if !isIdent(p) {
			return Definition{}, false, nil
		}
	}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p] {
			return Definition{}, false, diag.Syntaxf(open, "%s: duplicate parameter %q", name, p)
		}
		if Reserved(p) {
			return Definition{}, false, diag.Syntaxf(open, "%s: parameter %q shadows a builtin", name, p)
		}
		seen[p] = true
	}
	rest := src[eq+1:]
	body := strings.TrimSpace(rest)
	if body == "" {
		return Definition{}, false, diag.Syntaxf(eq, "%s: empty body", name)
	}
	at := eq + 1 + len(rest) - len(strings.TrimLeft(rest, " \t\r\n"))
	if i := strings.IndexByte(body, '='); i >= 0 {
		return Definition{}, false, diag.Syntaxf(at+i, "%s: body may not contain '='", name)
	}
	if err := checkBody(body); err != nil {
		return Definition{}, false, shifted(err, at, name)
	}
	return Definition{Name: name, Params: params, Body: body, Source: src}, true, nil
}

// checkBody applies the bracket rules of Expand to a definition body, so a
// malformed body is refused when it is defined rather than spliced into
// every call.
func checkBody(body string) error {
	s, err := normalize(body)
	if err != nil {
		return err
	}
	return checkBalance(s)
}

// shifted moves a body-relative error to its offset in the definition.
func shifted(err error, by int, name string) error {
	var de *diag.Error
	if !errors.As(err, &de) {
		return err
	}
	moved := *de
	moved.Pos += by
	moved.Msg = name + ": " + moved.Msg
	return &moved
}

// Substitute replaces every whole identifier found in values with its
// replacement text, parenthesised where the surrounding operators need it.
// Identifiers used as call names are left alone.
func Substitute(src string, values map[string]string) string {
	var b strings.Builder
	last := 0
	for i := 0; ; {
		start, end, ok := nextIdent(src, i)
		if !ok {
			break
		}
		i = end
		val, found := values[src[start:end]]
		if !found {
			continue
		}
		if _, call := followedBy(src, end, '('); call {
			continue
		}
		b.WriteString(src[last:start])
		b.WriteString(place(val, b.String(), src[end:]))
		last = end
	}
	b.WriteString(src[last:])
	return b.String()
}
