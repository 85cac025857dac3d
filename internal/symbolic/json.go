package symbolic

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// ToJSON encodes e as a JSON object tree. Every node carries a "type"
// discriminator; see FromJSON for the accepted shapes.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToMap returns the object form of e, ready to embed in a larger document.
func ToMap(e Expr) map[string]any { return e.toJSON() }

// node is one decoded JSON object with the accessors the decoders share.
type node struct {
	kind   string
	fields map[string]any
}

func (n node) errorf(format string, args ...any) error {
	return fmt.Errorf("%s: %s", n.kind, fmt.Sprintf(format, args...))
}

func (n node) text(field string) (string, error) {
	s, ok := n.fields[field].(string)
	if !ok || s == "" {
		return "", n.errorf("%q must be a non-empty string", field)
	}
	return s, nil
}

func (n node) child(field string) (Expr, error) {
	m, ok := n.fields[field].(map[string]any)
	if !ok {
		return nil, n.errorf("%q must be an object", field)
	}
	e, err := FromJSON(m)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", n.kind, field, err)
	}
	return e, nil
}

func (n node) children(field string) ([]Expr, error) {
	raw, ok := n.fields[field].([]any)
	if !ok {
		return nil, n.errorf("%q must be an array", field)
	}
	out := make([]Expr, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, n.errorf("%s[%d] must be an object", field, i)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s.%s[%d]: %w", n.kind, field, i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

var decoders map[string]func(node) (Expr, error)

// Populated in init: the decoders recurse through FromJSON.
func init() {
	decoders = map[string]func(node) (Expr, error){
		"num":      decodeNum,
		"sym":      decodeSym,
		"const":    decodeConst,
		"add":      decodeAdd,
		"mul":      decodeMul,
		"pow":      decodePow,
		"func":     decodeFunc,
		"extremum": decodeExtremum,
	}
}

// FromJSON rebuilds an expression from the object form produced by ToMap.
// The result is simplified as it is assembled.
func FromJSON(data map[string]any) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	kind, ok := data["type"].(string)
	if !ok || kind == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}
	decode, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown expression type %q (want one of %s)", kind, decoderKinds())
	}
	return decode(node{kind: kind, fields: data})
}

func decoderKinds() string {
	kinds := make([]string, 0, len(decoders))
	for k := range decoders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return strings.Join(kinds, ", ")
}

func decodeNum(n node) (Expr, error) {
	s, err := n.text("value")
	if err != nil {
		return nil, err
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, n.errorf("invalid value %q", s)
	}
	return &Num{val: r}, nil
}

func decodeSym(n node) (Expr, error) {
	name, err := n.text("name")
	if err != nil {
		return nil, err
	}
	return S(name), nil
}

func decodeConst(n node) (Expr, error) {
	name, err := n.text("name")
	if err != nil {
		return nil, err
	}
	if c, ok := constNamed(name); ok {
		return c, nil
	}
	return nil, n.errorf("unknown constant %q", name)
}

func decodeAdd(n node) (Expr, error) {
	terms, err := n.children("terms")
	if err != nil {
		return nil, err
	}
	return AddOf(terms...), nil
}

func decodeMul(n node) (Expr, error) {
	factors, err := n.children("factors")
	if err != nil {
		return nil, err
	}
	return MulOf(factors...), nil
}

func decodePow(n node) (Expr, error) {
	base, err := n.child("base")
	if err != nil {
		return nil, err
	}
	exp, err := n.child("exp")
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

func decodeFunc(n node) (Expr, error) {
	name, err := n.text("name")
	if err != nil {
		return nil, err
	}
	if _, ok := builtins[name]; !ok && !strings.HasPrefix(name, "D[") {
		return nil, n.errorf("unknown function %q", name)
	}
	arg, err := n.child("arg")
	if err != nil {
		return nil, err
	}
	return funcOf(name, arg).Simplify(), nil
}

func decodeExtremum(n node) (Expr, error) {
	name, err := n.text("name")
	if err != nil {
		return nil, err
	}
	args, err := n.children("args")
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, n.errorf("%s needs at least one argument", name)
	}
	switch name {
	case "Max":
		return MaxOf(args...), nil
	case "Min":
		return MinOf(args...), nil
	}
	return nil, n.errorf("unknown name %q", name)
}
