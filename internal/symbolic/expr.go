// Package symbolic is the exact-rational expression kernel behind the plotter:
// it parses equation text into a tree, simplifies and solves it, and compiles
// it into a numeric function.
//
// Properties:
//   - Exact rational arithmetic (math/big.Rat) for literals and folding
//   - Deterministic simplification and stable String output
//   - String output re-parses to an equal tree
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Expr is a node of an expression tree. Trees are immutable; every
// transforming method returns a new tree.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	// Eval folds the tree to a number when it contains no free symbols.
	Eval() (*Num, bool)
	Equal(other Expr) bool
	toJSON() map[string]any
}

// Simplify, String and LaTeX are function forms of the Expr methods.
func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

// Sub replaces every occurrence of varName in expr and simplifies.
func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

// Diff differentiates expr with respect to varName and simplifies.
func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

// Num is an exact rational.
type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: big.NewRat(n, 1)} }

// F returns p/q. It panics when q is zero.
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: big.NewRat(p, q)}
}

// NFloat converts f exactly; callers must not pass NaN or Inf.
func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }

// numFloat folds a float result, refusing values big.Rat cannot hold.
func numFloat(f float64) (*Num, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return NFloat(f), true
}

func (n *Num) isInt(v int64) bool {
	return n.val.IsInt() && n.val.Num().IsInt64() && n.val.Num().Int64() == v
}

func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.isInt(1) }
func (n *Num) IsNegOne() bool   { return n.isInt(-1) }
func (n *Num) IsInteger() bool  { return n.val.IsInt() }
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }

func (n *Num) Float64() float64 {
	f, _ := n.val.Float64()
	return f
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }

func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.val.Cmp(o.val) == 0
}

// shortDenom reports whether the value prints exactly as p/q. Values that
// came from float folding carry huge denominators.
func (n *Num) shortDenom() bool { return n.val.Denom().BitLen() <= 32 }

func (n *Num) String() string {
	switch {
	case n.val.IsInt():
		return n.val.Num().String()
	case n.shortDenom():
		return n.val.RatString()
	}
	return strconv.FormatFloat(n.Float64(), 'g', -1, 64)
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() || !n.shortDenom() {
		return n.String()
	}
	abs := new(big.Rat).Abs(n.val)
	sign := ""
	if n.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf(`%s\frac{%s}{%s}`, sign, abs.Num().String(), abs.Denom().String())
}

func (n *Num) toJSON() map[string]any {
	return map[string]any{"type": "num", "value": n.val.RatString()}
}

func ratOp(op func(z, x, y *big.Rat) *big.Rat) func(a, b *Num) *Num {
	return func(a, b *Num) *Num { return &Num{val: op(new(big.Rat), a.val, b.val)} }
}

var (
	numAdd = ratOp((*big.Rat).Add)
	numSub = ratOp((*big.Rat).Sub)
	numMul = ratOp((*big.Rat).Mul)
)

func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val)} }

// numRecip panics on zero; callers check first.
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}

func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }

// foldNums evaluates every operand and combines the values with op.
func foldNums(operands []Expr, acc *Num, op func(a, b *Num) *Num) (*Num, bool) {
	for _, e := range operands {
		v, ok := e.Eval()
		if !ok {
			return nil, false
		}
		acc = op(acc, v)
	}
	return acc, true
}

// Sym is a free variable.
type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr     { return s }
func (s *Sym) String() string     { return s.name }
func (s *Sym) LaTeX() string      { return s.name }
func (s *Sym) Eval() (*Num, bool) { return nil, false }
func (s *Sym) Name() string       { return s.name }

func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && o.name == s.name
}

func (s *Sym) Sub(varName string, value Expr) Expr {
	if varName != s.name {
		return s
	}
	return value
}

func (s *Sym) Diff(varName string) Expr {
	if varName != s.name {
		return N(0)
	}
	return N(1)
}

func (s *Sym) toJSON() map[string]any {
	return map[string]any{"type": "sym", "name": s.name}
}

func equalOperands(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func jsonOperands(in []Expr) []map[string]any {
	out := make([]map[string]any, len(in))
	for i, e := range in {
		out[i] = e.toJSON()
	}
	return out
}

// spliced simplifies each operand and splices in the operands of nested
// nodes that open reports.
func spliced(in []Expr, open func(Expr) []Expr) []Expr {
	out := make([]Expr, 0, len(in))
	for _, e := range in {
		s := e.Simplify()
		if inner := open(s); inner != nil {
			out = append(out, inner...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// collector accumulates a rational weight per distinct operand, keyed by
// its printed form and kept in first-seen order.
type collector struct {
	keys    []string
	weights map[string]*Num
	items   map[string]Expr
}

func newCollector() *collector {
	return &collector{weights: map[string]*Num{}, items: map[string]Expr{}}
}

func (c *collector) add(item Expr, weight *Num) {
	key := item.String()
	w, seen := c.weights[key]
	if !seen {
		c.keys = append(c.keys, key)
		c.items[key] = item
		w = N(0)
	}
	c.weights[key] = numAdd(w, weight)
}

func (c *collector) each(fn func(item Expr, weight *Num)) {
	for _, k := range c.keys {
		fn(c.items[k], c.weights[k])
	}
}
