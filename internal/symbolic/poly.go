package symbolic

import (
	"maps"
	"slices"
)

// Equation is LHS = RHS. Its solution set is the zero set of Residual.
type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }

func (e *Equation) String() string { return e.LHS.String() + " = " + e.RHS.String() }
func (e *Equation) LaTeX() string  { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

// Residual returns LHS - RHS.
func (e *Equation) Residual() Expr {
	return AddOf(e.LHS, MulOf(N(-1), e.RHS))
}

// operands returns the direct sub-expressions of e, nil for leaves.
func operands(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return v.terms
	case *Mul:
		return v.factors
	case *Pow:
		return []Expr{v.base, v.exp}
	case *Func:
		return []Expr{v.arg}
	case *Extremum:
		return v.args
	}
	return nil
}

func mapExprs(in []Expr, fn func(Expr) Expr) []Expr {
	out := make([]Expr, len(in))
	for i, e := range in {
		out[i] = fn(e)
	}
	return out
}

// maxExpandPower bounds the integer powers Expand multiplies out.
const maxExpandPower = 10

// Expand multiplies out products of sums and small non-negative integer
// powers of sums, recursing into function arguments.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		return AddOf(mapExprs(v.terms, expandExpr)...)
	case *Mul:
		return distribute(mapExprs(v.factors, expandExpr))
	case *Pow:
		base := expandExpr(v.base)
		if k, ok := smallPower(v.exp); ok {
			return distribute(slices.Repeat([]Expr{base}, k))
		}
		return PowOf(base, expandExpr(v.exp))
	case *Func:
		return funcOf(v.name, expandExpr(v.arg)).Simplify()
	case *Extremum:
		return (&Extremum{max: v.max, args: mapExprs(v.args, expandExpr)}).Simplify()
	}
	return e
}

// distribute multiplies already expanded factors term by term, collecting
// like terms after each factor.
func distribute(factors []Expr) Expr {
	acc := Expr(N(1))
	for _, f := range factors {
		var terms []Expr
		for _, t := range addends(acc) {
			for _, u := range addends(f) {
				terms = append(terms, MulOf(t, u))
			}
		}
		acc = AddOf(terms...)
	}
	return acc
}

func addends(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

func smallPower(exp Expr) (int, bool) {
	n, ok := exp.(*Num)
	if !ok || !n.IsInteger() || n.IsNegative() {
		return 0, false
	}
	k := n.val.Num().Int64()
	return int(k), k <= maxExpandPower
}

// FreeSymbols returns the set of symbol names in e. Constants are not symbols.
func FreeSymbols(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	var walk func(Expr)
	walk = func(e Expr) {
		if s, ok := e.(*Sym); ok {
			out[s.name] = struct{}{}
			return
		}
		for _, op := range operands(e) {
			walk(op)
		}
	}
	walk(e)
	return out
}

// SortedSymbols returns the free symbols of e in name order.
func SortedSymbols(e Expr) []string {
	return slices.Sorted(maps.Keys(FreeSymbols(e)))
}

func hasSymbol(e Expr, name string) bool {
	_, ok := FreeSymbols(e)[name]
	return ok
}

// PolyCoeffsResult maps a degree to its coefficient.
type PolyCoeffsResult map[int]Expr

// Coeff returns the coefficient of degree deg, zero when absent.
func (r PolyCoeffsResult) Coeff(deg int) Expr {
	if c, ok := r[deg]; ok {
		return c
	}
	return N(0)
}

// Degree returns the highest degree with a non-zero coefficient.
func (r PolyCoeffsResult) Degree() int {
	deg := 0
	for d, c := range r {
		if d > deg && !isNumEqual(c, 0) {
			deg = d
		}
	}
	return deg
}

// PolyCoeffs returns the coefficients of expr as a polynomial in varName.
// When expr is not polynomial in varName the whole expression is reported
// as the degree-zero coefficient.
func PolyCoeffs(expr Expr, varName string) PolyCoeffsResult {
	if c, ok := polynomial(expr.Simplify(), varName); ok {
		return c
	}
	return PolyCoeffsResult{0: expr}
}

// IsPolynomial reports whether varName occurs in expr only through sums,
// products and non-negative integer powers.
func IsPolynomial(expr Expr, varName string) bool {
	_, ok := polynomial(expr, varName)
	return ok
}

// Degree returns the degree of expr in varName, 0 when expr is not
// polynomial in it.
func Degree(expr Expr, varName string) int {
	c, ok := polynomial(expr.Simplify(), varName)
	if !ok {
		return 0
	}
	return c.Degree()
}

func polynomial(e Expr, v string) (PolyCoeffsResult, bool) {
	if !hasSymbol(e, v) {
		return PolyCoeffsResult{0: e}, true
	}
	switch t := e.(type) {
	case *Sym:
		return PolyCoeffsResult{1: N(1)}, true
	case *Add:
		sum := PolyCoeffsResult{}
		for _, term := range t.terms {
			c, ok := polynomial(term, v)
			if !ok {
				return nil, false
			}
			for d, k := range c {
				sum[d] = AddOf(sum.Coeff(d), k)
			}
		}
		return sum.pruned(), true
	case *Mul:
		prod := PolyCoeffsResult{0: N(1)}
		for _, f := range t.factors {
			c, ok := polynomial(f, v)
			if !ok {
				return nil, false
			}
			prod = prod.times(c)
		}
		return prod, true
	case *Pow:
		k, ok := smallPower(t.exp)
		if !ok {
			if s, isSym := t.base.(*Sym); isSym && s.name == v && k > 0 {
				return PolyCoeffsResult{k: N(1)}, true
			}
			return nil, false
		}
		base, ok := polynomial(t.base, v)
		if !ok {
			return nil, false
		}
		out := PolyCoeffsResult{0: N(1)}
		for range k {
			out = out.times(base)
		}
		return out, true
	}
	return nil, false
}

func (r PolyCoeffsResult) times(o PolyCoeffsResult) PolyCoeffsResult {
	out := PolyCoeffsResult{}
	for d1, c1 := range r {
		for d2, c2 := range o {
			out[d1+d2] = AddOf(out.Coeff(d1+d2), MulOf(c1, c2))
		}
	}
	return out.pruned()
}

// pruned drops zero coefficients, keeping degree zero.
func (r PolyCoeffsResult) pruned() PolyCoeffsResult {
	for d, c := range r {
		if d != 0 && isNumEqual(c, 0) {
			delete(r, d)
		}
	}
	if _, ok := r[0]; !ok {
		r[0] = N(0)
	}
	return r
}
