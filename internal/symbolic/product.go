package symbolic

import (
	"slices"
	"strings"
)

// Mul is a product of factors. A numeric coefficient, when present, is the
// first factor.
type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func innerFactors(e Expr) []Expr {
	if m, ok := e.(*Mul); ok {
		return m.factors
	}
	return nil
}

// Simplify flattens nested products, folds the numeric coefficient to the
// front and merges repeated bases into powers.
func (m *Mul) Simplify() Expr {
	coeff := N(1)
	powers := newCollector()
	for _, f := range spliced(m.factors, innerFactors) {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := f, N(1)
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok {
				base, exp = p.base, e
			}
		}
		powers.add(base, exp)
	}
	if coeff.IsZero() {
		return N(0)
	}

	var rest []Expr
	powers.each(func(base Expr, exp *Num) {
		f := PowOf(base, exp)
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			return
		}
		rest = append(rest, f)
	})
	switch {
	case coeff.IsZero():
		return N(0)
	case len(rest) == 0:
		return coeff
	}
	sortByString(rest)

	if !coeff.IsOne() {
		return &Mul{factors: append([]Expr{coeff}, rest...)}
	}
	if len(rest) == 1 {
		return rest[0]
	}
	return &Mul{factors: rest}
}

// sortByString orders xs by printed form, printing each operand once.
func sortByString(xs []Expr) {
	keys := make(map[Expr]string, len(xs))
	for _, x := range xs {
		keys[x] = x.String()
	}
	slices.SortStableFunc(xs, func(a, b Expr) int { return strings.Compare(keys[a], keys[b]) })
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	return plainText.product(m.factors)
}

func (m *Mul) LaTeX() string { return latexText.product(m.factors) }

func (m *Mul) Sub(varName string, value Expr) Expr {
	return MulOf(mapExprs(m.factors, func(f Expr) Expr { return f.Sub(varName, value) })...)
}

// Diff applies the product rule: one term per factor with that factor
// differentiated.
func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i := range m.factors {
		fs := slices.Clone(m.factors)
		fs[i] = fs[i].Diff(varName)
		terms[i] = MulOf(fs...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) { return foldNums(m.factors, N(1), numMul) }

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalOperands(m.factors, o.factors)
}

func (m *Mul) toJSON() map[string]any {
	return map[string]any{"type": "mul", "factors": jsonOperands(m.factors)}
}
