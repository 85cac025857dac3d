package symbolic

import "slices"

// Add is a sum of terms.
type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func innerTerms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return nil
}

// Simplify flattens nested sums and combines like terms: bare symbols first in
// name order, then other terms in first-seen order, then the constant.
func (a *Add) Simplify() Expr {
	constant := N(0)
	syms, others := newCollector(), newCollector()
	for _, t := range spliced(a.terms, innerTerms) {
		if v, ok := t.(*Num); ok {
			constant = numAdd(constant, v)
			continue
		}
		coeff, rest := splitCoefficient(t)
		if _, ok := rest.(*Sym); ok {
			syms.add(rest, coeff)
		} else {
			others.add(rest, coeff)
		}
	}
	slices.Sort(syms.keys)

	var out []Expr
	emit := func(term Expr, coeff *Num) {
		if t := withCoefficient(coeff, term); t != nil {
			out = append(out, t)
		}
	}
	syms.each(emit)
	others.each(emit)
	if !constant.IsZero() {
		out = append(out, constant)
	}
	switch len(out) {
	case 0:
		return N(0)
	case 1:
		return out[0]
	}
	return &Add{terms: out}
}

// splitCoefficient returns the numeric coefficient of a simplified term and
// the remaining factor.
func splitCoefficient(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) < 2 {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	switch {
	case !ok:
		return N(1), e
	case len(m.factors) == 2:
		return c, m.factors[1]
	}
	return c, &Mul{factors: m.factors[1:]}
}

func withCoefficient(c *Num, rest Expr) Expr {
	if c.IsZero() {
		return nil
	}
	if c.IsOne() {
		return rest
	}
	return MulOf(c, rest)
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	return plainText.sum(a.terms)
}

func (a *Add) LaTeX() string { return latexText.sum(a.terms) }

func (a *Add) Sub(varName string, value Expr) Expr {
	return AddOf(mapExprs(a.terms, func(t Expr) Expr { return t.Sub(varName, value) })...)
}

func (a *Add) Diff(varName string) Expr {
	return AddOf(mapExprs(a.terms, func(t Expr) Expr { return t.Diff(varName) })...)
}

func (a *Add) Eval() (*Num, bool) { return foldNums(a.terms, N(0), numAdd) }

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalOperands(a.terms, o.terms)
}

func (a *Add) toJSON() map[string]any {
	return map[string]any{"type": "add", "terms": jsonOperands(a.terms)}
}
