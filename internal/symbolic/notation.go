package symbolic

import "strings"

// notation renders operands for one output format.
type notation struct {
	render      func(Expr) string
	open, close string
	times       string
}

var (
	plainText = notation{render: Expr.String, open: "(", close: ")", times: "*"}
	latexText = notation{render: Expr.LaTeX, open: `\left(`, close: `\right)`, times: " "}
)

func (n notation) group(e Expr) string { return n.open + n.render(e) + n.close }

// groupSum parenthesises e when it is a sum.
func (n notation) groupSum(e Expr) string {
	if _, ok := e.(*Add); ok {
		return n.group(e)
	}
	return n.render(e)
}

// sum joins terms, writing "a - b" rather than "a + -b".
func (n notation) sum(terms []Expr) string {
	var b strings.Builder
	for i, t := range terms {
		if i == 0 {
			b.WriteString(n.render(t))
			continue
		}
		if neg, ok := negated(t); ok {
			b.WriteString(" - " + n.groupSum(neg))
			continue
		}
		b.WriteString(" + " + n.render(t))
	}
	return b.String()
}

// product joins factors, folding a leading -1 into a sign.
func (n notation) product(factors []Expr) string {
	sign := ""
	if c, ok := factors[0].(*Num); ok && c.IsNegOne() && len(factors) > 1 {
		sign, factors = "-", factors[1:]
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		parts[i] = n.groupSum(f)
	}
	return sign + strings.Join(parts, n.times)
}

// negated returns -e when e prints with a leading minus sign.
func negated(e Expr) (Expr, bool) {
	switch v := e.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			rest := append([]Expr{numNeg(c)}, v.factors[1:]...)
			return MulOf(rest...), true
		}
	}
	return nil, false
}
