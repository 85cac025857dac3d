package symbolic

import (
	"math"
	"math/big"
)

// maxFoldPower bounds the integer exponents folded exactly.
const maxFoldPower = 20

// Pow is base^exp.
type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base, exp := p.base.Simplify(), p.exp.Simplify()
	bn, baseNum := base.(*Num)
	en, expNum := exp.(*Num)

	switch {
	case expNum && en.IsZero():
		return N(1)
	case expNum && en.IsOne():
		return base
	case baseNum && bn.IsZero():
		// 0^-k is a division by zero and stays unevaluated.
		if expNum && en.IsNegative() {
			return &Pow{base: base, exp: exp}
		}
		return N(0)
	case baseNum && bn.IsOne():
		return N(1)
	case baseNum && expNum:
		if v, ok := ratPow(bn, en); ok {
			return v
		}
	}
	// (b^m)^n = b^(m*n) only holds in general for integer n.
	if inner, ok := base.(*Pow); ok && expNum && en.IsInteger() {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	return &Pow{base: base, exp: exp}
}

// ratPow raises b to a small integer power exactly. b must be non-zero when
// e is negative.
func ratPow(b, e *Num) (*Num, bool) {
	if !e.IsInteger() || !e.val.Num().IsInt64() {
		return nil, false
	}
	k := e.val.Num().Int64()
	if k > maxFoldPower || k < -maxFoldPower {
		return nil, false
	}
	abs := big.NewInt(k)
	abs.Abs(abs)
	r := new(big.Rat).SetFrac(
		new(big.Int).Exp(b.val.Num(), abs, nil),
		new(big.Int).Exp(b.val.Denom(), abs, nil),
	)
	if k < 0 {
		return numRecip(&Num{val: r}), true
	}
	return &Num{val: r}, true
}

func (p *Pow) baseNeedsParens() bool {
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return b.IsNegative() || !b.IsInteger()
	}
	return false
}

func (p *Pow) expNeedsParens() bool {
	switch e := p.exp.(type) {
	case *Sym, *Const:
		return false
	case *Num:
		return !e.IsInteger()
	}
	return true
}

func (p *Pow) String() string {
	base, exp := p.base.String(), p.exp.String()
	if p.baseNeedsParens() {
		base = plainText.group(p.base)
	}
	if p.expNeedsParens() {
		exp = plainText.group(p.exp)
	}
	return base + "^" + exp
}

func (p *Pow) LaTeX() string {
	base := p.base.LaTeX()
	if p.baseNeedsParens() {
		base = latexText.group(p.base)
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	if _, ok := p.exp.(*Num); ok {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), p.base.Diff(varName))
	}
	if _, ok := p.base.(*Num); ok {
		return MulOf(p, LnOf(p.base), p.exp.Diff(varName))
	}
	// d(u^w) = u^w * (w' ln u + w u'/u)
	return MulOf(p, AddOf(
		MulOf(p.exp.Diff(varName), LnOf(p.base)),
		MulOf(p.exp, p.base.Diff(varName), PowOf(p.base, N(-1))),
	))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok := p.base.Eval()
	if !ok {
		return nil, false
	}
	e, ok := p.exp.Eval()
	if !ok {
		return nil, false
	}
	if !b.IsZero() || !e.IsNegative() {
		if v, ok := ratPow(b, e); ok {
			return v, true
		}
	}
	return numFloat(math.Pow(b.Float64(), e.Float64()))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) toJSON() map[string]any {
	return map[string]any{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
