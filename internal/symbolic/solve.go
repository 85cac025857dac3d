package symbolic

import (
	"fmt"
	"math"
	"slices"
)

// SolveResult holds the roots found by a solver. Error is set, and
// Solutions empty, when the solver gave up.
type SolveResult struct {
	Solutions []Expr
	ExactForm bool
	Error     string
}

// Strings renders every solution.
func (r SolveResult) Strings() []string {
	out := make([]string, len(r.Solutions))
	for i, s := range r.Solutions {
		out[i] = s.String()
	}
	return out
}

func failed(format string, args ...any) SolveResult {
	return SolveResult{Error: fmt.Sprintf(format, args...)}
}

func exact(sols ...Expr) SolveResult { return SolveResult{Solutions: sols, ExactForm: true} }

// numeric evaluates every coefficient, reporting false if any is symbolic.
func numeric(coeffs ...Expr) ([]*Num, bool) {
	out := make([]*Num, len(coeffs))
	for i, c := range coeffs {
		n, ok := c.Eval()
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func floats(ns []*Num) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = n.Float64()
	}
	return out
}

// SolveLinear solves a*x + b = 0.
func SolveLinear(a, b Expr) SolveResult {
	ns, ok := numeric(a, b)
	if !ok {
		return exact(MulOf(N(-1), b, PowOf(a, N(-1))))
	}
	an, bn := ns[0], ns[1]
	switch {
	case an.IsZero() && bn.IsZero():
		return failed("identity (0 = 0): infinite solutions")
	case an.IsZero():
		return failed("no solution (inconsistent)")
	}
	return exact(numDiv(numNeg(bn), an))
}

// SolveQuadratic solves a*x^2 + b*x + c = 0 numerically. The coefficients
// must evaluate to numbers.
func SolveQuadratic(a, b, c Expr) SolveResult {
	ns, ok := numeric(a, b, c)
	if !ok {
		return failed("SolveQuadratic requires numeric coefficients")
	}
	return quadratic(ns, false)
}

// SolveQuadraticExact keeps rational roots exact and falls back to the
// symbolic quadratic formula when a coefficient is not numeric.
func SolveQuadraticExact(a, b, c Expr) SolveResult {
	ns, ok := numeric(a, b, c)
	if ok {
		return quadratic(ns, true)
	}
	sq := SqrtOf(Expand(AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c))))
	over := PowOf(MulOf(N(2), a), N(-1))
	negB := MulOf(N(-1), b)
	return exact(
		MulOf(AddOf(negB, sq), over),
		MulOf(AddOf(negB, MulOf(N(-1), sq)), over),
	)
}

func quadratic(ns []*Num, keepExact bool) SolveResult {
	if ns[0].IsZero() {
		return SolveLinear(ns[1], ns[2])
	}
	f := floats(ns)
	a, b, c := f[0], f[1], f[2]
	disc := b*b - 4*a*c
	if disc < 0 {
		return failed("complex roots: %g ± %gi", -b/(2*a), math.Sqrt(-disc)/(2*a))
	}
	sq := math.Sqrt(disc)
	if r := math.Round(sq); keepExact && r*r == disc {
		twoA := numMul(N(2), ns[0])
		root := int64(r)
		x1 := numDiv(numAdd(numNeg(ns[1]), N(root)), twoA)
		x2 := numDiv(numSub(numNeg(ns[1]), N(root)), twoA)
		if x1.Equal(x2) {
			return exact(x1)
		}
		return exact(x1, x2)
	}
	return SolveResult{Solutions: []Expr{NFloat((-b + sq) / (2 * a)), NFloat((-b - sq) / (2 * a))}}
}

// SolveCubic solves a*x^3 + b*x^2 + c*x + d = 0 through the depressed cubic
// t^3 + p*t + q, using the trigonometric form when all three roots are real.
func SolveCubic(a, b, c, d Expr) SolveResult {
	ns, ok := numeric(a, b, c, d)
	if !ok {
		return failed("SolveCubic requires numeric coefficients")
	}
	if ns[0].IsZero() {
		return quadratic(ns[1:], false)
	}
	f := floats(ns)
	roots := depressedCubicRoots(f[0], f[1], f[2], f[3])
	sols := make([]Expr, len(roots))
	for i, r := range roots {
		sols[i] = NFloat(r)
	}
	return SolveResult{Solutions: sols}
}

func depressedCubicRoots(a, b, c, d float64) []float64 {
	p := (3*a*c - b*b) / (3 * a * a)
	q := (2*b*b*b - 9*a*b*c + 27*a*a*d) / (27 * a * a * a)
	shift := b / (3 * a)
	disc := -(4*p*p*p + 27*q*q)

	switch {
	case disc > 0:
		m := 2 * math.Sqrt(-p/3)
		theta := math.Acos(3*q/(p*m)) / 3
		roots := make([]float64, 3)
		for k := range roots {
			roots[k] = m*math.Cos(theta-2*math.Pi*float64(k)/3) - shift
		}
		return roots
	case disc == 0 && q == 0:
		return []float64{-shift}
	case disc == 0:
		return []float64{3*q/p - shift, -3*q/(2*p) - shift}
	}
	u := math.Cbrt(-q/2 + math.Sqrt(q*q/4+p*p*p/27))
	v := 0.0
	if u != 0 {
		v = -p / (3 * u)
	}
	return []float64{u + v - shift}
}

// rootSet collects distinct roots, merging any closer than tol.
type rootSet struct {
	tol   float64
	roots []float64
}

func (s *rootSet) add(x float64) {
	for _, r := range s.roots {
		if math.Abs(r-x) < s.tol {
			return
		}
	}
	s.roots = append(s.roots, x)
}

func (s *rootSet) result() SolveResult {
	slices.Sort(s.roots)
	sols := make([]Expr, len(s.roots))
	for i, r := range s.roots {
		sols[i] = NFloat(r)
	}
	return SolveResult{Solutions: sols}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// newtonStarts is the number of intervals between Newton starting points.
const newtonStarts = 200

// SolvePolynomialNewton runs Newton's method from evenly spaced starts in
// [-searchRange, searchRange] and keeps the distinct converged roots.
// Non-positive arguments select the defaults 100, 1e-10 and 100.
func SolvePolynomialNewton(expr Expr, varName string, searchRange, tol float64, maxIter int) SolveResult {
	searchRange = orDefault(searchRange, 100)
	tol = orDefault(tol, 1e-10)
	maxIter = orDefault(maxIter, 100)

	f, err := Lambdify(expr, []string{varName})
	if err != nil {
		return SolveResult{Error: err.Error()}
	}
	df := derivative(expr, varName, f)
	set := rootSet{tol: tol * 100}
	for i := 0; i <= newtonStarts; i++ {
		x0 := -searchRange + 2*searchRange*float64(i)/newtonStarts
		if x, ok := newton(f, df, x0, tol, maxIter, 10*searchRange); ok {
			set.add(x)
		}
	}
	return set.result()
}

// orDefault returns v when positive, def otherwise.
func orDefault[T int | float64](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

func newton(f *Compiled, df func(float64) float64, x float64, tol float64, maxIter int, limit float64) (float64, bool) {
	for range maxIter {
		fx := f.Call(x)
		if !finite(fx) {
			return 0, false
		}
		if math.Abs(fx) < tol {
			return x, true
		}
		slope := df(x)
		if math.IsNaN(slope) || math.Abs(slope) < 1e-15 {
			return 0, false
		}
		x -= fx / slope
		if math.Abs(x) > limit {
			return 0, false
		}
	}
	return 0, false
}

// derivative compiles d/dvar, falling back to a central difference when the
// symbolic derivative cannot be compiled.
func derivative(expr Expr, varName string, f *Compiled) func(float64) float64 {
	if d, err := Lambdify(Diff(expr, varName), []string{varName}); err == nil {
		return func(x float64) float64 { return d.Call(x) }
	}
	return func(x float64) float64 {
		h := 1e-6 * math.Max(1, math.Abs(x))
		return (f.Call(x+h) - f.Call(x-h)) / (2 * h)
	}
}

// SolveBisect brackets sign changes of expr on a uniform scan of
// [-searchRange, searchRange] and refines each by bisection. Brackets whose
// midpoint value does not shrink (poles) are rejected.
func SolveBisect(expr Expr, varName string, searchRange float64, steps int) SolveResult {
	searchRange = orDefault(searchRange, 100)
	steps = orDefault(steps, 2000)

	f, err := Lambdify(expr, []string{varName})
	if err != nil {
		return SolveResult{Error: err.Error()}
	}
	step := 2 * searchRange / float64(steps)
	set := rootSet{tol: step / 2}
	x0, f0 := -searchRange, f.Call(-searchRange)
	for i := 1; i <= steps; i++ {
		x1 := -searchRange + float64(i)*step
		f1 := f.Call(x1)
		switch {
		case f1 == 0:
			set.add(x1)
		case f0 != 0 && finite(f0) && finite(f1) && math.Signbit(f0) != math.Signbit(f1):
			root := bisect(f, x0, x1, f0)
			scale := math.Max(1, math.Max(math.Abs(f0), math.Abs(f1)))
			if math.Abs(f.Call(root)) <= 1e-6*scale {
				set.add(root)
			}
		}
		x0, f0 = x1, f1
	}
	return set.result()
}

// bisect narrows [lo, hi], where f(lo) = flo has the opposite sign to f(hi).
func bisect(f *Compiled, lo, hi, flo float64) float64 {
	for range 60 {
		mid := (lo + hi) / 2
		fm := f.Call(mid)
		if math.Signbit(fm) == math.Signbit(flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// Solve solves expr = 0 for varName. Polynomials up to degree three use the
// closed forms; anything else in a single variable is solved numerically.
// The result may hold no solutions.
func Solve(expr Expr, varName string) SolveResult {
	expr = Expand(expr)
	if !hasSymbol(expr, varName) {
		return failed("%s does not appear in %s", varName, expr)
	}
	if c, ok := polynomial(expr, varName); ok {
		switch c.Degree() {
		case 1:
			return SolveLinear(c.Coeff(1), c.Coeff(0))
		case 2:
			return SolveQuadraticExact(c.Coeff(2), c.Coeff(1), c.Coeff(0))
		case 3:
			if res := SolveCubic(c.Coeff(3), c.Coeff(2), c.Coeff(1), c.Coeff(0)); res.Error == "" {
				return res
			}
		}
	}
	if len(FreeSymbols(expr)) != 1 {
		return failed("no closed form for %s in %s", varName, expr)
	}
	if res := SolvePolynomialNewton(expr, varName, 100, 1e-10, 100); len(res.Solutions) > 0 {
		return res
	}
	return SolveBisect(expr, varName, 100, 2000)
}

// SolveLinearSystem2x2 solves a1*x + b1*y = c1, a2*x + b2*y = c2 by Cramer's rule.
func SolveLinearSystem2x2(a1, b1, c1, a2, b2, c2 Expr) (xSol, ySol Expr, err error) {
	cross := func(p, q, r, s Expr) Expr { return AddOf(MulOf(p, q), MulOf(N(-1), r, s)) }
	det := cross(a1, b2, a2, b1)
	if dn, ok := det.Eval(); !ok || dn.IsZero() {
		return nil, nil, fmt.Errorf("system is singular or has no unique solution")
	}
	inv := PowOf(det, N(-1))
	return MulOf(cross(c1, b2, c2, b1), inv), MulOf(cross(a1, c2, a2, c1), inv), nil
}

// SolveSystem solves two equations that are linear in vars[0] and vars[1].
func SolveSystem(eqs [2]*Equation, vars [2]string) (map[string]Expr, error) {
	var rows [2][3]Expr
	for i, eq := range eqs {
		r := Expand(eq.Residual())
		cx, ok := polynomial(r, vars[0])
		if !ok || cx.Degree() > 1 {
			return nil, fmt.Errorf("equation %d is not linear in %s", i+1, vars[0])
		}
		if hasSymbol(cx.Coeff(1), vars[1]) {
			return nil, fmt.Errorf("equation %d has a %s*%s term", i+1, vars[0], vars[1])
		}
		cy, ok := polynomial(cx.Coeff(0), vars[1])
		if !ok || cy.Degree() > 1 {
			return nil, fmt.Errorf("equation %d is not linear in %s", i+1, vars[1])
		}
		rows[i] = [3]Expr{cx.Coeff(1), cy.Coeff(1), MulOf(N(-1), cy.Coeff(0))}
	}
	x, y, err := SolveLinearSystem2x2(rows[0][0], rows[0][1], rows[0][2], rows[1][0], rows[1][1], rows[1][2])
	if err != nil {
		return nil, err
	}
	return map[string]Expr{vars[0]: x, vars[1]: y}, nil
}
