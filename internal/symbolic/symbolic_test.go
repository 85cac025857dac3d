package symbolic_test

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/njchilds90/dimplot/internal/diag"
	"github.com/njchilds90/dimplot/internal/symbolic"
)

func mustParse(t *testing.T, src string) symbolic.Expr {
	t.Helper()
	e, err := symbolic.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return e
}

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symbolic.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symbolic.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	n := symbolic.F(2, 5)
	if n.LaTeX() != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", n.LaTeX())
	}
}

func TestNum_FloatPrintsAsDecimal(t *testing.T) {
	n := symbolic.NFloat(0.1)
	if n.String() != "0.1" {
		t.Errorf("want 0.1, got %s", n.String())
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub_Match(t *testing.T) {
	result := symbolic.S("x").Sub("x", symbolic.N(3))
	if symbolic.String(result) != "3" {
		t.Errorf("want 3, got %s", symbolic.String(result))
	}
}

func TestSym_Sub_NoMatch(t *testing.T) {
	result := symbolic.S("x").Sub("y", symbolic.N(3))
	if symbolic.String(result) != "x" {
		t.Errorf("want x, got %s", symbolic.String(result))
	}
}

func TestSym_Diff_Self(t *testing.T) {
	result := symbolic.S("x").Diff("x")
	if symbolic.String(result) != "1" {
		t.Errorf("d/dx(x) should be 1, got %s", symbolic.String(result))
	}
}

// ============================================================
// Add tests
// ============================================================

func TestAdd_Simple(t *testing.T) {
	expr := symbolic.AddOf(symbolic.S("x"), symbolic.N(3))
	if symbolic.String(expr) != "x + 3" {
		t.Errorf("want 'x + 3', got %s", symbolic.String(expr))
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	expr := symbolic.AddOf(symbolic.N(1), symbolic.N(-1))
	if symbolic.String(expr) != "0" {
		t.Errorf("want 0, got %s", symbolic.String(expr))
	}
}

func TestAdd_LikeTerms(t *testing.T) {
	expr := symbolic.AddOf(symbolic.S("x"), symbolic.S("x"))
	if symbolic.String(expr) != "2*x" {
		t.Errorf("want '2*x', got %s", symbolic.String(expr))
	}
}

func TestAdd_LikePowersCancel(t *testing.T) {
	x2 := symbolic.PowOf(symbolic.S("x"), symbolic.N(2))
	expr := symbolic.AddOf(x2, symbolic.MulOf(symbolic.N(-1), x2))
	if symbolic.String(expr) != "0" {
		t.Errorf("x^2 - x^2 should be 0, got %s", symbolic.String(expr))
	}
}

func TestAdd_NegativeTermsPrintAsSubtraction(t *testing.T) {
	expr := symbolic.AddOf(symbolic.S("x"), symbolic.MulOf(symbolic.N(-1), symbolic.S("y")), symbolic.N(-4))
	if symbolic.String(expr) != "x - y - 4" {
		t.Errorf("want 'x - y - 4', got %s", symbolic.String(expr))
	}
}

// ============================================================
// Mul tests
// ============================================================

func TestMul_Simple(t *testing.T) {
	expr := symbolic.MulOf(symbolic.N(3), symbolic.S("x"))
	if symbolic.String(expr) != "3*x" {
		t.Errorf("want '3*x', got %s", symbolic.String(expr))
	}
}

func TestMul_ZeroCollapse(t *testing.T) {
	expr := symbolic.MulOf(symbolic.N(0), symbolic.S("x"))
	if symbolic.String(expr) != "0" {
		t.Errorf("0*x should be 0, got %s", symbolic.String(expr))
	}
}

func TestMul_RepeatedBaseBecomesPower(t *testing.T) {
	x := symbolic.S("x")
	expr := symbolic.MulOf(x, x)
	if symbolic.String(expr) != "x^2" {
		t.Errorf("x*x should be x^2, got %s", symbolic.String(expr))
	}
}

func TestMul_NegativeOne(t *testing.T) {
	expr := symbolic.MulOf(symbolic.N(-1), symbolic.S("x"))
	if symbolic.String(expr) != "-x" {
		t.Errorf("want -x, got %s", symbolic.String(expr))
	}
}

// ============================================================
// Pow tests
// ============================================================

func TestPow_Simple(t *testing.T) {
	expr := symbolic.PowOf(symbolic.S("x"), symbolic.N(2))
	if symbolic.String(expr) != "x^2" {
		t.Errorf("want x^2, got %s", symbolic.String(expr))
	}
}

func TestPow_ZeroAndOneExp(t *testing.T) {
	x := symbolic.S("x")
	if s := symbolic.String(symbolic.PowOf(x, symbolic.N(0))); s != "1" {
		t.Errorf("x^0 should be 1, got %s", s)
	}
	if s := symbolic.String(symbolic.PowOf(x, symbolic.N(1))); s != "x" {
		t.Errorf("x^1 should be x, got %s", s)
	}
}

func TestPow_NumericEval(t *testing.T) {
	expr := symbolic.PowOf(symbolic.N(2), symbolic.N(3))
	if symbolic.String(expr) != "8" {
		t.Errorf("2^3 should be 8, got %s", symbolic.String(expr))
	}
}

func TestPow_RationalExponentParenthesised(t *testing.T) {
	expr := symbolic.PowOf(symbolic.S("x"), symbolic.F(1, 2))
	if symbolic.String(expr) != "x^(1/2)" {
		t.Errorf("want x^(1/2), got %s", symbolic.String(expr))
	}
}

func TestPow_SqrtOfSquareKept(t *testing.T) {
	x2 := symbolic.PowOf(symbolic.S("x"), symbolic.N(2))
	expr := symbolic.SqrtOf(x2)
	if symbolic.String(expr) != "(x^2)^(1/2)" {
		t.Errorf("sqrt(x^2) must not collapse to x, got %s", symbolic.String(expr))
	}
}

func TestPow_LaTeX(t *testing.T) {
	expr := symbolic.PowOf(symbolic.S("x"), symbolic.N(2))
	if expr.LaTeX() != "x^{2}" {
		t.Errorf("want x^{2}, got %s", expr.LaTeX())
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_Sin_Diff(t *testing.T) {
	d := symbolic.Diff(symbolic.SinOf(symbolic.S("x")), "x")
	if symbolic.String(d) != "cos(x)" {
		t.Errorf("d/dx(sin(x)) should be cos(x), got %s", symbolic.String(d))
	}
}

func TestFunc_Abs_Diff(t *testing.T) {
	d := symbolic.Diff(symbolic.AbsOf(symbolic.S("x")), "x")
	if symbolic.String(d) != "sign(x)" {
		t.Errorf("d/dx(abs(x)) should be sign(x), got %s", symbolic.String(d))
	}
}

func TestFunc_Numeric_Eval(t *testing.T) {
	expr := symbolic.SinOf(symbolic.N(0))
	if symbolic.String(expr) != "0" {
		t.Errorf("sin(0) should evaluate to 0, got %s", symbolic.String(expr))
	}
}

func TestFunc_LaTeX_Sin(t *testing.T) {
	l := symbolic.SinOf(symbolic.S("x")).LaTeX()
	if !strings.Contains(l, `\sin`) {
		t.Errorf("LaTeX for sin should contain \\sin, got %s", l)
	}
}

// ============================================================
// Extremum tests
// ============================================================

func TestExtremum_FoldsNumbers(t *testing.T) {
	expr := symbolic.MaxOf(symbolic.N(1), symbolic.S("x"), symbolic.N(3))
	if symbolic.String(expr) != "Max(x, 3)" {
		t.Errorf("want Max(x, 3), got %s", symbolic.String(expr))
	}
}

func TestExtremum_SingleArgUnwraps(t *testing.T) {
	x := symbolic.S("x")
	if s := symbolic.String(symbolic.MinOf(x, x)); s != "x" {
		t.Errorf("Min(x, x) should be x, got %s", s)
	}
}

func TestExtremum_Eval(t *testing.T) {
	expr := symbolic.Sub(mustParse(t, "Max(abs(x), abs(y))"), "x", symbolic.N(-3))
	expr = symbolic.Sub(expr, "y", symbolic.N(2))
	if symbolic.String(expr) != "3" {
		t.Errorf("Max(|-3|, |2|) should be 3, got %s", symbolic.String(expr))
	}
}

// ============================================================
// Parser tests
// ============================================================

func TestParse_Precedence(t *testing.T) {
	cases := map[string]string{
		"x^2 + y^2":  "x^2 + y^2",
		"2^3^2":      "512",
		"-x^2":       "-x^2",
		"0.5*x":      "1/2*x",
		"x**2":       "x^2",
		"2*(x + 1)":  "2*(x + 1)",
		"x - y - 1":  "x - y - 1",
		"6/3/2":      "1",
		"2^-1":       "1/2",
		"abs(-4)":    "4",
		"log(1)":     "0",
		"sqrt(x)":    "x^(1/2)",
		"Abs(x) + 0": "abs(x)",
	}
	for src, want := range cases {
		if got := symbolic.String(mustParse(t, src)); got != want {
			t.Errorf("Parse(%q) = %q, want %q", src, got, want)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, src := range []string{
		"x^2 + y^2 - 25",
		"-3*x + y/2",
		"sin(x)^2 + cos(y)",
		"(x - 1)^(1/2)",
		"Max(abs(x), abs(y)) - 1",
		"x^-1",
		"pi*x^2",
	} {
		e := mustParse(t, src)
		again := mustParse(t, e.String())
		if !e.Equal(again) {
			t.Errorf("%q: %q re-parses to %q", src, e.String(), again.String())
		}
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		src  string
		want error
	}{
		{"2x", diag.ErrSyntax},
		{"(x + 1", diag.ErrSyntax},
		{"x +", diag.ErrSyntax},
		{"", diag.ErrSyntax},
		{"x $ y", diag.ErrSyntax},
		{"sin(x, y)", diag.ErrSyntax},
		{"foo(x)", diag.ErrName},
	}
	for _, c := range cases {
		_, err := symbolic.Parse(c.src)
		if !errors.Is(err, c.want) {
			t.Errorf("Parse(%q) error = %v, want %v", c.src, err, c.want)
		}
	}
}

func TestParseEquation_Residual(t *testing.T) {
	eq, err := symbolic.ParseEquation("x^2 + y^2 = 25")
	if err != nil {
		t.Fatalf("ParseEquation: %v", err)
	}
	if got := symbolic.String(eq.Residual()); got != "x^2 + y^2 - 25" {
		t.Errorf("residual = %q", got)
	}
}

func TestParseEquation_BareExpressionIsZero(t *testing.T) {
	eq, err := symbolic.ParseEquation("x + 1")
	if err != nil {
		t.Fatalf("ParseEquation: %v", err)
	}
	if eq.String() != "x + 1 = 0" {
		t.Errorf("want 'x + 1 = 0', got %q", eq.String())
	}
}

func TestParseChain(t *testing.T) {
	eqs, err := symbolic.ParseChain("a = b = c")
	if err != nil {
		t.Fatalf("ParseChain: %v", err)
	}
	if len(eqs) != 2 {
		t.Fatalf("want 2 equations, got %d", len(eqs))
	}
	if eqs[0].String() != "a = b" || eqs[1].String() != "b = c" {
		t.Errorf("got %q, %q", eqs[0], eqs[1])
	}
	if _, err := symbolic.ParseEquation("a = b = c"); !errors.Is(err, diag.ErrSyntax) {
		t.Errorf("ParseEquation on a chain should be a syntax error, got %v", err)
	}
}

// ============================================================
// Expand / symbols / polynomial tests
// ============================================================

func TestExpand_Distribution(t *testing.T) {
	expanded := symbolic.Expand(mustParse(t, "(x + 1)*(x + 2)"))
	if _, isAdd := expanded.(*symbolic.Add); !isAdd {
		t.Fatalf("expanded form should be a sum, got %s", expanded)
	}
	v, ok := symbolic.Sub(expanded, "x", symbolic.N(2)).Eval()
	if !ok || v.String() != "12" {
		t.Errorf("expanded (x+1)(x+2) at x=2 should be 12, got %s", expanded)
	}
}

func TestFreeSymbols(t *testing.T) {
	got := symbolic.SortedSymbols(mustParse(t, "x + 2*y + sin(z) + pi"))
	if strings.Join(got, ",") != "x,y,z" {
		t.Errorf("want x,y,z got %v", got)
	}
}

func TestDegree(t *testing.T) {
	x := symbolic.S("x")
	if symbolic.Degree(x, "x") != 1 {
		t.Error("degree of x should be 1")
	}
	if symbolic.Degree(symbolic.PowOf(x, symbolic.N(2)), "x") != 2 {
		t.Error("degree of x^2 should be 2")
	}
	if symbolic.Degree(symbolic.N(5), "x") != 0 {
		t.Error("degree of constant should be 0")
	}
}

func TestIsPolynomial(t *testing.T) {
	if !symbolic.IsPolynomial(mustParse(t, "x^2*sin(y) + 3"), "x") {
		t.Error("x^2*sin(y) is polynomial in x")
	}
	if symbolic.IsPolynomial(mustParse(t, "sin(x) + x"), "x") {
		t.Error("sin(x) is not polynomial in x")
	}
	if symbolic.IsPolynomial(mustParse(t, "x^(1/2)"), "x") {
		t.Error("x^(1/2) is not polynomial in x")
	}
}

func TestPolyCoeffs(t *testing.T) {
	coeffs := symbolic.PolyCoeffs(mustParse(t, "3*x^2 + 2*x + 1"), "x")
	for deg, want := range map[int]string{2: "3", 1: "2", 0: "1"} {
		if got := symbolic.String(coeffs.Coeff(deg)); got != want {
			t.Errorf("coeff %d = %s, want %s", deg, got, want)
		}
	}
	if symbolic.String(coeffs.Coeff(5)) != "0" {
		t.Error("missing degree should read as 0")
	}
}

// ============================================================
// Solver tests
// ============================================================

func solutionFloats(t *testing.T, res symbolic.SolveResult, vars []string, vals ...float64) []float64 {
	t.Helper()
	out := make([]float64, 0, len(res.Solutions))
	for _, s := range res.Solutions {
		f, err := symbolic.Lambdify(s, vars)
		if err != nil {
			t.Fatalf("Lambdify(%s): %v", s, err)
		}
		out = append(out, f.Call(vals...))
	}
	sort.Float64s(out)
	return out
}

func TestSolveLinear_Exact(t *testing.T) {
	res := symbolic.SolveLinear(symbolic.N(2), symbolic.N(4))
	if res.Error != "" || len(res.Solutions) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if symbolic.String(res.Solutions[0]) != "-2" {
		t.Errorf("expected -2, got %s", symbolic.String(res.Solutions[0]))
	}
}

func TestSolveLinear_Rational(t *testing.T) {
	res := symbolic.SolveLinear(symbolic.N(3), symbolic.N(1))
	if symbolic.String(res.Solutions[0]) != "-1/3" {
		t.Errorf("expected -1/3, got %s", symbolic.String(res.Solutions[0]))
	}
}

func TestSolveLinear_ZeroA_ZeroB(t *testing.T) {
	res := symbolic.SolveLinear(symbolic.N(0), symbolic.N(0))
	if res.Error == "" {
		t.Error("expected error for 0x+0=0 (infinite solutions)")
	}
}

func TestSolveQuadraticExact_IntegerRoots(t *testing.T) {
	res := symbolic.SolveQuadraticExact(symbolic.N(1), symbolic.N(-5), symbolic.N(6))
	if strings.Join(res.Strings(), ",") != "3,2" {
		t.Errorf("want 3,2 got %v", res.Strings())
	}
}

func TestSolveQuadratic_Complex(t *testing.T) {
	res := symbolic.SolveQuadratic(symbolic.N(1), symbolic.N(0), symbolic.N(1))
	if !strings.Contains(res.Error, "complex") {
		t.Errorf("expected 'complex' in error, got %q", res.Error)
	}
}

func TestSolve_CircleForY(t *testing.T) {
	res := symbolic.Solve(mustParse(t, "x^2 + y^2 - 25"), "y")
	if len(res.Solutions) != 2 {
		t.Fatalf("want 2 branches, got %+v", res)
	}
	got := solutionFloats(t, res, []string{"x"}, 3)
	if math.Abs(got[0]+4) > 1e-9 || math.Abs(got[1]-4) > 1e-9 {
		t.Errorf("at x=3 want ±4, got %v", got)
	}
}

func TestSolve_Cubic(t *testing.T) {
	res := symbolic.Solve(mustParse(t, "x^3 - 6*x^2 + 11*x - 6"), "x")
	got := solutionFloats(t, res, nil)
	want := []float64{1, 2, 3}
	if len(got) != 3 {
		t.Fatalf("want 3 roots, got %v", got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("root %d = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestSolve_Transcendental(t *testing.T) {
	res := symbolic.Solve(mustParse(t, "sin(x) - 1/2"), "x")
	found := false
	for _, f := range solutionFloats(t, res, nil) {
		if math.Abs(f-math.Pi/6) < 1e-6 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a root near pi/6, got %v", res.Strings())
	}
}

func TestSolve_PiecewiseUsesNumericDerivative(t *testing.T) {
	res := symbolic.Solve(mustParse(t, "Max(abs(x), 1) - 2"), "x")
	var neg, pos bool
	for _, f := range solutionFloats(t, res, nil) {
		neg = neg || math.Abs(f+2) < 1e-6
		pos = pos || math.Abs(f-2) < 1e-6
	}
	if !neg || !pos {
		t.Errorf("expected roots ±2, got %v", res.Strings())
	}
}

func TestSolve_VariableAbsent(t *testing.T) {
	res := symbolic.Solve(mustParse(t, "y - 3"), "x")
	if res.Error == "" {
		t.Error("expected an error when the variable does not appear")
	}
}

func TestSolveLinearSystem2x2(t *testing.T) {
	x, y, err := symbolic.SolveLinearSystem2x2(
		symbolic.N(1), symbolic.N(1), symbolic.N(3),
		symbolic.N(1), symbolic.N(-1), symbolic.N(1),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if symbolic.String(x) != "2" || symbolic.String(y) != "1" {
		t.Errorf("expected x=2, y=1, got %s, %s", x, y)
	}
}

func TestSolveSystem(t *testing.T) {
	e1, _ := symbolic.ParseEquation("x + y = 3")
	e2, _ := symbolic.ParseEquation("x - y = 1")
	sol, err := symbolic.SolveSystem([2]*symbolic.Equation{e1, e2}, [2]string{"x", "y"})
	if err != nil {
		t.Fatalf("SolveSystem: %v", err)
	}
	if sol["x"].String() != "2" || sol["y"].String() != "1" {
		t.Errorf("got x=%s y=%s", sol["x"], sol["y"])
	}
}

func TestSolveSystem_Nonlinear(t *testing.T) {
	e1, _ := symbolic.ParseEquation("x^2 + y = 3")
	e2, _ := symbolic.ParseEquation("x - y = 1")
	if _, err := symbolic.SolveSystem([2]*symbolic.Equation{e1, e2}, [2]string{"x", "y"}); err == nil {
		t.Error("expected an error for a nonlinear system")
	}
}

// ============================================================
// Lambdify tests
// ============================================================

func TestLambdify_Circle(t *testing.T) {
	f, err := symbolic.Lambdify(mustParse(t, "x^2 + y^2 - 25"), []string{"x", "y"})
	if err != nil {
		t.Fatalf("Lambdify: %v", err)
	}
	if v := f.Call(3, 4); v != 0 {
		t.Errorf("F(3,4) = %g, want 0", v)
	}
	if v := f.Call(0, 0); v != -25 {
		t.Errorf("F(0,0) = %g, want -25", v)
	}
}

func TestLambdify_MaxAndConstants(t *testing.T) {
	f, err := symbolic.Lambdify(mustParse(t, "Max(abs(x), abs(y)) + pi"), []string{"x", "y"})
	if err != nil {
		t.Fatalf("Lambdify: %v", err)
	}
	if v := f.Call(-3, 2); math.Abs(v-(3+math.Pi)) > 1e-12 {
		t.Errorf("got %g", v)
	}
}

func TestLambdify_UnknownSymbol(t *testing.T) {
	_, err := symbolic.Lambdify(mustParse(t, "x + z"), []string{"x"})
	if !errors.Is(err, diag.ErrName) {
		t.Errorf("want name error, got %v", err)
	}
}

// ============================================================
// JSON Serialization tests
// ============================================================

func TestToJSON_Num(t *testing.T) {
	j, err := symbolic.ToJSON(symbolic.N(3))
	if err != nil {
		t.Fatalf("ToJSON error: %v", err)
	}
	var m map[string]interface{}
	_ = json.Unmarshal([]byte(j), &m)
	if m["type"] != "num" {
		t.Errorf("expected type=num, got %v", m["type"])
	}
}

func TestFromJSON_RoundTrip(t *testing.T) {
	original := mustParse(t, "Max(abs(x), 2) + pi*y^2")
	j, _ := symbolic.ToJSON(original)
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(j), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rebuilt, err := symbolic.FromJSON(m)
	if err != nil {
		t.Fatalf("FromJSON error: %v", err)
	}
	if symbolic.String(rebuilt) != symbolic.String(original) {
		t.Errorf("round-trip mismatch: %s != %s", symbolic.String(rebuilt), symbolic.String(original))
	}
}

func TestFromJSON_UnknownType(t *testing.T) {
	if _, err := symbolic.FromJSON(map[string]interface{}{"type": "matrix"}); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestFromJSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
		want string
	}{
		{"missing type", map[string]interface{}{"name": "x"}, "'type'"},
		{"bad num", map[string]interface{}{"type": "num", "value": "abc"}, "invalid value"},
		{"unknown func", map[string]interface{}{"type": "func", "name": "frob", "arg": map[string]interface{}{"type": "sym", "name": "x"}}, "unknown function"},
		{"pow without exp", map[string]interface{}{"type": "pow", "base": map[string]interface{}{"type": "sym", "name": "x"}}, "pow: \"exp\""},
		{"nested", map[string]interface{}{"type": "add", "terms": []interface{}{map[string]interface{}{"type": "const", "name": "tau"}}}, "add.terms[0]: const"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := symbolic.FromJSON(tt.data)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("FromJSON error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}
