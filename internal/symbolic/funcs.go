package symbolic

import (
	"fmt"
	"math"
)

// Func applies a named unary builtin to one argument.
type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr   { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr   { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr   { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr   { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr    { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr  { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr   { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr  { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr  { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr  { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr  { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr  { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr  { return funcOf("tanh", arg).Simplify() }
func FloorOf(arg Expr) Expr { return funcOf("floor", arg).Simplify() }
func CeilOf(arg Expr) Expr  { return funcOf("ceil", arg).Simplify() }
func SignOf(arg Expr) Expr  { return funcOf("sign", arg).Simplify() }

// builtin describes one unary function.
type builtin struct {
	eval func(float64) float64
	// latex is a format with one %s for the argument.
	latex string
	// deriv returns d/du f(u); nil marks a piecewise constant function.
	deriv func(u Expr) Expr
	// reduce applies exact identities to a simplified argument.
	reduce func(u Expr) (Expr, bool)
}

var builtins map[string]builtin

func oneMinusSquare(u Expr) Expr { return AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))) }

// inverseOf reduces f(g(u)) to u.
func inverseOf(g string) func(Expr) (Expr, bool) {
	return func(u Expr) (Expr, bool) {
		if inner, ok := u.(*Func); ok && inner.name == g {
			return inner.arg, true
		}
		return nil, false
	}
}

// valueAt reduces f(at) to the exact value v.
func valueAt(at, v int64) func(Expr) (Expr, bool) {
	return func(u Expr) (Expr, bool) {
		if isNumEqual(u, at) {
			return N(v), true
		}
		return nil, false
	}
}

func reduceAbs(u Expr) (Expr, bool) {
	if inner, ok := u.(*Func); ok && inner.name == "abs" {
		return inner, true
	}
	if m, ok := u.(*Mul); ok && len(m.factors) >= 2 {
		if c, ok := m.factors[0].(*Num); ok && c.IsNegOne() {
			return AbsOf(MulOf(m.factors[1:]...)), true
		}
	}
	return nil, false
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func init() {
	builtins = map[string]builtin{
		"sin": {eval: math.Sin, latex: `\sin\left(%s\right)`,
			deriv: CosOf, reduce: valueAt(0, 0)},
		"cos": {eval: math.Cos, latex: `\cos\left(%s\right)`,
			deriv: func(u Expr) Expr { return MulOf(N(-1), SinOf(u)) }, reduce: valueAt(0, 1)},
		"tan": {eval: math.Tan, latex: `\tan\left(%s\right)`,
			deriv: func(u Expr) Expr { return AddOf(N(1), PowOf(TanOf(u), N(2))) }},
		"exp": {eval: math.Exp, latex: `\exp\left(%s\right)`,
			deriv: ExpOf, reduce: func(u Expr) (Expr, bool) {
				if isNumEqual(u, 0) {
					return N(1), true
				}
				return inverseOf("ln")(u)
			}},
		"ln": {eval: math.Log, latex: `\ln\left(%s\right)`,
			deriv: func(u Expr) Expr { return PowOf(u, N(-1)) }, reduce: func(u Expr) (Expr, bool) {
				if isNumEqual(u, 1) {
					return N(0), true
				}
				return inverseOf("exp")(u)
			}},
		"asin": {eval: math.Asin, latex: `\arcsin\left(%s\right)`,
			deriv: func(u Expr) Expr { return PowOf(oneMinusSquare(u), F(-1, 2)) }},
		"acos": {eval: math.Acos, latex: `\arccos\left(%s\right)`,
			deriv: func(u Expr) Expr { return MulOf(N(-1), PowOf(oneMinusSquare(u), F(-1, 2))) }},
		"atan": {eval: math.Atan, latex: `\arctan\left(%s\right)`,
			deriv: func(u Expr) Expr { return PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1)) }},
		"sinh": {eval: math.Sinh, latex: `\sinh\left(%s\right)`, deriv: CoshOf},
		"cosh": {eval: math.Cosh, latex: `\cosh\left(%s\right)`, deriv: SinhOf},
		"tanh": {eval: math.Tanh, latex: `\tanh\left(%s\right)`,
			deriv: func(u Expr) Expr { return oneMinusSquare(TanhOf(u)) }},
		"abs":   {eval: math.Abs, latex: `\left|%s\right|`, deriv: SignOf, reduce: reduceAbs},
		"floor": {eval: math.Floor, latex: `\lfloor %s \rfloor`},
		"ceil":  {eval: math.Ceil, latex: `\lceil %s \rceil`},
		"sign":  {eval: sign, latex: `\operatorname{sign}\left(%s\right)`},
	}
}

// floatImpl returns the float implementation of a builtin.
func floatImpl(name string) (func(float64) float64, bool) {
	b, ok := builtins[name]
	return b.eval, ok
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	def, known := builtins[f.name]
	if known {
		if n, ok := arg.(*Num); ok {
			if folded, ok := numFloat(def.eval(n.Float64())); ok {
				return folded
			}
		}
		if def.reduce != nil {
			if r, ok := def.reduce(arg); ok {
				return r
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	if def, ok := builtins[f.name]; ok {
		return fmt.Sprintf(def.latex, f.arg.LaTeX())
	}
	return `\operatorname{` + f.name + `}\left(` + f.arg.LaTeX() + `\right)`
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

// Diff applies the chain rule. Functions without a known derivative yield an
// opaque D[name] node that neither evaluates nor compiles.
func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	def, known := builtins[f.name]
	switch {
	case !known:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	case def.deriv == nil:
		return N(0)
	}
	return MulOf(def.deriv(f.arg), du)
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	eval, known := floatImpl(f.name)
	if !known {
		return nil, false
	}
	return numFloat(eval(n.Float64()))
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) toJSON() map[string]any {
	return map[string]any{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.isInt(v)
}

// Const is a named irrational constant. It folds to its float value.
type Const struct {
	name  string
	latex string
	value float64
}

var (
	Pi    = &Const{name: "pi", latex: `\pi`, value: math.Pi}
	Euler = &Const{name: "E", latex: "e", value: math.E}
)

func constNamed(name string) (*Const, bool) {
	for _, c := range []*Const{Pi, Euler} {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) LaTeX() string         { return c.latex }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Eval() (*Num, bool)    { return NFloat(c.value), true }
func (c *Const) Float64() float64      { return c.value }

func (c *Const) Equal(other Expr) bool {
	o, ok := other.(*Const)
	return ok && o == c
}

func (c *Const) toJSON() map[string]any {
	return map[string]any{"type": "const", "name": c.name}
}
