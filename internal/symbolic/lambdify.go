package symbolic

import (
	"math"

	"github.com/njchilds90/dimplot/internal/diag"
)

// Compiled is an expression compiled to a float64 closure over a fixed,
// ordered list of variables.
type Compiled struct {
	Vars []string
	fn   func(vals []float64) float64
}

// Call evaluates the expression. vals must follow c.Vars; missing values
// read as zero.
func (c *Compiled) Call(vals ...float64) float64 {
	if len(vals) < len(c.Vars) {
		padded := make([]float64, len(c.Vars))
		copy(padded, vals)
		vals = padded
	}
	return c.fn(vals)
}

// Lambdify compiles e into a numeric function of vars. Every free symbol of
// e must be listed in vars.
func Lambdify(e Expr, vars []string) (*Compiled, error) {
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		index[v] = i
	}
	fn, err := compile(e, index)
	if err != nil {
		return nil, err
	}
	return &Compiled{Vars: append([]string(nil), vars...), fn: fn}, nil
}

type closure = func(vals []float64) float64

func compile(e Expr, index map[string]int) (closure, error) {
	switch v := e.(type) {
	case *Num:
		f := v.Float64()
		return func([]float64) float64 { return f }, nil
	case *Const:
		f := v.value
		return func([]float64) float64 { return f }, nil
	case *Sym:
		i, ok := index[v.name]
		if !ok {
			return nil, diag.Namef(-1, "symbol %q has no value", v.name)
		}
		return func(vals []float64) float64 { return vals[i] }, nil
	case *Add:
		terms, err := compileAll(v.terms, index)
		if err != nil {
			return nil, err
		}
		return func(vals []float64) float64 {
			acc := 0.0
			for _, t := range terms {
				acc += t(vals)
			}
			return acc
		}, nil
	case *Mul:
		factors, err := compileAll(v.factors, index)
		if err != nil {
			return nil, err
		}
		return func(vals []float64) float64 {
			acc := 1.0
			for _, f := range factors {
				acc *= f(vals)
			}
			return acc
		}, nil
	case *Pow:
		base, err := compile(v.base, index)
		if err != nil {
			return nil, err
		}
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && n.val.Num().IsInt64() {
			k := n.val.Num().Int64()
			if k == 2 {
				return func(vals []float64) float64 { b := base(vals); return b * b }, nil
			}
			if k == -1 {
				return func(vals []float64) float64 { return 1 / base(vals) }, nil
			}
		}
		exp, err := compile(v.exp, index)
		if err != nil {
			return nil, err
		}
		return func(vals []float64) float64 { return math.Pow(base(vals), exp(vals)) }, nil
	case *Func:
		impl, ok := floatImpl(v.name)
		if !ok {
			return nil, diag.Namef(-1, "function %q cannot be evaluated", v.name)
		}
		arg, err := compile(v.arg, index)
		if err != nil {
			return nil, err
		}
		return func(vals []float64) float64 { return impl(arg(vals)) }, nil
	case *Extremum:
		args, err := compileAll(v.args, index)
		if err != nil {
			return nil, err
		}
		pick := math.Min
		if v.max {
			pick = math.Max
		}
		return func(vals []float64) float64 {
			acc := args[0](vals)
			for _, a := range args[1:] {
				acc = pick(acc, a(vals))
			}
			return acc
		}, nil
	}
	return nil, diag.Namef(-1, "cannot compile %s", e.String())
}

func compileAll(es []Expr, index map[string]int) ([]closure, error) {
	out := make([]closure, len(es))
	for i, e := range es {
		c, err := compile(e, index)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
