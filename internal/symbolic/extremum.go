package symbolic

import "strings"

// Extremum is an n-ary Max or Min.
type Extremum struct {
	max  bool
	args []Expr
}

func MaxOf(args ...Expr) Expr { return (&Extremum{max: true, args: args}).Simplify() }
func MinOf(args ...Expr) Expr { return (&Extremum{max: false, args: args}).Simplify() }

func (x *Extremum) name() string {
	if x.max {
		return "Max"
	}
	return "Min"
}

// better reports whether a beats b under this extremum.
func (x *Extremum) better(a, b *Num) bool {
	if x.max {
		return a.val.Cmp(b.val) > 0
	}
	return a.val.Cmp(b.val) < 0
}

// Simplify flattens nested extrema of the same kind, folds numeric arguments
// into one and drops duplicates.
func (x *Extremum) Simplify() Expr {
	var best *Num
	var rest []Expr
	var visit func(args []Expr)
	visit = func(args []Expr) {
		for _, a := range args {
			s := a.Simplify()
			if inner, ok := s.(*Extremum); ok && inner.max == x.max {
				visit(inner.args)
				continue
			}
			if n, ok := s.(*Num); ok {
				if best == nil || x.better(n, best) {
					best = n
				}
				continue
			}
			dup := false
			for _, r := range rest {
				if r.Equal(s) {
					dup = true
					break
				}
			}
			if !dup {
				rest = append(rest, s)
			}
		}
	}
	visit(x.args)
	if best != nil {
		rest = append(rest, best)
	}
	switch len(rest) {
	case 0:
		return N(0)
	case 1:
		return rest[0]
	}
	return &Extremum{max: x.max, args: rest}
}

func (x *Extremum) join(render func(Expr) string) string {
	parts := make([]string, len(x.args))
	for i, a := range x.args {
		parts[i] = render(a)
	}
	return strings.Join(parts, ", ")
}

func (x *Extremum) String() string { return x.name() + "(" + x.join(Expr.String) + ")" }

func (x *Extremum) LaTeX() string {
	return `\` + strings.ToLower(x.name()) + `\left(` + x.join(Expr.LaTeX) + `\right)`
}

func (x *Extremum) Sub(varName string, value Expr) Expr {
	args := mapExprs(x.args, func(a Expr) Expr { return a.Sub(varName, value) })
	return (&Extremum{max: x.max, args: args}).Simplify()
}

// Diff is not defined piecewise; the result is an opaque derivative node
// that neither evaluates nor compiles.
func (x *Extremum) Diff(varName string) Expr {
	if hasSymbol(x, varName) {
		return funcOf("D["+x.name()+"]", x)
	}
	return N(0)
}

func (x *Extremum) Eval() (*Num, bool) {
	var best *Num
	for _, a := range x.args {
		v, ok := a.Eval()
		if !ok {
			return nil, false
		}
		if best == nil || x.better(v, best) {
			best = v
		}
	}
	return best, best != nil
}

func (x *Extremum) Equal(other Expr) bool {
	o, ok := other.(*Extremum)
	return ok && o.max == x.max && equalOperands(x.args, o.args)
}

func (x *Extremum) toJSON() map[string]any {
	return map[string]any{"type": "extremum", "name": x.name(), "args": jsonOperands(x.args)}
}
