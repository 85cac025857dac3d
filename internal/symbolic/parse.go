package symbolic

import (
	"math/big"
	"strings"

	"github.com/njchilds90/dimplot/internal/diag"
)

// Grammar, lowest precedence first:
//
//	chain   := expr ('=' expr)*
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := ('-' | '+') unary | power
//	power   := primary ('^' unary)?
//	primary := number | ident | ident '(' args ')' | '(' expr ')'
//
// Power is right-associative and binds tighter than unary minus on its left,
// so -x^2 is -(x^2) and 2^-1 is 1/2. Implicit multiplication is rejected.

var unaryBuiltins = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan",
	"exp": "exp", "ln": "ln", "log": "ln",
	"abs": "abs", "Abs": "abs",
	"asin": "asin", "acos": "acos", "atan": "atan",
	"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"floor": "floor", "ceil": "ceil", "sign": "sign",
}

// IsBuiltin reports whether name is a function the parser knows.
func IsBuiltin(name string) bool {
	if _, ok := unaryBuiltins[name]; ok {
		return true
	}
	switch name {
	case "sqrt", "Max", "Min":
		return true
	}
	return false
}

// IsConstant reports whether name parses as a named constant.
func IsConstant(name string) bool {
	_, ok := constNamed(name)
	return ok
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) expect(op string) error {
	t := p.next()
	if !t.is(op) {
		return diag.Syntaxf(t.pos, "expected %q, found %s", op, t.describe())
	}
	return nil
}

// Parse parses a single expression.
func Parse(src string) (Expr, error) {
	parts, err := parseParts(src)
	if err != nil {
		return nil, err
	}
	if len(parts) != 1 {
		return nil, diag.Syntaxf(strings.Index(src, "="), "expected an expression, found an equation")
	}
	return parts[0], nil
}

// ParseEquation parses "lhs = rhs" or a bare expression, read as "expr = 0".
func ParseEquation(src string) (*Equation, error) {
	parts, err := parseParts(src)
	if err != nil {
		return nil, err
	}
	switch len(parts) {
	case 1:
		return Eq(parts[0], N(0)), nil
	case 2:
		return Eq(parts[0], parts[1]), nil
	}
	return nil, diag.Syntaxf(-1, "chained equation has %d parts; use a chain", len(parts))
}

// ParseChain parses "a = b = c ..." into the equations a = b, b = c, ...
// A bare expression yields the single equation expr = 0.
func ParseChain(src string) ([]*Equation, error) {
	parts, err := parseParts(src)
	if err != nil {
		return nil, err
	}
	if len(parts) == 1 {
		return []*Equation{Eq(parts[0], N(0))}, nil
	}
	eqs := make([]*Equation, 0, len(parts)-1)
	for i := 0; i+1 < len(parts); i++ {
		eqs = append(eqs, Eq(parts[i], parts[i+1]))
	}
	return eqs, nil
}

func parseParts(src string) ([]Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, diag.Syntaxf(0, "empty expression")
	}
	var parts []Expr
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		parts = append(parts, e)
		t := p.next()
		if t.kind == tokEOF {
			return parts, nil
		}
		if !t.is("=") {
			return nil, diag.Syntaxf(t.pos, "unexpected %s", t.describe())
		}
	}
}

func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if !t.is("+") && !t.is("-") {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			right = MulOf(N(-1), right)
		}
		left = AddOf(left, right)
	}
}

func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if !t.is("*") && !t.is("/") {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		if t.text == "/" {
			right = PowOf(right, N(-1))
		}
		left = MulOf(left, right)
	}
}

func (p *parser) unary() (Expr, error) {
	t := p.peek()
	if t.is("-") || t.is("+") {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			return MulOf(N(-1), operand), nil
		}
		return operand, nil
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if !p.peek().is("^") {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch {
	case t.kind == tokNum:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, diag.Syntaxf(t.pos, "malformed number %q", t.text)
		}
		return &Num{val: r}, nil
	case t.kind == tokIdent:
		if p.peek().is("(") {
			return p.call(t)
		}
		if c, ok := constNamed(t.text); ok {
			return c, nil
		}
		return S(t.text), nil
	case t.is("("):
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, diag.Syntaxf(t.pos, "unexpected %s", t.describe())
}

func (p *parser) call(name token) (Expr, error) {
	p.next() // (
	var args []Expr
	if !p.peek().is(")") {
		for {
			a, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.peek().is(",") {
				break
			}
			p.next()
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	switch name.text {
	case "Max", "Min":
		if len(args) == 0 {
			return nil, diag.Syntaxf(name.pos, "%s needs at least one argument", name.text)
		}
		if name.text == "Max" {
			return MaxOf(args...), nil
		}
		return MinOf(args...), nil
	case "sqrt":
		if len(args) != 1 {
			return nil, diag.Syntaxf(name.pos, "sqrt takes 1 argument, got %d", len(args))
		}
		return SqrtOf(args[0]), nil
	}
	canonical, ok := unaryBuiltins[name.text]
	if !ok {
		return nil, diag.Namef(name.pos, "unknown function %q", name.text)
	}
	if len(args) != 1 {
		return nil, diag.Syntaxf(name.pos, "%s takes 1 argument, got %d", name.text, len(args))
	}
	return funcOf(canonical, args[0]).Simplify(), nil
}
