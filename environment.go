package dimplot

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/njchilds90/dimplot/internal/contour"
	"github.com/njchilds90/dimplot/internal/diag"
	"github.com/njchilds90/dimplot/internal/preprocess"
	"github.com/njchilds90/dimplot/internal/symbolic"
)

// ============================================================
// Environment
// ============================================================

// DefaultDimension is the dimension of a new Environment.
const DefaultDimension = 2

// Definition is a user function, Name(Params...) = Body.
type Definition = preprocess.Definition

// Environment holds the session state every expansion reads: the dimension
// with its axis names, the user functions and the slice values of the axes
// beyond y. It is not safe for concurrent mutation; reads may run in
// parallel once setup is done.
type Environment struct {
	axes   preprocess.Axes
	fns    preprocess.Functions
	slice  map[string]float64
	logger *slog.Logger
}

// Option configures an Environment.
type Option func(*envConfig)

type envConfig struct {
	dim    int
	slice  map[string]float64
	logger *slog.Logger
}

// WithDimension sets the starting dimension.
func WithDimension(d int) Option { return func(c *envConfig) { c.dim = d } }

// WithLogger sets the logger used for debug tracing of the pipeline.
func WithLogger(l *slog.Logger) Option { return func(c *envConfig) { c.logger = l } }

// WithSlice fixes the value of axes beyond y when a field is built.
// Keys are axis names; missing axes sit at 0.
func WithSlice(values map[string]float64) Option {
	return func(c *envConfig) {
		c.slice = make(map[string]float64, len(values))
		for k, v := range values {
			c.slice[k] = v
		}
	}
}

// New creates an Environment.
func New(opts ...Option) (*Environment, error) {
	cfg := envConfig{dim: DefaultDimension}
	for _, o := range opts {
		o(&cfg)
	}
	axes, err := preprocess.NewAxes(cfg.dim)
	if err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.slice == nil {
		cfg.slice = map[string]float64{}
	}
	return &Environment{
		axes:   axes,
		fns:    preprocess.Functions{},
		slice:  cfg.slice,
		logger: cfg.logger,
	}, nil
}

// Dimension returns the number of axes.
func (env *Environment) Dimension() int { return env.axes.Dimension() }

// Axes returns the axis names for the current dimension.
func (env *Environment) Axes() preprocess.Axes { return env.axes }

// SetDimension switches the session to d axes. Definitions are kept; they
// are expanded again on their next use.
func (env *Environment) SetDimension(d int) error {
	axes, err := preprocess.NewAxes(d)
	if err != nil {
		return err
	}
	env.axes = axes
	env.logger.Debug("dimension set", "dimension", d, "axes", axes.Names())
	return nil
}

// Slice returns the value axis name is fixed at when a field is built.
func (env *Environment) Slice(name string) float64 { return env.slice[name] }

// SetSlice fixes axis name at v.
func (env *Environment) SetSlice(name string, v float64) { env.slice[name] = v }

// ============================================================
// Functions
// ============================================================

// Define parses "Name(params) = body" and stores it, replacing any previous
// definition of the same name.
func (env *Environment) Define(text string) (Definition, error) {
	def, ok, err := preprocess.ParseDefinition(text)
	if err != nil {
		return Definition{}, err
	}
	if !ok {
		return Definition{}, diag.Syntaxf(-1, "%q is not a function definition", text)
	}
	env.fns[def.Name] = def
	env.logger.Debug("function defined", "name", def.Name, "params", def.Params, "body", def.Body)
	return def, nil
}

// Undefine removes a function and reports whether it existed.
func (env *Environment) Undefine(name string) bool {
	_, ok := env.fns[name]
	delete(env.fns, name)
	return ok
}

// Function looks up a definition by name.
func (env *Environment) Function(name string) (Definition, bool) {
	def, ok := env.fns[name]
	return def, ok
}

// Functions returns every definition sorted by name.
func (env *Environment) Functions() []Definition {
	out := make([]Definition, 0, len(env.fns))
	for _, name := range env.fns.Names() {
		out = append(out, env.fns[name])
	}
	return out
}

// ============================================================
// Pipeline
// ============================================================

// Expand rewrites the dimension-agnostic notation and user function calls
// in src into plain equation text.
func (env *Environment) Expand(src string) (string, error) {
	out, err := preprocess.Expand(src, env.axes, env.fns)
	if err != nil {
		env.logger.Debug("expand failed", "src", src, "err", err)
		return "", err
	}
	env.logger.Debug("expanded", "src", src, "out", out)
	return out, nil
}

// Parse expands src and parses it as one equation. A bare expression is
// read as expr = 0.
func (env *Environment) Parse(src string) (*symbolic.Equation, error) {
	text, err := env.Expand(src)
	if err != nil {
		return nil, err
	}
	return symbolic.ParseEquation(text)
}

// ParseChain expands src and parses "a = b = c" into consecutive equations.
func (env *Environment) ParseChain(src string) ([]*symbolic.Equation, error) {
	text, err := env.Expand(src)
	if err != nil {
		return nil, err
	}
	return symbolic.ParseChain(text)
}

// Solve solves the equation in src for variable. The result may be empty
// when the backend finds no solution; a failure with nothing to show is an
// ErrBackend.
func (env *Environment) Solve(src, variable string) (symbolic.SolveResult, error) {
	eq, err := env.Parse(src)
	if err != nil {
		return symbolic.SolveResult{}, err
	}
	res := symbolic.Solve(eq.Residual(), variable)
	if res.Error != "" && len(res.Solutions) == 0 {
		return res, diag.Backend(res.Error, nil)
	}
	env.logger.Debug("solved", "src", src, "var", variable, "solutions", res.Strings())
	return res, nil
}

// SolveSystem solves two equations, linear in vars, for vars. Each source
// may be a single equation or a chain; together they must hold exactly two
// equations.
func (env *Environment) SolveSystem(vars [2]string, srcs ...string) (map[string]symbolic.Expr, error) {
	var eqs []*symbolic.Equation
	for _, src := range srcs {
		chain, err := env.ParseChain(src)
		if err != nil {
			return nil, err
		}
		eqs = append(eqs, chain...)
	}
	if len(eqs) != 2 {
		return nil, diag.Backend(fmt.Sprintf("a system needs 2 equations, got %d", len(eqs)), nil)
	}
	sol, err := symbolic.SolveSystem([2]*symbolic.Equation{eqs[0], eqs[1]}, vars)
	if err != nil {
		return nil, diag.Backend("solve system", err)
	}
	return sol, nil
}

// Evaluate computes lhs - rhs of the equation in src at point.
func (env *Environment) Evaluate(src string, point map[string]float64) (float64, error) {
	eq, err := env.Parse(src)
	if err != nil {
		return 0, err
	}
	return evaluate(eq.Residual(), point)
}

// EvaluateChain evaluates every part of "a = b = c" at point, one value per
// part, in order.
func (env *Environment) EvaluateChain(src string, point map[string]float64) ([]float64, error) {
	chain, err := env.ParseChain(src)
	if err != nil {
		return nil, err
	}
	parts := []symbolic.Expr{chain[0].LHS}
	for _, eq := range chain {
		parts = append(parts, eq.RHS)
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		if out[i], err = evaluate(p, point); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func evaluate(e symbolic.Expr, point map[string]float64) (float64, error) {
	vars := symbolic.SortedSymbols(e)
	vals := make([]float64, len(vars))
	for i, v := range vars {
		x, ok := point[v]
		if !ok {
			return 0, diag.Namef(-1, "no value for %s", v)
		}
		vals[i] = x
	}
	f, err := symbolic.Lambdify(e, vars)
	if err != nil {
		return 0, err
	}
	return f.Call(vals...), nil
}

// Field compiles the residual of src into F(x, y). Axes beyond y are held
// at their slice values.
func (env *Environment) Field(src string) (contour.Field, error) {
	eq, err := env.Parse(src)
	if err != nil {
		return nil, err
	}
	return env.field(eq.Residual())
}

func (env *Environment) field(residual symbolic.Expr) (contour.Field, error) {
	names := env.axes.Names()
	f, err := symbolic.Lambdify(residual, names)
	if err != nil {
		return nil, err
	}
	fixed := make([]float64, len(names))
	for i := 2; i < len(names); i++ {
		fixed[i] = env.slice[names[i]]
	}
	return func(x, y float64) float64 {
		vals := make([]float64, len(fixed))
		copy(vals, fixed)
		vals[0], vals[1] = x, y
		return f.Call(vals...)
	}, nil
}

// Trace returns the polylines of the curve described by src.
func (env *Environment) Trace(src string, opts contour.Options) ([]contour.Polyline, error) {
	f, err := env.Field(src)
	if err != nil {
		return nil, err
	}
	lines, err := contour.Trace(f, opts)
	if err != nil {
		return nil, err
	}
	env.logger.Debug("traced", "src", src, "polylines", len(lines))
	return lines, nil
}

// ============================================================
// Submissions
// ============================================================

// Submission is the outcome of one line of user input: either a new
// definition or an equation ready to plot.
type Submission struct {
	Definition *Definition        `json:"definition,omitempty"`
	Expanded   string             `json:"expanded,omitempty"`
	Equation   *symbolic.Equation `json:"-"`
}

// IsDefinition reports whether the submission defined a function.
func (s Submission) IsDefinition() bool { return s.Definition != nil }

// Submit routes text to Define when it is a function definition and to
// Parse otherwise.
func (env *Environment) Submit(text string) (Submission, error) {
	def, ok, err := preprocess.ParseDefinition(text)
	if err != nil {
		return Submission{}, err
	}
	if ok {
		env.fns[def.Name] = def
		env.logger.Debug("function defined", "name", def.Name)
		return Submission{Definition: &def}, nil
	}
	expanded, err := env.Expand(text)
	if err != nil {
		return Submission{}, err
	}
	eq, err := symbolic.ParseEquation(expanded)
	if err != nil {
		return Submission{}, err
	}
	return Submission{Expanded: expanded, Equation: eq}, nil
}

// SliceNames lists the axes held fixed when a field is built, in axis order.
func (env *Environment) SliceNames() []string {
	names := env.axes.Names()
	if len(names) <= 2 {
		return nil
	}
	return names[2:]
}

// sortedKeys is shared by the tool handlers and shape listings.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
