package dimplot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/njchilds90/dimplot/internal/contour"
	"github.com/njchilds90/dimplot/internal/symbolic"
)

// ============================================================
// MCP Tool Interface
// ============================================================

// ToolRequest is one tool call. Every call is stateless: the dimension and
// any user functions travel in Params ("dimension", "definitions").
type ToolRequest struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

// ToolResponse carries a tool's result or its error message.
type ToolResponse struct {
	Result any    `json:"result,omitempty"`
	LaTeX  string `json:"latex,omitempty"`
	String string `json:"string,omitempty"`
	Error  string `json:"error,omitempty"`
}

func errResponse(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

// HandleToolCall runs one tool. Failures are reported in the response's
// Error field, never as a Go error.
func HandleToolCall(req ToolRequest) ToolResponse {
	t, ok := toolNamed(req.Tool)
	if !ok {
		return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
	}
	resp, err := t.run(toolParams(req.Params))
	if err != nil {
		return errResponse(err)
	}
	return resp
}

// tool is one entry of the tool table. withEnv tools also accept the
// environment params: dimension, definitions and slice.
type tool struct {
	name        string
	description string
	required    []string
	props       map[string]string
	withEnv     bool
	run         func(p toolParams) (ToolResponse, error)
}

var toolset []tool

func toolNamed(name string) (tool, bool) {
	for _, t := range toolset {
		if t.name == name {
			return t, true
		}
	}
	return tool{}, false
}

// ============================================================
// Params
// ============================================================

// toolParams are the decoded JSON params of a request.
type toolParams map[string]any

var errMissingParam = errors.New("missing param")

func (p toolParams) text(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", errMissingParam, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string", key)
	}
	return s, nil
}

// texts returns nil when key is absent.
func (p toolParams) texts(key string) ([]string, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("param %s must be array", key)
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("param %s[%d] must be string", key, i)
		}
		out[i] = s
	}
	return out, nil
}

func (p toolParams) number(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("param %s must be a number", key)
	}
	return f, nil
}

// numbers decodes an object of numbers, empty when key is absent.
func (p toolParams) numbers(key string) (map[string]float64, error) {
	out := map[string]float64{}
	v, ok := p[key]
	if !ok {
		return out, nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("param %s must be an object of numbers", key)
	}
	for k, r := range raw {
		f, ok := r.(float64)
		if !ok {
			return nil, fmt.Errorf("param %s.%s must be a number", key, k)
		}
		out[k] = f
	}
	return out, nil
}

// environment builds a fresh Environment from the request.
func (p toolParams) environment() (*Environment, error) {
	dim, err := p.number("dimension", DefaultDimension)
	if err != nil {
		return nil, err
	}
	slice, err := p.numbers("slice")
	if err != nil {
		return nil, err
	}
	defs, err := p.texts("definitions")
	if err != nil {
		return nil, err
	}
	env, err := New(WithDimension(int(dim)), WithSlice(slice))
	if err != nil {
		return nil, err
	}
	if err := env.DefineLines(defs...); err != nil {
		return nil, err
	}
	return env, nil
}

// expr accepts either equation text, expanded in the request's environment
// and reduced to lhs - rhs, or a JSON expression tree.
func (p toolParams) expr(key string) (symbolic.Expr, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, fmt.Errorf("%w: %s", errMissingParam, key)
	case map[string]any:
		return symbolic.FromJSON(v)
	case string:
		env, err := p.environment()
		if err != nil {
			return nil, err
		}
		eq, err := env.Parse(v)
		if err != nil {
			return nil, err
		}
		return eq.Residual(), nil
	}
	return nil, fmt.Errorf("invalid type for param %s", key)
}

// ============================================================
// Responses
// ============================================================

func exprResponse(e symbolic.Expr) ToolResponse {
	return ToolResponse{Result: symbolic.ToMap(e), LaTeX: symbolic.LaTeX(e), String: symbolic.String(e)}
}

func textResponse(s string) ToolResponse { return ToolResponse{Result: s, String: s} }

// solveResponse keeps partial solutions alongside a solver warning.
func solveResponse(res symbolic.SolveResult) ToolResponse {
	if res.Error != "" && len(res.Solutions) == 0 {
		return ToolResponse{Error: res.Error}
	}
	strs := res.Strings()
	return ToolResponse{Result: strs, String: strings.Join(strs, ", "), Error: res.Error}
}

// exprTool adapts a unary expression transform into a tool runner.
func exprTool(fn func(e symbolic.Expr, p toolParams) (ToolResponse, error)) func(toolParams) (ToolResponse, error) {
	return func(p toolParams) (ToolResponse, error) {
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		return fn(e, p)
	}
}

// ============================================================
// Tools
// ============================================================

func init() {
	toolset = []tool{
		{
			name:        "expand",
			description: "Expand sum/product/max/min, n[i] and user function calls into plain equation text",
			required:    []string{"expr"},
			props:       map[string]string{"expr": "string"},
			withEnv:     true,
			run:         runExpand,
		},
		{
			name:        "parse",
			description: "Expand and parse an equation or chain a = b = c into expression trees",
			required:    []string{"expr"},
			props:       map[string]string{"expr": "string"},
			withEnv:     true,
			run:         runParse,
		},
		{
			name:        "simplify",
			description: "Simplify an expression (equation text is reduced to lhs - rhs)",
			required:    []string{"expr"},
			props:       map[string]string{"expr": "string"},
			withEnv:     true,
			run: exprTool(func(e symbolic.Expr, _ toolParams) (ToolResponse, error) {
				return exprResponse(symbolic.Simplify(e)), nil
			}),
		},
		{
			name:        "expand_algebraic",
			description: "Algebraically expand an expression",
			required:    []string{"expr"},
			props:       map[string]string{"expr": "string"},
			withEnv:     true,
			run: exprTool(func(e symbolic.Expr, _ toolParams) (ToolResponse, error) {
				return exprResponse(symbolic.Expand(e)), nil
			}),
		},
		{
			name:        "diff",
			description: "Derivative with respect to var",
			required:    []string{"expr", "var"},
			props:       map[string]string{"expr": "string", "var": "string"},
			withEnv:     true,
			run: exprTool(func(e symbolic.Expr, p toolParams) (ToolResponse, error) {
				v, err := p.text("var")
				if err != nil {
					return ToolResponse{}, err
				}
				return exprResponse(symbolic.Diff(e, v)), nil
			}),
		},
		{
			name:        "solve",
			description: "Solve expr = 0 (or lhs = rhs) for var",
			required:    []string{"expr", "var"},
			props:       map[string]string{"expr": "string", "var": "string"},
			withEnv:     true,
			run: exprTool(func(e symbolic.Expr, p toolParams) (ToolResponse, error) {
				v, err := p.text("var")
				if err != nil {
					return ToolResponse{}, err
				}
				return solveResponse(symbolic.Solve(e, v)), nil
			}),
		},
		{
			name:        "solve_system",
			description: "Solve two equations linear in vars (default x, y)",
			required:    []string{"equations"},
			props:       map[string]string{"equations": "array", "vars": "array"},
			withEnv:     true,
			run:         runSolveSystem,
		},
		{
			name:        "evaluate",
			description: "Evaluate every part of an equation chain at point",
			required:    []string{"expr", "point"},
			props:       map[string]string{"expr": "string", "point": "object"},
			withEnv:     true,
			run:         runEvaluate,
		},
		{
			name:        "contour",
			description: "Trace the curve F(x, y) = 0 as polylines",
			required:    []string{"expr"},
			props:       map[string]string{"expr": "string", "bounds": "object", "resolution": "integer"},
			withEnv:     true,
			run:         runContour,
		},
		{
			name:        "identities",
			description: "List the identity library, or expand one by name",
			required:    []string{},
			props:       map[string]string{"name": "string", "dimension": "integer", "params": "object"},
			run:         runIdentities,
		},
		{
			name:        "mcp_spec",
			description: "Return this tool schema",
			required:    []string{},
			props:       map[string]string{},
			run: func(toolParams) (ToolResponse, error) {
				return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}, nil
			},
		},
	}
}

func runExpand(p toolParams) (ToolResponse, error) {
	src, err := p.text("expr")
	if err != nil {
		return ToolResponse{}, err
	}
	env, err := p.environment()
	if err != nil {
		return ToolResponse{}, err
	}
	out, err := env.Expand(src)
	if err != nil {
		return ToolResponse{}, err
	}
	return textResponse(out), nil
}

func runParse(p toolParams) (ToolResponse, error) {
	src, err := p.text("expr")
	if err != nil {
		return ToolResponse{}, err
	}
	env, err := p.environment()
	if err != nil {
		return ToolResponse{}, err
	}
	chain, err := env.ParseChain(src)
	if err != nil {
		return ToolResponse{}, err
	}
	trees := make([]map[string]any, len(chain))
	strs := make([]string, len(chain))
	latex := make([]string, len(chain))
	for i, eq := range chain {
		trees[i] = map[string]any{"lhs": symbolic.ToMap(eq.LHS), "rhs": symbolic.ToMap(eq.RHS)}
		strs[i] = eq.String()
		latex[i] = eq.LaTeX()
	}
	return ToolResponse{Result: trees, String: strings.Join(strs, "; "), LaTeX: strings.Join(latex, `,\ `)}, nil
}

func runSolveSystem(p toolParams) (ToolResponse, error) {
	eqs, err := p.texts("equations")
	if err != nil {
		return ToolResponse{}, err
	}
	vars, err := p.texts("vars")
	if err != nil {
		return ToolResponse{}, err
	}
	if len(vars) == 0 {
		vars = []string{"x", "y"}
	}
	if len(vars) != 2 {
		return ToolResponse{}, errors.New("param vars must hold 2 names")
	}
	env, err := p.environment()
	if err != nil {
		return ToolResponse{}, err
	}
	sol, err := env.SolveSystem([2]string{vars[0], vars[1]}, eqs...)
	if err != nil {
		return ToolResponse{}, err
	}
	values := make(map[string]string, 2)
	strs := make([]string, 2)
	latex := make([]string, 2)
	for i, v := range vars {
		values[v] = symbolic.String(sol[v])
		strs[i] = v + "=" + values[v]
		latex[i] = v + "=" + symbolic.LaTeX(sol[v])
	}
	return ToolResponse{Result: values, String: strings.Join(strs, ", "), LaTeX: strings.Join(latex, `,\ `)}, nil
}

func runEvaluate(p toolParams) (ToolResponse, error) {
	src, err := p.text("expr")
	if err != nil {
		return ToolResponse{}, err
	}
	point, err := p.numbers("point")
	if err != nil {
		return ToolResponse{}, err
	}
	env, err := p.environment()
	if err != nil {
		return ToolResponse{}, err
	}
	vals, err := env.EvaluateChain(src, point)
	if err != nil {
		return ToolResponse{}, err
	}
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = formatParam(v)
	}
	return ToolResponse{Result: vals, String: strings.Join(strs, ", ")}, nil
}

func runContour(p toolParams) (ToolResponse, error) {
	src, err := p.text("expr")
	if err != nil {
		return ToolResponse{}, err
	}
	opts := contour.Options{Bounds: contour.DefaultBounds()}
	if b, ok := p["bounds"]; ok {
		raw, err := json.Marshal(b)
		if err != nil {
			return ToolResponse{}, err
		}
		if err := json.Unmarshal(raw, &opts.Bounds); err != nil {
			return ToolResponse{}, errors.New("param bounds must be {x_min,x_max,y_min,y_max}")
		}
	}
	res, err := p.number("resolution", contour.DefaultResolution)
	if err != nil {
		return ToolResponse{}, err
	}
	opts.Resolution = int(res)
	env, err := p.environment()
	if err != nil {
		return ToolResponse{}, err
	}
	lines, err := env.Trace(src, opts)
	if err != nil {
		return ToolResponse{}, err
	}
	return ToolResponse{Result: lines, String: fmt.Sprintf("%d polylines", len(lines))}, nil
}

func runIdentities(p toolParams) (ToolResponse, error) {
	name, err := p.text("name")
	if errors.Is(err, errMissingParam) {
		ids := Identities()
		return ToolResponse{Result: ids, String: fmt.Sprintf("%d identities", len(ids))}, nil
	}
	if err != nil {
		return ToolResponse{}, err
	}
	dim, err := p.number("dimension", DefaultDimension)
	if err != nil {
		return ToolResponse{}, err
	}
	params, err := p.numbers("params")
	if err != nil {
		return ToolResponse{}, err
	}
	out, err := ExpandIdentity(name, int(dim), params)
	if err != nil {
		return ToolResponse{}, err
	}
	return textResponse(out), nil
}

// ============================================================
// MCP spec
// ============================================================

var envProps = map[string]string{"dimension": "integer", "definitions": "array", "slice": "object"}

// MCPToolSpec returns the JSON schema of every tool, for agent registration.
func MCPToolSpec() string {
	tools := make([]map[string]any, len(toolset))
	for i, t := range toolset {
		tools[i] = t.schema()
	}
	b, _ := json.MarshalIndent(map[string]any{"tools": tools}, "", "  ")
	return string(b)
}

func (t tool) schema() map[string]any {
	properties := map[string]any{}
	add := func(props map[string]string) {
		for _, k := range sortedKeys(props) {
			properties[k] = map[string]any{"type": props[k]}
		}
	}
	if t.withEnv {
		add(envProps)
	}
	add(t.props)
	return map[string]any{
		"name":        t.name,
		"description": t.description,
		"inputSchema": map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   t.required,
		},
	}
}
