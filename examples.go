package dimplot

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ============================================================
// Example check
// ============================================================

// Example is one input fed through the pipeline by Check.
type Example struct {
	Name        string
	Dimension   int
	Definitions []string
	Input       string
	// Want is the expected expansion; empty skips the comparison.
	Want string
}

// Examples is the fixed list the check command and examples/main.go run.
var Examples = []Example{
	{Name: "circle", Dimension: 2, Input: "x^2 + y^2 = 25", Want: "x^2 + y^2 = 25"},
	{Name: "diamond", Dimension: 2, Input: "abs(x) + abs(y) = 1", Want: "abs(x) + abs(y) = 1"},
	{Name: "hyperbola", Dimension: 2, Input: "x^2 - y^2 = 1", Want: "x^2 - y^2 = 1"},
	{Name: "sum of abs 2d", Dimension: 2, Input: "sum(abs(n)) = 1", Want: "abs(x) + abs(y) = 1"},
	{Name: "sum of abs 3d", Dimension: 3, Input: "sum(abs(n)) = 1", Want: "abs(x) + abs(y) + abs(z) = 1"},
	{Name: "sum of squares 2d", Dimension: 2, Input: "sum(n^2) = 25", Want: "x^2 + y^2 = 25"},
	{Name: "sum of squares 3d", Dimension: 3, Input: "sum(n^2) = 25", Want: "x^2 + y^2 + z^2 = 25"},
	{Name: "product", Dimension: 2, Input: "product(n) = 10", Want: "x*y = 10"},
	{Name: "max of abs 3d", Dimension: 3, Input: "max(abs(n)) = 1", Want: "Max(abs(x), abs(y), abs(z)) = 1"},
	{Name: "indexed", Dimension: 3, Input: "n[0]^2 + n[1]^2 - n[2]^2 = 1", Want: "x^2 + y^2 - z^2 = 1"},
	{
		Name:        "user function",
		Dimension:   2,
		Definitions: []string{"Circle(r) = sum(n^2) - r^2"},
		Input:       "Circle(5)",
		Want:        "x^2 + y^2 - 5^2",
	},
	{
		Name:        "user function in equation",
		Dimension:   2,
		Definitions: []string{"Square(s) = sum(abs(n)) - s"},
		Input:       "Square(2) = 0",
		Want:        "abs(x) + abs(y) - 2 = 0",
	},
	{Name: "abs bars", Dimension: 2, Input: "|x|^3 + |y|^3 = 8", Want: "abs(x)^3 + abs(y)^3 = 8"},
}

// Result is the outcome of one Example.
type Result struct {
	Example  Example `json:"-"`
	Name     string  `json:"name"`
	Expanded string  `json:"expanded,omitempty"`
	Err      error   `json:"-"`
	Error    string  `json:"error,omitempty"`
}

// OK reports whether the example ran through the pipeline.
func (r Result) OK() bool { return r.Err == nil }

// Check runs every example in its own Environment and returns one result
// per example, in order. It only fails as a whole when ctx is done.
func Check(ctx context.Context, examples []Example, opts ...Option) ([]Result, error) {
	results := make([]Result, len(examples))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ex := range examples {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			expanded, err := runExample(ex, opts)
			r := Result{Example: ex, Name: ex.Name, Expanded: expanded, Err: err}
			if err != nil {
				r.Error = err.Error()
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runExample defines, expands, parses and compiles one example.
func runExample(ex Example, opts []Option) (string, error) {
	env, err := New(append(append([]Option(nil), opts...), WithDimension(ex.Dimension))...)
	if err != nil {
		return "", err
	}
	if err := env.DefineLines(ex.Definitions...); err != nil {
		return "", err
	}
	expanded, err := env.Expand(ex.Input)
	if err != nil {
		return "", err
	}
	if ex.Want != "" && expanded != ex.Want {
		return expanded, fmt.Errorf("expanded to %q, want %q", expanded, ex.Want)
	}
	if _, err := env.Field(ex.Input); err != nil {
		return expanded, err
	}
	return expanded, nil
}
