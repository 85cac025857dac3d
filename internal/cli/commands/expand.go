package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/dimplot/internal/cli/output"
)

// NewExpandCommand creates the expand command.
func NewExpandCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <equation>",
		Short: "Expand sum/product/max, n[i] and user functions",
		Long: `Rewrite an equation into plain text over the current axes.

sum(E(n)), product(E(n)) and max(E(n)) are replicated once per axis, n[i]
becomes the i-th axis name and user function calls are inlined.`,
		Example: `  # Squares over three axes
  dimplot expand -d 3 "sum(n^2) = 25"

  # With a user function
  dimplot expand --define "Circle(r) = sum(n^2) - r^2" "Circle(5) = 0"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, args[0])
		},
	}
}

func runExpand(cmd *cobra.Command, src string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	expanded, err := cmdCtx.Env.Expand(src)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{
			"input":     src,
			"dimension": cmdCtx.Env.Dimension(),
			"expanded":  expanded,
		})
	}
	r.Println(expanded)
	return nil
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <equation>",
		Short: "Expand and parse an equation or chain a = b = c",
		Long: `Expand an equation, parse it with the symbolic backend and print each
equation of the chain in canonical and LaTeX form.`,
		Example: `  dimplot parse "x^2 + y^2 = 25"
  dimplot parse "x + y = 3 = 2*x - y + 3" -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0])
		},
	}
}

type parsedEquation struct {
	Equation string `json:"equation"`
	LaTeX    string `json:"latex"`
}

func runParse(cmd *cobra.Command, src string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	chain, err := cmdCtx.Env.ParseChain(src)
	if err != nil {
		return err
	}
	parsed := make([]parsedEquation, len(chain))
	for i, eq := range chain {
		parsed[i] = parsedEquation{Equation: eq.String(), LaTeX: eq.LaTeX()}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(parsed)
	case output.ModeMarkdown:
		for _, p := range parsed {
			r.Println(fmt.Sprintf("- `%s`  $%s$", p.Equation, p.LaTeX))
		}
	default:
		for _, p := range parsed {
			r.Printf("%s  %s\n", p.Equation, r.Styles().Muted.Render(p.LaTeX))
		}
	}
	return nil
}
