package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/dimplot/internal/cli/output"
	"github.com/njchilds90/dimplot/internal/symbolic"
)

// NewSolveCommand creates the solve command.
func NewSolveCommand() *cobra.Command {
	var vars []string

	cmd := &cobra.Command{
		Use:   "solve <equation>...",
		Short: "Solve an equation for one variable, or two equations for two",
		Long: `Solve an equation for --var. With two variables, the arguments must
hold two equations linear in them (separate arguments or one chain a = b = c).`,
		Example: `  # Both branches of a circle at x = 3
  dimplot solve "x^2 + y^2 = 25" --var y

  # A linear system
  dimplot solve "x + y = 3" "x - y = 1" --var x,y`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(vars) {
			case 1:
				if len(args) != 1 {
					return fmt.Errorf("solving for one variable takes one equation, got %d", len(args))
				}
				return runSolve(cmd, args[0], vars[0])
			case 2:
				return runSolveSystem(cmd, [2]string{vars[0], vars[1]}, args)
			}
			return fmt.Errorf("--var takes one or two names, got %d", len(vars))
		},
	}

	cmd.Flags().StringSliceVar(&vars, "var", []string{"y"}, "Variable(s) to solve for")

	return cmd
}

func runSolve(cmd *cobra.Command, src, variable string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	res, err := cmdCtx.Env.Solve(src, variable)
	if err != nil {
		return err
	}
	solutions := res.Strings()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(map[string]any{
			"var":       variable,
			"solutions": solutions,
			"exact":     res.ExactForm,
			"warning":   res.Error,
		})
	case output.ModeMarkdown:
		for _, s := range solutions {
			r.Println(output.FormatKeyValue(variable, s))
		}
	default:
		for _, s := range solutions {
			r.KeyValue(variable, s)
		}
	}
	if len(solutions) == 0 {
		r.Muted("no solutions")
	}
	if res.Error != "" {
		r.Error(res.Error)
	}
	return nil
}

func runSolveSystem(cmd *cobra.Command, vars [2]string, srcs []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	sol, err := cmdCtx.Env.SolveSystem(vars, srcs...)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]string{
			vars[0]: symbolic.String(sol[vars[0]]),
			vars[1]: symbolic.String(sol[vars[1]]),
		})
	}
	for _, v := range vars {
		r.KeyValue(v, symbolic.String(sol[v]))
	}
	return nil
}

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	var at map[string]string

	cmd := &cobra.Command{
		Use:   "eval <equation>",
		Short: "Evaluate every part of an equation at a point",
		Long: `Evaluate each side of an equation, or each part of a chain a = b = c,
at the point given by --at.`,
		Example: `  dimplot eval "x^2 + y^2 = 25" --at x=3,y=4
  dimplot eval -d 3 "sum(n^2)" --at x=1,y=2,z=2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			point, err := parsePoint(at)
			if err != nil {
				return err
			}
			return runEval(cmd, args[0], point)
		},
	}

	cmd.Flags().StringToStringVar(&at, "at", nil, "Point as name=value pairs")

	return cmd
}

func parsePoint(at map[string]string) (map[string]float64, error) {
	point := make(map[string]float64, len(at))
	for name, raw := range at {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("--at %s: %w", name, err)
		}
		point[name] = v
	}
	return point, nil
}

func runEval(cmd *cobra.Command, src string, point map[string]float64) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	vals, err := cmdCtx.Env.EvaluateChain(src, point)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(vals)
	}
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	r.Println(strings.Join(strs, " = "))
	return nil
}
