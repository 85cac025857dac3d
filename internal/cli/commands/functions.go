package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/dimplot"
	"github.com/njchilds90/dimplot/internal/cli/output"
)

// NewFunctionsCommand creates the functions command.
func NewFunctionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the user functions defined by --define and --functions-file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFunctions(cmd)
		},
	}
}

func runFunctions(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	fns := cmdCtx.Env.Functions()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(fns)
	default:
		if len(fns) == 0 {
			r.Muted("no functions defined")
			return nil
		}
		r.Header(1, fmt.Sprintf("Functions (%d)", len(fns)))
		rows := make([][]string, len(fns))
		for i, d := range fns {
			rows[i] = []string{d.Name, strings.Join(d.Params, ", "), d.Body}
		}
		r.Table([]string{"Name", "Params", "Body"}, rows)
	}
	return nil
}

// NewIdentitiesCommand creates the identities command.
func NewIdentitiesCommand() *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "identities [name]",
		Short: "List the identity library or expand one identity",
		Long: `Without a name, list every identity with its parameters and minimum
dimension. With a name, expand it for the current dimension; --param
overrides its default parameters.`,
		Example: `  dimplot identities
  dimplot identities Torus -d 3 --param R=4,r=1`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			ids := dimplot.Identities()
			names := make([]string, len(ids))
			for i, id := range ids {
				names[i] = id.Name
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runIdentities(cmd)
			}
			values, err := parsePoint(params)
			if err != nil {
				return err
			}
			return runIdentity(cmd, args[0], values)
		},
	}

	cmd.Flags().StringToStringVar(&params, "param", nil, "Parameter overrides as name=value pairs")

	return cmd
}

func runIdentities(cmd *cobra.Command) error {
	cfg := getConfig()
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	ids := dimplot.Identities()

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(ids)
	}
	rows := make([][]string, len(ids))
	for i, id := range ids {
		rows[i] = []string{id.Name, id.Expr, formatParams(id.Params), strconv.Itoa(id.MinDimension())}
	}
	r.Table([]string{"Name", "Expression", "Params", "Min dim"}, rows)
	return nil
}

func runIdentity(cmd *cobra.Command, name string, params map[string]float64) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	expanded, err := cmdCtx.Env.Identity(name, params)
	if err != nil {
		return err
	}
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{"name": name, "dimension": cmdCtx.Env.Dimension(), "expanded": expanded})
	}
	r.Println(expanded)
	return nil
}

func formatParams(params map[string]float64) string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + "=" + strconv.FormatFloat(params[k], 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}
