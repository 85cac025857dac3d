package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/dimplot"
	"github.com/njchilds90/dimplot/internal/cli/config"
	"github.com/njchilds90/dimplot/internal/cli/output"
)

// ErrCheckFailed is returned by the check command when any example fails.
var ErrCheckFailed = errors.New("check failed")

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the built-in examples through the whole pipeline",
		Long: `Expand, parse and compile every built-in example and compare the
expansion with the expected text. Exits non-zero when any example fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, dimplot.Examples)
		},
	}
}

func runCheck(cmd *cobra.Command, examples []dimplot.Example) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	results, err := dimplot.Check(cmd.Context(), examples, dimplot.WithLogger(logger))
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(results); err != nil {
			return err
		}
	default:
		rows := make([][]string, len(results))
		for i, res := range results {
			status, detail := "ok", res.Expanded
			if !res.OK() {
				status, detail = "FAIL", res.Error
			}
			rows[i] = []string{res.Name, status, detail}
		}
		r.Table([]string{"Example", "Status", "Result"}, rows)
		if failed == 0 {
			r.Success(fmt.Sprintf("%d examples passed", len(results)))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d examples", ErrCheckFailed, failed, len(results))
	}
	return nil
}
