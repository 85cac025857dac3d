package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/dimplot/internal/window"
)

// NewWindowCommand creates the window command.
func NewWindowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "window [equation]...",
		Short: "Open the interactive plot window",
		Long: `Open a window with an input line and a plot canvas. Enter submits the
line (a definition or an equation to plot), PageUp/PageDown change the
dimension and Escape clears the input. Requires a cgo build.`,
		Example: `  dimplot window
  dimplot window -d 3 "sum(n^2) = 25" "max(abs(n)) = 3"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(cmd, args)
		},
	}
}

func runWindow(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	s := newSession(cmdCtx.Cfg, cmdCtx.Env, cmdCtx.Logger)
	for _, src := range args {
		if _, err := s.Submit(src); err != nil {
			return fmt.Errorf("%s: %w", src, err)
		}
	}

	return window.Run(s, window.Options{
		Title:  "dimplot",
		Width:  cmdCtx.Cfg.Window.Width,
		Height: cmdCtx.Cfg.Window.Height,
	})
}
