package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/njchilds90/dimplot"
	"github.com/njchilds90/dimplot/internal/cli/config"
	"github.com/njchilds90/dimplot/internal/cli/output"
	"github.com/njchilds90/dimplot/internal/contour"
	"github.com/njchilds90/dimplot/internal/render"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Env      *dimplot.Environment
}

// NewCommandContext creates a CommandContext with an environment built from
// the configured dimension, slice values and functions.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	env, err := newEnvironment(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
		Env:      env,
	}, nil
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// newEnvironment applies the function library first so that --define
// entries replace library functions of the same name.
func newEnvironment(cfg *config.Config, logger *slog.Logger) (*dimplot.Environment, error) {
	env, err := dimplot.New(
		dimplot.WithDimension(cfg.Dimension),
		dimplot.WithSlice(cfg.Slice),
		dimplot.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if cfg.FunctionsFile != "" {
		if err := loadFunctionsFile(env, cfg.FunctionsFile); err != nil {
			return nil, err
		}
	}
	if err := env.DefineLines(cfg.Functions...); err != nil {
		return nil, err
	}
	return env, nil
}

func loadFunctionsFile(env *dimplot.Environment, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open function library: %w", err)
	}
	defer func() { _ = f.Close() }()

	defs, err := dimplot.LoadLibrary(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	env.DefineAll(defs)
	return nil
}

func (c *CommandContext) contourOptions() contour.Options {
	return contour.Options{Bounds: c.Cfg.Bounds, Resolution: c.Cfg.Resolution}
}

func (c *CommandContext) renderOptions(title string, width, height int) render.Options {
	return render.Options{
		Bounds:     c.Cfg.Bounds,
		Resolution: c.Cfg.Resolution,
		Title:      title,
		Width:      width,
		Height:     height,
	}
}
