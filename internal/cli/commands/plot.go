package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/dimplot"
	"github.com/njchilds90/dimplot/internal/cli/output"
	"github.com/njchilds90/dimplot/internal/render"
)

// NewContourCommand creates the contour command.
func NewContourCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "contour <equation>",
		Short: "Trace the zero set of an equation as polylines",
		Long: `Sample lhs - rhs over the configured bounds and print the polylines of
its zero set. Axes beyond y are held at their slice values.`,
		Example: `  dimplot contour "x^2 + y^2 = 1" -o json
  dimplot contour -d 3 "sum(n^2) = 4" --config dimplot.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContour(cmd, args[0])
		},
	}
}

func runContour(cmd *cobra.Command, src string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	lines, err := cmdCtx.Env.Trace(src, cmdCtx.contourOptions())
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(lines)
	}
	r.Header(1, fmt.Sprintf("Contour (%d polylines)", len(lines)))
	rows := make([][]string, len(lines))
	for i, l := range lines {
		start := ""
		if len(l.Points) > 0 {
			start = fmt.Sprintf("(%.4g, %.4g)", l.Points[0].X, l.Points[0].Y)
		}
		rows[i] = []string{strconv.Itoa(i + 1), strconv.Itoa(len(l.Points)), strconv.FormatBool(l.Closed), start}
	}
	r.Table([]string{"#", "Points", "Closed", "Start"}, rows)
	return nil
}

// PlotOptions holds flags for the plot command.
type PlotOptions struct {
	Out    string
	Title  string
	Width  int
	Height int
}

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	opts := &PlotOptions{}

	cmd := &cobra.Command{
		Use:   "plot <equation>...",
		Short: "Render one or more equations to an image file",
		Long: `Render every equation as a coloured shape and save the plot. The format
follows the file extension: ` + strings.Join(render.Formats, ", ") + `.`,
		Example: `  dimplot plot "x^2 + y^2 = 25" "sum(abs(n)) = 5" --out shapes.png
  dimplot plot -d 3 "max(abs(n)) = 1" --out cube.svg --title "Cube slice"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "plot.png", "Output file")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Plot title")
	cmd.Flags().IntVar(&opts.Width, "width", render.DefaultWidth, "Image width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", render.DefaultHeight, "Image height in pixels")

	return cmd
}

func runPlot(cmd *cobra.Command, srcs []string, opts *PlotOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	shapes := dimplot.NewShapeSet(cmdCtx.Env)
	for _, src := range srcs {
		if _, err := shapes.Add(src, ""); err != nil {
			return fmt.Errorf("%s: %w", src, err)
		}
	}
	p, err := shapes.Render(cmdCtx.renderOptions(opts.Title, opts.Width, opts.Height))
	if err != nil {
		return err
	}
	if err := p.Save(opts.Out); err != nil {
		return err
	}
	cmdCtx.Logger.Info("plot saved", "path", opts.Out, "shapes", shapes.Len())

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{"path": opts.Out, "shapes": shapes.Shapes()})
	}
	r.Success(fmt.Sprintf("Wrote %s (%d shapes)", opts.Out, shapes.Len()))
	return nil
}
