// Package render draws implicit curves with gonum/plot, one set of traced
// lines per shape, and writes them to image files or in-memory images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/njchilds90/dimplot/internal/contour"
	"github.com/njchilds90/dimplot/internal/diag"
)

// DefaultPalette is the order in which shapes are coloured.
var DefaultPalette = []string{"blue", "red", "green", "purple", "orange", "cyan", "magenta"}

// Color resolves a CSS colour name.
func Color(name string) (color.Color, bool) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Layer is one curve F(x, y) = Level.
type Layer struct {
	Name  string
	Color color.Color
	Field contour.Field
	Level float64
}

// Options configure a plot.
type Options struct {
	Bounds     contour.Bounds
	Resolution int
	Title      string
	Width      int // pixels
	Height     int // pixels
}

const (
	DefaultWidth  = 640
	DefaultHeight = 640
)

// Plot is a rendered set of layers.
type Plot struct {
	p    *plot.Plot
	w, h vg.Length
}

// swatch is the legend thumbnail of a layer.
type swatch struct{ style draw.LineStyle }

func (s swatch) Thumbnail(c *draw.Canvas) {
	y := c.Center().Y
	c.StrokeLine2(s.style, c.Min.X, y, c.Max.X, y)
}

// pixels converts a pixel count at vgimg's default DPI to a length.
func pixels(n, fallback int) vg.Length {
	if n <= 0 {
		n = fallback
	}
	return vg.Length(n) * vg.Inch / vgimg.DefaultDPI
}

// New samples every layer and assembles the plot.
func New(opts Options, layers ...Layer) (*Plot, error) {
	if opts.Bounds == (contour.Bounds{}) {
		opts.Bounds = contour.DefaultBounds()
	}
	if err := opts.Bounds.Validate(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, l := range layers {
		g, err := contour.Sample(l.Field, contour.Options{Bounds: opts.Bounds, Resolution: opts.Resolution})
		if err != nil {
			return nil, err
		}
		lines, err := contour.TraceGrid(g, l.Level)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", layerName(l, i), err)
		}
		col := l.Color
		if col == nil {
			col, _ = Color(DefaultPalette[i%len(DefaultPalette)])
		}
		style := draw.LineStyle{Color: col, Width: vg.Points(1.5)}
		for _, pl := range lines {
			ln, err := plotter.NewLine(xys(pl))
			if err != nil {
				return nil, diag.Backend(layerName(l, i), err)
			}
			ln.LineStyle = style
			p.Add(ln)
		}
		p.Legend.Add(layerName(l, i), swatch{style: style})
	}

	p.X.Min, p.X.Max = opts.Bounds.XMin, opts.Bounds.XMax
	p.Y.Min, p.Y.Max = opts.Bounds.YMin, opts.Bounds.YMax
	return &Plot{
		p: p,
		w: pixels(opts.Width, DefaultWidth),
		h: pixels(opts.Height, DefaultHeight),
	}, nil
}

func xys(pl contour.Polyline) plotter.XYs {
	out := make(plotter.XYs, len(pl.Points))
	for i, pt := range pl.Points {
		out[i].X, out[i].Y = pt.X, pt.Y
	}
	return out
}

func layerName(l Layer, i int) string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("Shape %d", i+1)
}

// Formats lists the file extensions Save accepts.
var Formats = []string{"png", "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps"}

// Save writes the plot to path; the format follows the extension.
func (r *Plot) Save(path string) (err error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	known := false
	for _, f := range Formats {
		known = known || f == ext
	}
	if !known {
		return fmt.Errorf("unsupported image format %q (want one of %s)", ext, strings.Join(Formats, ", "))
	}
	defer recoverDraw(&err)
	return r.p.Save(r.w, r.h, path)
}

// Image rasterises the plot.
func (r *Plot) Image() (img image.Image, err error) {
	defer recoverDraw(&err)
	c := vgimg.New(r.w, r.h)
	r.p.Draw(draw.New(c))
	return c.Image(), nil
}

// recoverDraw turns a panic inside gonum's drawing code into an error.
func recoverDraw(err *error) {
	if v := recover(); v != nil {
		*err = diag.Backend("drawing failed", fmt.Errorf("%v", v))
	}
}
