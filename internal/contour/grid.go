// Package contour samples an implicit field F(x, y) on a regular grid and
// extracts its level set as polylines.
package contour

import (
	"errors"
	"fmt"
	"math"
)

// Resolution limits, in samples per axis.
const (
	DefaultResolution = 200
	MinResolution     = 4
	MaxResolution     = 4000
)

// Field is a scalar function of the plane.
type Field func(x, y float64) float64

// Bounds is the plotted rectangle in data coordinates.
type Bounds struct {
	XMin float64 `json:"x_min" koanf:"x_min"`
	XMax float64 `json:"x_max" koanf:"x_max"`
	YMin float64 `json:"y_min" koanf:"y_min"`
	YMax float64 `json:"y_max" koanf:"y_max"`
}

// DefaultBounds is the square [-10, 10]².
func DefaultBounds() Bounds {
	return Bounds{XMin: -10, XMax: 10, YMin: -10, YMax: 10}
}

// Validate reports whether b describes a non-empty finite rectangle.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("bounds must be finite")
		}
	}
	if b.XMin >= b.XMax || b.YMin >= b.YMax {
		return fmt.Errorf("empty bounds [%g, %g]x[%g, %g]", b.XMin, b.XMax, b.YMin, b.YMax)
	}
	return nil
}

// Options control sampling and tracing.
type Options struct {
	Bounds     Bounds
	Resolution int // samples per axis
	Level      float64
}

func (o Options) withDefaults() (Options, error) {
	if o.Bounds == (Bounds{}) {
		o.Bounds = DefaultBounds()
	}
	if err := o.Bounds.Validate(); err != nil {
		return o, err
	}
	if o.Resolution == 0 {
		o.Resolution = DefaultResolution
	}
	if o.Resolution < MinResolution || o.Resolution > MaxResolution {
		return o, fmt.Errorf("resolution %d outside [%d, %d]", o.Resolution, MinResolution, MaxResolution)
	}
	return o, nil
}

// Grid holds samples of a field. Non-finite samples are stored as NaN and
// mask every cell they touch.
type Grid struct {
	field    Field
	xs, ys   []float64
	z        []float64 // row major, z[r*len(xs)+c]
	min, max float64
	finite   int
}

// Sample evaluates f on a Resolution x Resolution grid over the bounds.
func Sample(f Field, opts Options) (*Grid, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	n := opts.Resolution
	g := &Grid{
		field: f,
		xs:    linspace(opts.Bounds.XMin, opts.Bounds.XMax, n),
		ys:    linspace(opts.Bounds.YMin, opts.Bounds.YMax, n),
		z:     make([]float64, n*n),
		min:   math.Inf(1),
		max:   math.Inf(-1),
	}
	for r, y := range g.ys {
		for c, x := range g.xs {
			v := f(x, y)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				g.z[r*n+c] = math.NaN()
				continue
			}
			g.finite++
			g.z[r*n+c] = v
			g.min = math.Min(g.min, v)
			g.max = math.Max(g.max, v)
		}
	}
	return g, nil
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Dims returns the number of columns and rows.
func (g *Grid) Dims() (c, r int) { return len(g.xs), len(g.ys) }

// Z returns the sample at column c, row r, or NaN where the field was not
// finite.
func (g *Grid) Z(c, r int) float64 { return g.z[r*len(g.xs)+c] }

// X and Y return the data coordinates of a column and a row.
func (g *Grid) X(c int) float64 { return g.xs[c] }
func (g *Grid) Y(r int) float64 { return g.ys[r] }

// Min and Max bound the finite samples.
func (g *Grid) Min() float64 { return g.min }
func (g *Grid) Max() float64 { return g.max }

// Finite counts the finite samples.
func (g *Grid) Finite() int { return g.finite }

// Bounds returns the sampled rectangle.
func (g *Grid) Bounds() Bounds {
	return Bounds{g.xs[0], g.xs[len(g.xs)-1], g.ys[0], g.ys[len(g.ys)-1]}
}

// Brackets reports whether level lies within the finite samples.
func (g *Grid) Brackets(level float64) bool { return g.min <= level && level <= g.max }
