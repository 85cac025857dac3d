package dimplot

import (
	"fmt"
	"math"

	"github.com/njchilds90/dimplot/internal/contour"
	"github.com/njchilds90/dimplot/internal/diag"
	"github.com/njchilds90/dimplot/internal/render"
	"github.com/njchilds90/dimplot/internal/symbolic"
)

// ============================================================
// Shapes
// ============================================================

// Shape is one plotted equation with its placement on the canvas.
type Shape struct {
	Name        string  `json:"name"`
	Equation    string  `json:"equation"`
	Expanded    string  `json:"expanded"`
	Color       string  `json:"color"`
	Visible     bool    `json:"visible"`
	TranslateX  float64 `json:"translate_x"`
	TranslateY  float64 `json:"translate_y"`
	RotationDeg float64 `json:"rotation_deg"`

	residual symbolic.Expr
}

// Residual is lhs - rhs of the shape's equation before any transform.
func (s *Shape) Residual() symbolic.Expr { return s.residual }

// transform maps a canvas point into the shape's own frame: translate by
// (-tx, -ty), then rotate by -θ.
func (s *Shape) transform(x, y float64) (float64, float64) {
	x, y = x-s.TranslateX, y-s.TranslateY
	if s.RotationDeg == 0 {
		return x, y
	}
	sin, cos := math.Sincos(s.RotationDeg * math.Pi / 180)
	return x*cos + y*sin, -x*sin + y*cos
}

// ShapeSet is an ordered collection of shapes sharing one Environment.
type ShapeSet struct {
	env     *Environment
	shapes  []*Shape
	counter int
	palette []string
}

// NewShapeSet creates an empty set drawing on env.
func NewShapeSet(env *Environment) *ShapeSet {
	return &ShapeSet{env: env, palette: render.DefaultPalette}
}

// Add parses equation and appends it as a visible shape. An empty name
// becomes "Shape N"; the colour cycles through the palette.
func (ss *ShapeSet) Add(equation, name string) (*Shape, error) {
	expanded, err := ss.env.Expand(equation)
	if err != nil {
		return nil, err
	}
	eq, err := symbolic.ParseEquation(expanded)
	if err != nil {
		return nil, err
	}
	ss.counter++
	if name == "" {
		name = fmt.Sprintf("Shape %d", ss.counter)
	}
	s := &Shape{
		Name:     name,
		Equation: equation,
		Expanded: expanded,
		Color:    ss.palette[len(ss.shapes)%len(ss.palette)],
		Visible:  true,
		residual: eq.Residual(),
	}
	ss.shapes = append(ss.shapes, s)
	ss.env.logger.Debug("shape added", "name", name, "color", s.Color, "expanded", expanded)
	return s, nil
}

// Get returns the shape called name.
func (ss *ShapeSet) Get(name string) (*Shape, bool) {
	for _, s := range ss.shapes {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Remove deletes the shape called name and reports whether it existed.
func (ss *ShapeSet) Remove(name string) bool {
	for i, s := range ss.shapes {
		if s.Name == name {
			ss.shapes = append(ss.shapes[:i], ss.shapes[i+1:]...)
			return true
		}
	}
	return false
}

func (ss *ShapeSet) lookup(name string) (*Shape, error) {
	s, ok := ss.Get(name)
	if !ok {
		return nil, diag.Namef(-1, "no shape named %q", name)
	}
	return s, nil
}

// SetVisible shows or hides a shape.
func (ss *ShapeSet) SetVisible(name string, visible bool) error {
	s, err := ss.lookup(name)
	if err != nil {
		return err
	}
	s.Visible = visible
	return nil
}

// SetColor sets a shape's colour to a CSS colour name.
func (ss *ShapeSet) SetColor(name, color string) error {
	s, err := ss.lookup(name)
	if err != nil {
		return err
	}
	if _, ok := render.Color(color); !ok {
		return fmt.Errorf("unknown colour %q", color)
	}
	s.Color = color
	return nil
}

// Translate moves a shape to (tx, ty).
func (ss *ShapeSet) Translate(name string, tx, ty float64) error {
	s, err := ss.lookup(name)
	if err != nil {
		return err
	}
	s.TranslateX, s.TranslateY = tx, ty
	return nil
}

// Rotate sets a shape's rotation about its own origin, in degrees.
func (ss *ShapeSet) Rotate(name string, deg float64) error {
	s, err := ss.lookup(name)
	if err != nil {
		return err
	}
	s.RotationDeg = deg
	return nil
}

// Clear removes every shape and restarts the "Shape N" numbering.
func (ss *ShapeSet) Clear() {
	ss.shapes = nil
	ss.counter = 0
}

// Shapes returns the shapes in insertion order.
func (ss *ShapeSet) Shapes() []*Shape {
	return append([]*Shape(nil), ss.shapes...)
}

// Len returns the number of shapes.
func (ss *ShapeSet) Len() int { return len(ss.shapes) }

// Refresh re-expands every shape against the environment, after a change of
// dimension or of the function table. The first failure is returned and the
// failing shape keeps its previous expansion.
func (ss *ShapeSet) Refresh() error {
	var first error
	for _, s := range ss.shapes {
		expanded, err := ss.env.Expand(s.Equation)
		if err == nil {
			var eq *symbolic.Equation
			if eq, err = symbolic.ParseEquation(expanded); err == nil {
				s.Expanded, s.residual = expanded, eq.Residual()
				continue
			}
		}
		if first == nil {
			first = fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return first
}

// Field compiles a shape with its transform applied.
func (ss *ShapeSet) Field(s *Shape) (contour.Field, error) {
	f, err := ss.env.field(s.residual)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	return func(x, y float64) float64 { return f(s.transform(x, y)) }, nil
}

// Layers builds a render layer for every visible shape.
func (ss *ShapeSet) Layers() ([]render.Layer, error) {
	var layers []render.Layer
	for _, s := range ss.shapes {
		if !s.Visible {
			continue
		}
		f, err := ss.Field(s)
		if err != nil {
			return nil, err
		}
		col, _ := render.Color(s.Color)
		layers = append(layers, render.Layer{Name: s.Name, Color: col, Field: f})
	}
	return layers, nil
}

// Render draws every visible shape.
func (ss *ShapeSet) Render(opts render.Options) (*render.Plot, error) {
	layers, err := ss.Layers()
	if err != nil {
		return nil, err
	}
	return render.New(opts, layers...)
}
