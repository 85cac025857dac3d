package commands

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/njchilds90/dimplot"
	"github.com/njchilds90/dimplot/internal/cli/config"
	"github.com/njchilds90/dimplot/internal/render"
)

// session is the interactive state shared by the REPL and the window: one
// environment plus the shapes entered so far. Requests run one at a time on
// the caller's goroutine.
type session struct {
	cfg    *config.Config
	env    *dimplot.Environment
	shapes *dimplot.ShapeSet
	logger *slog.Logger
}

func newSession(cfg *config.Config, env *dimplot.Environment, logger *slog.Logger) *session {
	return &session{cfg: cfg, env: env, shapes: dimplot.NewShapeSet(env), logger: logger}
}

// Submit defines a function or adds an equation as a shape and returns a
// status line.
func (s *session) Submit(line string) (string, error) {
	sub, err := s.env.Submit(line)
	if err != nil {
		return "", err
	}
	if sub.IsDefinition() {
		// Shapes may call the function that was just (re)defined.
		if err := s.shapes.Refresh(); err != nil {
			s.logger.Warn("refresh after define", "error", err)
		}
		return "defined " + sub.Definition.String(), nil
	}
	shape, err := s.shapes.Add(line, "")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %s", shape.Name, shape.Expanded), nil
}

func (s *session) Dimension() int { return s.env.Dimension() }

// SetDimension changes the number of axes and re-expands every shape.
func (s *session) SetDimension(d int) error {
	if err := s.env.SetDimension(d); err != nil {
		return err
	}
	return s.shapes.Refresh()
}

// Reload re-reads the configured function library.
func (s *session) Reload() error {
	if s.cfg.FunctionsFile == "" {
		return nil
	}
	if err := loadFunctionsFile(s.env, s.cfg.FunctionsFile); err != nil {
		return err
	}
	return s.shapes.Refresh()
}

// Image renders the visible shapes at width x height pixels.
func (s *session) Image(width, height int) (image.Image, error) {
	p, err := s.shapes.Render(s.renderOptions(width, height))
	if err != nil {
		return nil, err
	}
	return p.Image()
}

// Save renders the visible shapes to path.
func (s *session) Save(path string) error {
	p, err := s.shapes.Render(s.renderOptions(0, 0))
	if err != nil {
		return err
	}
	return p.Save(path)
}

func (s *session) renderOptions(width, height int) render.Options {
	return render.Options{Bounds: s.cfg.Bounds, Resolution: s.cfg.Resolution, Width: width, Height: height}
}
