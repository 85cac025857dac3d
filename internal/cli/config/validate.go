package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/njchilds90/dimplot/internal/contour"
	"github.com/njchilds90/dimplot/internal/preprocess"
)

var validOutputs = []string{"auto", "text", "markdown", "json"}

// Validate checks the loaded values and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Dimension < preprocess.MinDimension {
		errs = append(errs, fmt.Errorf("dimension must be at least %d, got %d", preprocess.MinDimension, c.Dimension))
	}
	if err := c.Bounds.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bounds: %w", err))
	}
	if c.Resolution < contour.MinResolution || c.Resolution > contour.MaxResolution {
		errs = append(errs, fmt.Errorf("resolution must be in [%d, %d], got %d", contour.MinResolution, contour.MaxResolution, c.Resolution))
	}
	if !validOutput(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output must be one of %s, got %q", strings.Join(validOutputs, ", "), c.OutputFormat))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Watch && c.FunctionsFile == "" {
		errs = append(errs, errors.New("watch needs functions_file"))
	}
	return errors.Join(errs...)
}

func validOutput(s string) bool {
	for _, v := range validOutputs {
		if s == v {
			return true
		}
	}
	return false
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: unknown level %q", s)
	}
	return l, nil
}
