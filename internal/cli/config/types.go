// Package config loads the dimplot CLI configuration from defaults, a YAML
// file, DIMPLOT_* environment variables and command-line flags.
package config

import "github.com/njchilds90/dimplot/internal/contour"

// Defaults.
const (
	DefaultDimension  = 2
	DefaultOutput     = "auto"
	DefaultLogLevel   = "warn"
	DefaultWindowSize = 720
	DefaultConfigFile = "dimplot.yaml"
)

// WindowConfig sizes the interactive window.
type WindowConfig struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

// Config holds all CLI configuration options.
type Config struct {
	Dimension     int                `koanf:"dimension"`
	Bounds        contour.Bounds     `koanf:"bounds"`
	Resolution    int                `koanf:"resolution"`
	Slice         map[string]float64 `koanf:"slice"`
	Functions     []string           `koanf:"functions"`
	FunctionsFile string             `koanf:"functions_file"`
	Watch         bool               `koanf:"watch"`
	OutputFormat  string             `koanf:"output"`
	LogLevel      string             `koanf:"log_level"`
	Verbose       bool               `koanf:"verbose"`
	Window        WindowConfig       `koanf:"window"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Dimension:    DefaultDimension,
		Bounds:       contour.DefaultBounds(),
		Resolution:   contour.DefaultResolution,
		Slice:        map[string]float64{},
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		Window:       WindowConfig{Width: DefaultWindowSize, Height: DefaultWindowSize},
	}
}
