package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/dimplot/internal/contour"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dimplot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.IntP("dimension", "d", DefaultDimension, "number of axes")
	flags.StringArray("define", nil, "function definition")
	flags.String("functions-file", "", "function library")
	flags.String("log-level", DefaultLogLevel, "log level")
	flags.BoolP("verbose", "v", false, "verbose")
	flags.StringP("output", "o", DefaultOutput, "output format")
	return flags
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"dimension too small", func(c *Config) { c.Dimension = 1 }, "dimension must be at least 2"},
		{"inverted bounds", func(c *Config) { c.Bounds.XMin, c.Bounds.XMax = 5, -5 }, "bounds"},
		{"resolution too small", func(c *Config) { c.Resolution = 1 }, "resolution must be in"},
		{"unknown output", func(c *Config) { c.OutputFormat = "yaml" }, "output must be one of"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "unknown level"},
		{"empty window", func(c *Config) { c.Window.Width = 0 }, "window size must be positive"},
		{"watch without file", func(c *Config) { c.Watch = true }, "watch needs functions_file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	t.Run("reports every problem", func(t *testing.T) {
		cfg := Default()
		cfg.Dimension = 0
		cfg.OutputFormat = "xml"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimension")
		assert.Contains(t, err.Error(), "output")
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDimension, cfg.Dimension)
	assert.Equal(t, contour.DefaultBounds(), cfg.Bounds)
	assert.Equal(t, contour.DefaultResolution, cfg.Resolution)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultWindowSize, cfg.Window.Width)
	assert.NotNil(t, cfg.Slice)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, `dimension: 3
bounds:
  x_min: -2
  x_max: 2
  y_min: -1
  y_max: 1
resolution: 50
slice:
  z: 0.5
functions:
  - Circle(r) = sum(n^2) - r^2
window:
  width: 400
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Dimension)
	assert.Equal(t, contour.Bounds{XMin: -2, XMax: 2, YMin: -1, YMax: 1}, cfg.Bounds)
	assert.Equal(t, 50, cfg.Resolution)
	assert.Equal(t, map[string]float64{"z": 0.5}, cfg.Slice)
	assert.Equal(t, []string{"Circle(r) = sum(n^2) - r^2"}, cfg.Functions)
	assert.Equal(t, 400, cfg.Window.Width)
	assert.Equal(t, DefaultWindowSize, cfg.Window.Height, "unset keys keep defaults")
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_FindsFileInWorkingDirectory(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("dimension: 4\n"), 0600))
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Dimension)
	assert.Equal(t, DefaultConfigFile, GetConfigFileUsed())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_Invalid(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "dimension: 1\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Nil(t, GetCurrentConfig())
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "dimension: 3\nlog_level: info\n")
	t.Setenv("DIMPLOT_DIMENSION", "4")
	t.Setenv("DIMPLOT_BOUNDS__X_MAX", "20")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Dimension, "env var should override config file")
	assert.Equal(t, 20.0, cfg.Bounds.XMax, "double underscore selects a nested key")
	assert.Equal(t, "info", cfg.LogLevel, "file value survives when env is unset")
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "dimension: 3\n")
	t.Setenv("DIMPLOT_DIMENSION", "4")

	flags := testFlags()
	require.NoError(t, flags.Set("dimension", "5"))
	require.NoError(t, flags.Set("define", "Circle(r) = sum(n^2) - r^2"))
	require.NoError(t, flags.Set("functions-file", "lib.yaml"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Dimension, "flag value should override config file and env var")
	assert.Equal(t, []string{"Circle(r) = sum(n^2) - r^2"}, cfg.Functions, "define maps to functions")
	assert.Equal(t, "lib.yaml", cfg.FunctionsFile)
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("DIMPLOT_OUTPUT", "json")

	cfg, err := LoadConfig("", testFlags())
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat, "unchanged flag defaults must not shadow env")
}

func TestLoadConfig_VerboseRaisesLogLevel(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	flags := testFlags()
	require.NoError(t, flags.Set("verbose", "true"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "info")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = NewLogger(&buf, "chatty")
	assert.Error(t, err)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "missing logger falls back to a discard logger")

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
