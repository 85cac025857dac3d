package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/dimplot"
	"github.com/njchilds90/dimplot/internal/cli/config"
)

// useConfig loads a config from yaml in a fresh working directory, so the
// commands see it through config.GetCurrentConfig.
func useConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	dir := t.TempDir()
	t.Chdir(dir)
	if yaml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(yaml), 0600))
	}
	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	return cfg
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	// A nil slice would make cobra read os.Args.
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewExpandCommand(), "expand <equation>", nil},
		{NewParseCommand(), "parse <equation>", nil},
		{NewSolveCommand(), "solve <equation>...", []string{"var"}},
		{NewEvalCommand(), "eval <equation>", []string{"at"}},
		{NewContourCommand(), "contour <equation>", nil},
		{NewPlotCommand(), "plot <equation>...", []string{"out", "title", "width", "height"}},
		{NewCheckCommand(), "check", nil},
		{NewFunctionsCommand(), "functions", nil},
		{NewIdentitiesCommand(), "identities [name]", []string{"param"}},
		{NewREPLCommand(), "repl", nil},
		{NewWindowCommand(), "window [equation]...", nil},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestExpandCommand(t *testing.T) {
	useConfig(t, "dimension: 3\n")

	out, _, err := run(t, NewExpandCommand(), "max(abs(n)) = 1")
	require.NoError(t, err)
	assert.Equal(t, "Max(abs(x), abs(y), abs(z)) = 1\n", out)

	_, _, err = run(t, NewExpandCommand(), "n[3] = 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dimplot.ErrIndex))
}

func TestExpandCommand_DefaultsWithoutConfig(t *testing.T) {
	config.ResetConfig()
	out, _, err := run(t, NewExpandCommand(), "sum(n^2) = 25")
	require.NoError(t, err)
	assert.Equal(t, "x^2 + y^2 = 25\n", out)
}

func TestParseCommand(t *testing.T) {
	useConfig(t, "output: json\n")

	out, _, err := run(t, NewParseCommand(), "x + y = 3 = 2*x - y + 3")
	require.NoError(t, err)
	assert.Contains(t, out, `"equation"`)
	assert.Contains(t, out, `"latex"`)
}

func TestSolveCommand(t *testing.T) {
	useConfig(t, "")

	t.Run("one variable", func(t *testing.T) {
		out, _, err := run(t, NewSolveCommand(), "2*y - 6 = 0", "--var", "y")
		require.NoError(t, err)
		assert.Contains(t, out, "- **y:** 3")
	})

	t.Run("system", func(t *testing.T) {
		out, _, err := run(t, NewSolveCommand(), "x + y = 3", "x - y = 1", "--var", "x,y")
		require.NoError(t, err)
		assert.Contains(t, out, "- **x:** 2")
		assert.Contains(t, out, "- **y:** 1")
	})

	t.Run("one variable needs one equation", func(t *testing.T) {
		_, _, err := run(t, NewSolveCommand(), "x = 1", "y = 2", "--var", "x")
		require.Error(t, err)
	})

	t.Run("too many variables", func(t *testing.T) {
		_, _, err := run(t, NewSolveCommand(), "x = 1", "--var", "x,y,z")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "one or two names")
	})
}

func TestEvalCommand(t *testing.T) {
	useConfig(t, "")

	out, _, err := run(t, NewEvalCommand(), "x^2 + y^2 = 25", "--at", "x=3,y=4")
	require.NoError(t, err)
	assert.Equal(t, "25 = 25\n", out)

	_, _, err = run(t, NewEvalCommand(), "x + y", "--at", "x=1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dimplot.ErrName))

	_, _, err = run(t, NewEvalCommand(), "x", "--at", "x=abc")
	require.Error(t, err)
}

func TestContourCommand(t *testing.T) {
	useConfig(t, "resolution: 60\n")

	out, _, err := run(t, NewContourCommand(), "x^2 + y^2 = 16")
	require.NoError(t, err)
	assert.Contains(t, out, "# Contour (")
	assert.Contains(t, out, "| # | Points | Closed | Start |")
}

func TestPlotCommand(t *testing.T) {
	useConfig(t, "resolution: 40\n")
	path := filepath.Join(t.TempDir(), "shapes.png")

	out, _, err := run(t, NewPlotCommand(), "x^2 + y^2 = 25", "sum(abs(n)) = 3", "--out", path, "--width", "200", "--height", "200")
	require.NoError(t, err)
	assert.Contains(t, out, "(2 shapes)")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, _, err = run(t, NewPlotCommand(), "x^2 = 1", "--out", filepath.Join(t.TempDir(), "plot.bmp"))
	require.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	useConfig(t, "")

	out, _, err := run(t, NewCheckCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "| circle | ok |")

	cmd := &cobra.Command{RunE: func(cmd *cobra.Command, _ []string) error {
		return runCheck(cmd, []dimplot.Example{{Name: "wrong", Dimension: 2, Input: "sum(n) = 1", Want: "x = 1"}})
	}}
	out, _, err = run(t, cmd)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCheckFailed))
	assert.Contains(t, out, "FAIL")
}

func TestFunctionsCommand(t *testing.T) {
	cfg := useConfig(t, "functions:\n  - Circle(r) = sum(n^2) - r^2\n")
	require.Len(t, cfg.Functions, 1)

	out, _, err := run(t, NewFunctionsCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "# Functions (1)")
	assert.Contains(t, out, "| Circle | r | sum(n^2) - r^2 |")
}

func TestFunctionsCommand_BadLibrary(t *testing.T) {
	useConfig(t, "functions_file: missing.yaml\n")
	_, _, err := run(t, NewFunctionsCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open function library")
}

func TestIdentitiesCommand(t *testing.T) {
	useConfig(t, "dimension: 3\n")

	out, _, err := run(t, NewIdentitiesCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "| Torus |")

	out, _, err = run(t, NewIdentitiesCommand(), "Circle/Sphere", "--param", "r=2")
	require.NoError(t, err)
	assert.Equal(t, "x^2 + y^2 + z^2 = 2^2\n", out)

	_, _, err = run(t, NewIdentitiesCommand(), "Nope")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Contains(t, out, "dimplot v1.2.3")
}
