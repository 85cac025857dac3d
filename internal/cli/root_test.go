package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/dimplot/internal/cli/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{
		"version", "expand", "parse", "solve", "eval", "contour", "plot",
		"check", "functions", "identities", "repl", "window",
	} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}

	for _, flag := range []string{"config", "dimension", "define", "functions-file", "watch", "output", "log-level", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestExpandThroughRoot(t *testing.T) {
	out, _, err := execute(t, "expand", "-d", "3", "sum(n^2) = 25")
	require.NoError(t, err)
	assert.Equal(t, "x^2 + y^2 + z^2 = 25\n", out)
}

func TestDefineFlag(t *testing.T) {
	out, _, err := execute(t, "expand",
		"--define", "Circle(r) = sum(n^2) - r^2",
		"--define", "Square(s) = sum(abs(n)) - s",
		"Circle(5) * Square(1) = 0")
	require.NoError(t, err)
	assert.Equal(t, "(x^2 + y^2 - 5^2) * (abs(x) + abs(y) - 1) = 0\n", out)
}

func TestFunctionsFile(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)
	lib := filepath.Join(dir, "lib.yaml")
	require.NoError(t, os.WriteFile(lib, []byte("functions:\n  - Ball(r) = sum(n^2) - r^2\n"), 0600))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"expand", "-d", "3", "--functions-file", lib, "Ball(2) = 0"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "x^2 + y^2 + z^2 - 2^2 = 0\n", out.String())
}

func TestJSONOutput(t *testing.T) {
	out, _, err := execute(t, "-o", "json", "expand", "n[0] + n[1] = 1")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "x + y = 1", got["expanded"])
	assert.Equal(t, float64(2), got["dimension"])
}

func TestErrorsAreReturned(t *testing.T) {
	_, _, err := execute(t, "expand", "n[2] = 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index")

	_, _, err = execute(t, "expand", "-d", "1", "x = 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension must be at least 2")
}

func TestCheckThroughRoot(t *testing.T) {
	out, _, err := execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "examples passed")
}

func TestVersionFlag(t *testing.T) {
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "dimplot "+Version+"\n", out)
}
