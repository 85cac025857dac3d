package dimplot

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/dimplot/internal/preprocess"
)

// ============================================================
// Function libraries
// ============================================================

// A library file lists definitions under "functions", either as source text
// or spelled out:
//
//	functions:
//	  - Circle(r) = sum(n^2) - r^2
//	  - name: Ring
//	    params: [a, b]
//	    body: Circle(b) * Circle(a)
type libraryFile struct {
	Functions []libraryEntry `yaml:"functions"`
}

type libraryEntry struct {
	def Definition
}

func (e *libraryEntry) UnmarshalYAML(node *yaml.Node) error {
	var text string
	switch node.Kind {
	case yaml.ScalarNode:
		text = node.Value
	case yaml.MappingNode:
		var d Definition
		if err := node.Decode(&d); err != nil {
			return err
		}
		text = d.String()
	default:
		return fmt.Errorf("line %d: expected a definition string or mapping", node.Line)
	}
	def, ok, err := preprocess.ParseDefinition(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	if !ok {
		return fmt.Errorf("line %d: %q is not a function definition", node.Line, text)
	}
	e.def = def
	return nil
}

// LoadLibrary reads a YAML function library. An empty document is an empty
// library.
func LoadLibrary(r io.Reader) ([]Definition, error) {
	var f libraryFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("function library: %w", err)
	}
	defs := make([]Definition, len(f.Functions))
	for i, e := range f.Functions {
		defs[i] = e.def
	}
	return defs, nil
}

// DefineAll adds every definition, replacing existing ones of the same name.
func (env *Environment) DefineAll(defs []Definition) {
	for _, d := range defs {
		env.fns[d.Name] = d
	}
	env.logger.Debug("functions loaded", "count", len(defs))
}

// DefineLines defines each line of text that is not blank or a comment
// ("#"). It stops at the first line that fails.
func (env *Environment) DefineLines(lines ...string) error {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, err := env.Define(line); err != nil {
			return fmt.Errorf("define %q: %w", line, err)
		}
	}
	return nil
}
