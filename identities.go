package dimplot

import (
	_ "embed"
	"fmt"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/dimplot/internal/diag"
	"github.com/njchilds90/dimplot/internal/preprocess"
)

// ============================================================
// Identity library
// ============================================================

//go:embed identities.yaml
var identitiesYAML []byte

// Identity is a named dimension-agnostic shape with default parameters.
type Identity struct {
	Name        string             `json:"name" yaml:"name"`
	Expr        string             `json:"expr" yaml:"expr"`
	Params      map[string]float64 `json:"params,omitempty" yaml:"params"`
	Description string             `json:"description" yaml:"description"`
	MinDim      int                `json:"min_dim,omitempty" yaml:"min_dim"`
}

// MinDimension is the smallest dimension the identity can be expanded in.
func (id Identity) MinDimension() int {
	if id.MinDim < preprocess.MinDimension {
		return preprocess.MinDimension
	}
	return id.MinDim
}

var identities = sync.OnceValues(func() ([]Identity, error) {
	var ids []Identity
	if err := yaml.Unmarshal(identitiesYAML, &ids); err != nil {
		return nil, fmt.Errorf("identities.yaml: %w", err)
	}
	return ids, nil
})

// Identities returns the built-in identity library in its defined order.
func Identities() []Identity {
	ids, err := identities()
	if err != nil {
		panic(err)
	}
	return append([]Identity(nil), ids...)
}

// LookupIdentity finds an identity by its exact name.
func LookupIdentity(name string) (Identity, bool) {
	for _, id := range Identities() {
		if id.Name == name {
			return id, true
		}
	}
	return Identity{}, false
}

// ExpandIdentity expands the named identity in dim dimensions. params
// override the identity's defaults; unknown parameter names are ignored.
func ExpandIdentity(name string, dim int, params map[string]float64) (string, error) {
	id, ok := LookupIdentity(name)
	if !ok {
		return "", diag.Namef(-1, "unknown identity %q", name)
	}
	return id.Expand(dim, params)
}

// Expand substitutes the parameters and expands the identity in dim
// dimensions.
func (id Identity) Expand(dim int, params map[string]float64) (string, error) {
	if dim < id.MinDimension() {
		return "", diag.Indexf(-1, "%s needs at least %d dimensions, have %d", id.Name, id.MinDimension(), dim)
	}
	axes, err := preprocess.NewAxes(dim)
	if err != nil {
		return "", err
	}
	values := make(map[string]string, len(id.Params))
	for k, v := range id.Params {
		values[k] = formatParam(v)
	}
	for k, v := range params {
		if _, known := id.Params[k]; known {
			values[k] = formatParam(v)
		}
	}
	return preprocess.Expand(preprocess.Substitute(id.Expr, values), axes, nil)
}

func formatParam(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// Identity expands the named identity in the environment's dimension.
func (env *Environment) Identity(name string, params map[string]float64) (string, error) {
	return ExpandIdentity(name, env.Dimension(), params)
}
