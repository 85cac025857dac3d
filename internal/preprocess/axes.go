// Package preprocess rewrites dimension-agnostic equation notation into
// explicit per-axis text before it reaches the symbolic parser.
//
// It supports sum(E(n)), product(E(n)), max(E(n)), min(E(n)), n[i] and calls
// of user-defined functions. Every operation is a pure function of its input
// text, an Axes table and a Functions map.
package preprocess

import (
	"fmt"
	"strconv"
)

// MinDimension is the smallest supported dimension.
const MinDimension = 2

// letterAxes name the first axes. Larger dimensions use n0, n1, ...
var letterAxes = []string{"x", "y", "z", "w", "u", "v"}

// Axes is the ordered axis symbol table for one dimension.
type Axes struct {
	names []string
}

// NewAxes returns the axis table for dim axes.
func NewAxes(dim int) (Axes, error) {
	if dim < MinDimension {
		return Axes{}, fmt.Errorf("dimension must be at least %d, got %d", MinDimension, dim)
	}
	names := make([]string, dim)
	for i := range names {
		if dim <= len(letterAxes) {
			names[i] = letterAxes[i]
		} else {
			names[i] = "n" + strconv.Itoa(i)
		}
	}
	return Axes{names: names}, nil
}

// Dimension returns the number of axes.
func (a Axes) Dimension() int { return len(a.names) }

// Names returns a copy of the axis names in order.
func (a Axes) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Name returns the symbol for axis i.
func (a Axes) Name(i int) (string, bool) {
	if i < 0 || i >= len(a.names) {
		return "", false
	}
	return a.names[i], true
}

// Index returns the position of the named axis, or -1.
func (a Axes) Index(name string) int {
	for i, n := range a.names {
		if n == name {
			return i
		}
	}
	return -1
}
