// Package dimplot plots implicit equations in the plane, including
// dimension-agnostic templates such as sum(n^2) = 25.
//
// Design goals:
//   - Equation text in, plottable field out
//   - Dimension-agnostic notation: sum, product, max, min and n[i]
//   - User functions defined in the same syntax as equations
//   - Deterministic expansion and stable output
//   - JSON tool interface for agent backends
//
// The pipeline is
//
//	text -> Expand -> symbolic parse -> Lambdify -> contour -> canvas
//
// Expansion is the only stage with its own rules; the later stages live in
// internal/symbolic, internal/contour and internal/render.
package dimplot
