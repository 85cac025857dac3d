package dimplot

import "github.com/njchilds90/dimplot/internal/diag"

// Error is the error type returned by every stage of the pipeline.
type Error = diag.Error

// Kind classifies an Error.
type Kind = diag.Kind

const (
	KindSyntax  = diag.KindSyntax
	KindName    = diag.KindName
	KindIndex   = diag.KindIndex
	KindBackend = diag.KindBackend
)

// Sentinels for errors.Is.
var (
	ErrSyntax  = diag.ErrSyntax
	ErrName    = diag.ErrName
	ErrIndex   = diag.ErrIndex
	ErrBackend = diag.ErrBackend
)

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind { return diag.KindOf(err) }
