// Package diag defines the error kinds reported while turning equation text
// into a plottable function.
package diag

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindSyntax Kind = iota + 1
	KindName
	KindIndex
	KindBackend
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	// ErrSyntax indicates malformed input: unbalanced brackets, a malformed
	// call, or text the parser rejects.
	ErrSyntax = errors.New("syntax error")

	// ErrName indicates a call to a function that is neither built in nor
	// user defined, or a symbol with no value.
	ErrName = errors.New("name error")

	// ErrIndex indicates an axis index outside the current dimension.
	ErrIndex = errors.New("index error")

	// ErrBackend indicates a solve or evaluation failure in the symbolic layer.
	ErrBackend = errors.New("backend error")
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindName:
		return "name"
	case KindIndex:
		return "index"
	case KindBackend:
		return "backend"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindSyntax:
		return ErrSyntax
	case KindName:
		return ErrName
	case KindIndex:
		return ErrIndex
	case KindBackend:
		return ErrBackend
	}
	return nil
}

// Error carries the kind, the byte offset into the source text (-1 when not
// applicable) and an optional underlying cause.
type Error struct {
	Kind  Kind
	Pos   int
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	prefix := "error"
	if s := e.Kind.sentinel(); s != nil {
		prefix = s.Error()
	}
	if e.Pos >= 0 {
		prefix = fmt.Sprintf("%s at %d", prefix, e.Pos)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Msg)
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error { return e.Cause }

// Syntaxf builds a syntax error at pos.
func Syntaxf(pos int, format string, args ...any) *Error {
	return &Error{Kind: KindSyntax, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Namef builds a name error at pos.
func Namef(pos int, format string, args ...any) *Error {
	return &Error{Kind: KindName, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Indexf builds an index error at pos.
func Indexf(pos int, format string, args ...any) *Error {
	return &Error{Kind: KindIndex, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Backend wraps a failure from the symbolic layer, keeping its text.
func Backend(msg string, cause error) *Error {
	return &Error{Kind: KindBackend, Pos: -1, Msg: msg, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
