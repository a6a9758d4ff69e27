// Package errors provides error handling for neatgen.
//
// This package re-exports github.com/cockroachdb/errors and adds context
// frames: every nested operation of a conversion (scanning a scope, rendering
// a type, resolving a namespace) wraps a failure with a human readable
// "while doing X" frame before returning it. The frames do not change the
// error message; use Frames or Describe to read them back.
//
// Usage:
//
//	if err != nil {
//	    return errors.WithFrame(err, "while rendering type %s", idx)
//	}
//
//	// internal-consistency failures abort the current artifact
//	return errors.AssertionFailedf("placeholder type %s has no elaboration", idx)
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
	Join         = crdb.Join
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is         = crdb.Is
	IsAny      = crdb.IsAny
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
)

// Assertions mark internal-consistency failures.
var (
	AssertionFailedf    = crdb.AssertionFailedf
	HasAssertionFailure = crdb.HasAssertionFailure
)

// Sentinel errors, use with errors.Is.
var (
	// ErrUnsupported marks inputs the generator deliberately refuses, such as
	// module units other than primary interface units.
	ErrUnsupported = New("unsupported input")

	// ErrEnvironment marks failures caused by the surroundings of a
	// conversion: missing or misnamed input, unwritable output.
	ErrEnvironment = New("environment failure")
)

// withFrame records one context frame on top of a cause.
type withFrame struct {
	cause error
	frame string
}

func (w *withFrame) Error() string { return w.cause.Error() }
func (w *withFrame) Cause() error  { return w.cause }
func (w *withFrame) Unwrap() error { return w.cause }

func (w *withFrame) Format(s fmt.State, verb rune) { crdb.FormatError(w, s, verb) }

func (w *withFrame) FormatError(p crdb.Printer) error {
	if p.Detail() {
		p.Printf("%s", w.frame)
	}
	return w.cause
}

// WithFrame attaches a context frame to err. A nil err stays nil.
func WithFrame(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &withFrame{cause: err, frame: fmt.Sprintf(format, args...)}
}

// Frames returns the context frames recorded on err, innermost first.
func Frames(err error) []string {
	var frames []string
	for ; err != nil; err = UnwrapOnce(err) {
		if w, ok := err.(*withFrame); ok {
			frames = append(frames, w.frame)
		}
	}
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return frames
}

// Describe renders err followed by its context frames, one per line,
// innermost first.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(err.Error())
	for _, f := range Frames(err) {
		sb.WriteString("\n  ")
		sb.WriteString(f)
	}
	return sb.String()
}
