// Package ifjerr holds the compiler's typed, stickable error channel.
//
// Its shape is modeled on the teacher's server/serr and internal/tqerrors
// packages: a small typed Error that carries both a human-readable message
// and a classification, compatible with errors.Is/As, plus a per-compilation
// "first writer wins" Channel used across the whole compilation pipeline so
// that the earliest, lowest-layer diagnosis always survives later, less
// specific failures.
package ifjerr

import (
	"errors"
	"fmt"

	"github.com/dekarrin/rosed"
)

// Code is one of the ten classification codes from the compiler's exit-code
// contract, plus Internal. The numeric value of each Code IS the process
// exit code; cmd/ifjc relies on that equivalence directly.
type Code int

const (
	OK           Code = 0
	Lexical      Code = 1
	Syntax       Code = 2
	Undefined    Code = 3
	Params       Code = 4
	Redefinition Code = 5
	Return       Code = 6
	TypeCompat   Code = 7
	TypeDeriv    Code = 8
	UnusedVar    Code = 9
	OtherSem     Code = 10
	Internal     Code = 99
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Undefined:
		return "undefined name"
	case Params:
		return "parameter/return-discard error"
	case Redefinition:
		return "redefinition"
	case Return:
		return "return-shape mismatch"
	case TypeCompat:
		return "type incompatibility"
	case TypeDeriv:
		return "type-inference failure"
	case UnusedVar:
		return "unused variable"
	case OtherSem:
		return "other semantic error"
	case Internal:
		return "internal error"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error is the typed error value returned by every fallible stage of the
// pipeline. It works with errors.Is/As because Unwrap exposes the
// underlying cause, if any, exactly the way server/serr.Error does in the
// teacher.
type Error struct {
	code    Code
	msg     string
	line    int
	col     int
	line_   string // the offending source line, for FullMessage
	wrapped error
}

// New creates an Error of the given classification with the given message.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(code Code, format string, a ...any) *Error {
	return New(code, fmt.Sprintf(format, a...))
}

// At attaches a source position to the error for diagnostic rendering. It
// returns the receiver for chaining: ifjerr.New(...).At(line, col, src).
func (e *Error) At(line, col int, sourceLine string) *Error {
	e.line, e.col, e.line_ = line, col, sourceLine
	return e
}

// Wrap sets the underlying cause of e, for errors.Is/As compatibility.
func (e *Error) Wrap(cause error) *Error {
	e.wrapped = cause
	return e
}

func (e *Error) Error() string {
	if e.line == 0 {
		return fmt.Sprintf("%s: %s", e.code, e.msg)
	}
	return fmt.Sprintf("%s: around line %d, char %d: %s", e.code, e.line, e.col, e.msg)
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// Code returns the error's classification.
func (e *Error) Code() Code {
	return e.code
}

// FullMessage renders the error with its offending source line and a cursor
// underneath it, word-wrapped to a terminal-friendly width using rosed the
// same way the teacher wraps long in-game prose in tunascript/syntax.
func (e *Error) FullMessage() string {
	body := rosed.Edit(e.Error()).Wrap(100).String()
	if e.line_ == "" {
		return body
	}
	cursor := ""
	for i := 0; i < e.col-1; i++ {
		cursor += " "
	}
	cursor += "^"
	return rosed.Edit(e.line_).Wrap(100).String() + "\n" + cursor + "\n" + body
}

// Channel is the per-compilation, first-writer-wins sticky error sentinel
// described in spec.md §5/§7. Unlike the original C compiler, which used a
// single mutable global, Channel is an explicit value threaded through the
// pipeline stages (internal/compiler owns the single instance used for a
// given compilation) so that two compilations never interfere and so the
// channel is trivially testable in isolation.
type Channel struct {
	err *Error
}

// Set records err as the channel's value if and only if no error has been
// recorded yet. Later calls are no-ops: the first non-nil error wins.
func (c *Channel) Set(err *Error) {
	if c.err == nil && err != nil {
		c.err = err
	}
}

// Err returns the first error recorded, or nil if the channel is still
// neutral (NO_ERROR).
func (c *Channel) Err() *Error {
	return c.err
}

// Failed reports whether the channel has moved off NO_ERROR.
func (c *Channel) Failed() bool {
	return c.err != nil
}

// ExitCode returns the numeric exit code the CLI should use: 0 if the
// channel is still neutral, otherwise the recorded error's Code.
func (c *Channel) ExitCode() int {
	if c.err == nil {
		return int(OK)
	}
	return int(c.err.code)
}

// As is a convenience wrapper over the standard errors.As for callers that
// receive a plain `error` from a function signature but want the typed Code.
func As(err error) (*Error, bool) {
	var ie *Error
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
