// Package compiler wires the scanner, parser, semantic analyzer, and code
// generator into the single pipeline both cmd/ifjc and cmd/ifjd drive.
package compiler

import (
	"io"

	"github.com/ifj24/ifjc/internal/codegen"
	"github.com/ifj24/ifjc/internal/ifjconfig"
	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/ifj24/ifjc/internal/lexer"
	"github.com/ifj24/ifjc/internal/parser"
	"github.com/ifj24/ifjc/internal/sema"
)

// Result is the outcome of one compilation: either Code holds the emitted
// IFJcode24 text and Err is nil, or Err holds the first diagnostic the
// pipeline raised and Code is empty.
type Result struct {
	Code string
	Err  *ifjerr.Error
}

// Compile runs the full pipeline over src and returns either emitted
// IFJcode24 or the first diagnostic raised by any stage. Every stage shares
// one ifjerr.Channel, so whichever stage fails first determines the result;
// later stages are never reached once the channel is set.
func Compile(src io.Reader, cfg ifjconfig.Config) Result {
	ch := &ifjerr.Channel{}

	lx := lexer.New(src, ch)
	prog := parser.Parse(lx, ch)
	if ch.Failed() {
		return Result{Err: ch.Err()}
	}

	global := sema.Analyze(prog, ch)
	if ch.Failed() {
		return Result{Err: ch.Err()}
	}

	code := codegen.Generate(prog, global, ch, cfg.EmitComments)
	if ch.Failed() {
		return Result{Err: ch.Err()}
	}

	return Result{Code: code}
}
