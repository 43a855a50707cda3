/*
Ifjc compiles a single L source file (or standard input) to IFJcode24.

Usage:

	ifjc [flags] [FILE]

The flags are:

	-v, --version
		Give the current version of ifjc and then exit.

	-o, --output FILE
		Write emitted IFJcode24 to FILE instead of standard output.

	-c, --config FILE
		Load compiler configuration from the given TOML file.

	--emit-comments
		Annotate emitted IFJcode24 with '#' comments naming the source
		function each block came from.

	-r, --repl
		Start an interactive exploration session (see cmd/ifjc/repl.go)
		instead of compiling a file.

With no FILE argument, ifjc reads the program from standard input. Exit
codes follow the compiler's own classification: 0 on success, 1-10 for a
diagnosed lexical/syntax/semantic error, 99 for an internal error.
*/
package main

import (
	"fmt"
	"os"

	"github.com/ifj24/ifjc/internal/compiler"
	"github.com/ifj24/ifjc/internal/ifjconfig"
	"github.com/ifj24/ifjc/internal/version"
	"github.com/spf13/pflag"
)

var (
	returnCode      int
	flagVersion     = pflag.BoolP("version", "v", false, "gives the version info")
	flagOutput      = pflag.StringP("output", "o", "", "write emitted IFJcode24 to FILE instead of stdout")
	flagConfig      = pflag.StringP("config", "c", "", "load compiler configuration from the given TOML file")
	flagComments    = pflag.Bool("emit-comments", false, "annotate emitted IFJcode24 with source comments")
	flagRepl        = pflag.BoolP("repl", "r", false, "start an interactive exploration session")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := ifjconfig.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: loading config: %s\n", err.Error())
		returnCode = 99
		return
	}
	if *flagComments {
		cfg.EmitComments = true
	}

	if *flagRepl {
		runRepl(cfg)
		return
	}

	var src *os.File
	if pflag.NArg() > 0 {
		src, err = os.Open(pflag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = 99
			return
		}
		defer src.Close()
	} else {
		src = os.Stdin
	}

	result := compiler.Compile(src, cfg)
	if result.Err != nil {
		fmt.Fprintln(os.Stderr, result.Err.FullMessage())
		returnCode = int(result.Err.Code())
		return
	}

	out := os.Stdout
	if *flagOutput != "" {
		f, err := os.Create(*flagOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = 99
			return
		}
		defer f.Close()
		out = f
	}
	fmt.Fprint(out, result.Code)
}
