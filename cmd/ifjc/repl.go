package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ifj24/ifjc/internal/compiler"
	"github.com/ifj24/ifjc/internal/ifjconfig"
	"github.com/ifj24/ifjc/internal/input"
)

// runRepl drives an interactive exploration session: the user types an
// entire L program (prolog included), terminated by a blank line or ":run",
// and the session immediately compiles and prints the result, keeping the
// readline history across attempts. ":quit" exits.
func runRepl(cfg ifjconfig.Config) {
	rl, err := input.NewInteractiveReader("ifjc> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = 99
		return
	}
	rl.AllowBlank(true)
	defer rl.Close()

	var buf strings.Builder
	for {
		line, err := rl.ReadLine()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = 99
			return
		}

		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case ":quit", ":q":
			return
		case ":run", "":
			if buf.Len() == 0 {
				continue
			}
			result := compiler.Compile(strings.NewReader(buf.String()), cfg)
			if result.Err != nil {
				fmt.Println(result.Err.FullMessage())
			} else {
				fmt.Print(result.Code)
			}
			buf.Reset()
			continue
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
	}
}
