/*
Ifjdump is a developer aid for stepping through emitted IFJcode24 one
instruction at a time, to sanity-check codegen output by eye. It is not part
of the compile pipeline.

Usage:

	ifjdump FILE

Once loaded, it opens an interactive session: "n" or a blank line advances
to the next instruction, "l" relists the window around the current
position, "g LABEL" jumps to a label, and ":q" exits.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ifj24/ifjc/internal/input"
)

type program struct {
	lines  []string
	labels map[string]int
}

func loadProgram(path string) (*program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := &program{labels: make(map[string]int)}
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimRight(raw, "\r")
		p.lines = append(p.lines, line)

		fields := strings.Fields(line)
		if len(fields) == 2 && strings.EqualFold(fields[0], "LABEL") {
			p.labels[fields[1]] = len(p.lines) - 1
		}
	}
	return p, nil
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ifjdump FILE")
		os.Exit(1)
	}

	p, err := loadProgram(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}

	rl, err := input.NewInteractiveReader("ifjdump> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}
	rl.AllowBlank(true)
	defer rl.Close()

	pos := 0
	printWindow(p, pos)

	for {
		line, err := rl.ReadLine()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			os.Exit(1)
		}

		fields := strings.Fields(line)
		cmd := ""
		if len(fields) > 0 {
			cmd = fields[0]
		}

		switch cmd {
		case "", "n":
			if pos < len(p.lines)-1 {
				pos++
			}
			printWindow(p, pos)
		case "l":
			printWindow(p, pos)
		case "g":
			if len(fields) != 2 {
				fmt.Println("usage: g LABEL")
				continue
			}
			target, ok := p.labels[fields[1]]
			if !ok {
				fmt.Printf("no such label: %s\n", fields[1])
				continue
			}
			pos = target
			printWindow(p, pos)
		case ":q", "q":
			return
		default:
			fmt.Printf("unrecognized command: %s\n", cmd)
		}
	}
}

func printWindow(p *program, pos int) {
	const radius = 3
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius
	if end > len(p.lines)-1 {
		end = len(p.lines) - 1
	}

	for i := start; i <= end; i++ {
		marker := "  "
		if i == pos {
			marker = "->"
		}
		fmt.Printf("%s %4s %s\n", marker, strconv.Itoa(i), p.lines[i])
	}
}
