// Command solarforth runs solar-forth programs from files, from a
// pipe, or interactively.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/RickCarlino/solar-forth/internal/logx"
	"github.com/RickCarlino/solar-forth/internal/uv"
	"github.com/RickCarlino/solar-forth/internal/vm"
)

func main() {
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.BoolVar(debugFlag, "v", false, "enable debug logging (short)")
	flag.Usage = showUsage
	flag.Parse()

	log := logx.New(*debugFlag)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	it := vm.New(out)
	binder := uv.NewBinder(log)
	binder.Bind(it.Dict)

	files := flag.Args()
	if len(files) == 0 {
		runInteractive(it, log)
		return
	}

	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			log.Error("reading %s: %v", path, err)
			os.Exit(1)
		}
		if err := it.Run(vm.Tokenize(src)); err != nil {
			log.Error("%v", err)
			os.Exit(2)
		}
		out.Flush()
	}
}

// runInteractive feeds stdin one line at a time into the same
// persistent Interp, so a `:` definition may span several lines before
// its closing `;` — Interp.Compiling reports that state across calls.
func runInteractive(it *vm.Interp, log *logx.Logger) {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	scanner := bufio.NewScanner(os.Stdin)

	if interactive {
		fmt.Print("> ")
	}
	for scanner.Scan() {
		if err := it.Run(vm.Tokenize(scanner.Bytes())); err != nil {
			log.Error("%v", err)
			os.Exit(2)
		}
		if !it.Running() {
			return
		}
		if interactive {
			if it.Compiling() {
				fmt.Print("  ")
			} else {
				fmt.Print("> ")
			}
		}
	}
}

func showUsage() {
	usage := `Usage: solarforth [options] [file ...]
       solarforth [options] < input.fs

Run solar-forth source files, or start an interactive prompt when no
file is given and stdin is a terminal.

Options:
  -v, -debug   enable debug logging
`
	fmt.Fprint(os.Stderr, usage)
}
