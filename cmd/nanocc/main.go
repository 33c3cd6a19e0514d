package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/agenthands/nanocc/pkg/compiler/lexer"
	"github.com/agenthands/nanocc/pkg/compiler/parser"
	"github.com/agenthands/nanocc/pkg/vm"
)

// Each stage maps to its own exit status so scripts can tell failures apart.
const (
	exitUsage   = 1
	exitLex     = 2
	exitParse   = 3
	exitRuntime = 4
)

func main() {
	gasLimit := flag.Int("gas", vm.DefaultGas, "Maximum instruction limit")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: nanocc [-gas limit] <source.c>")
		os.Exit(exitUsage)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(exitUsage)
	}

	bc, err := parser.Compile(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		var lexErr *lexer.LexError
		if errors.As(err, &lexErr) {
			os.Exit(exitLex)
		}
		os.Exit(exitParse)
	}

	m := vm.New()
	m.Code = bc.Instructions
	m.Constants = bc.Constants

	res, err := m.Run(*gasLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(exitRuntime)
	}

	fmt.Println(res.Format())
}
