package main

import (
	"fmt"
	"os"

	"github.com/Makepad-fr/tada/internal/cli"
)

func main() {
	// Hand everything after the program name to the CLI runner.
	code := cli.Main(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Environ())
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
