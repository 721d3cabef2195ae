package main

import (
	"fmt"
	"os"

	"github.com/temirov/telescope/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the telescope command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(cli.ExitCodeFor(executionError))
	}
}
