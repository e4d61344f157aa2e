// Package main provides the flightrecorder CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/flightrecorder/flightrecorder/cmd/flightrecorder/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
