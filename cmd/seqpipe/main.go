// Package main provides the entry point for the seqpipe CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/seqpipe/cmd/seqpipe/commands"
	"github.com/Sumatoshi-tech/seqpipe/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
