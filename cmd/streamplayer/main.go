// Package main is the entry point for the streamplayer command.
package main

import (
	"os"

	"github.com/opd-ai/streamplayer/cmd/streamplayer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
