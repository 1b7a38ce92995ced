// Package main provides the entry point for zpipe.
//
// zpipe publishes and subscribes to ZeroMQ topics from the command line.
package main

import (
	"os"

	"github.com/yndnr/zpipe/internal/cli/command"
)

func main() {
	app := command.App()
	os.Exit(command.ReportError(os.Stderr, app.Run(os.Args)))
}
