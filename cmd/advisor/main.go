// Command advisor is the command-line client for the recommendation service.
package main

import (
	"os"

	"github.com/turtacn/netellus-advisor/internal/interfaces/cli"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
