// Command gapintel is the operator CLI for the gap-analysis platform.
package main

import (
	"os"

	"github.com/searchlens/gapintel/internal/interfaces/cli"
)

// Populated at build time via -ldflags.
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
