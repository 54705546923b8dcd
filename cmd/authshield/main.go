package main

import (
	"os"

	"github.com/MrEthical07/authshield/internal/cmd"
)

// Set via ldflags, e.g. -X main.version=1.0.0.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
