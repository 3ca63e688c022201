package main

import (
	"fmt"
	"os"

	"github.com/shieldworks/protect/internal/cli"
	"github.com/shieldworks/protect/internal/config"
)

// Set via -ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	config.SetBuildFlags(version, commit, date)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
