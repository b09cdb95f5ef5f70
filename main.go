package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/orrery-cli/orrery/cmd"
)

// Version information, set via ldflags at build time.
var (
	version string
	commit  string
	date    string
)

func main() {
	// Load GITHUB_TOKEN and friends from a local .env if present.
	_ = godotenv.Load()

	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
