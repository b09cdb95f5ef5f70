package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build identity, stamped through -ldflags at release time. The zero
// values identify a local development build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo overrides the build identity; main passes the values
// it was linked with. Empty arguments keep the defaults.
func SetVersionInfo(v, c, d string) {
	if v != "" {
		version = v
	}
	if c != "" {
		commit = c
	}
	if d != "" {
		date = d
	}
}

// NewCmdVersion creates the version command.
func NewCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the orrery version and build metadata",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("orrery %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}
