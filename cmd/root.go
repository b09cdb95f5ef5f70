package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "orrery",
		Short: "Map GitHub repositories onto a procedural solar system",
		Long: `A CLI tool that fetches a GitHub user's public repositories and maps
their metadata onto the parameters of a procedural solar system: sizes
become planet radii, ages become orbits, branches become rings and moons.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScene(cmd, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add scene flags to root command so `orrery` and `orrery scene`
	// work identically
	addSceneFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdScene(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdCache())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}
