package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orrery-cli/orrery/internal/cache"
)

// NewCmdCache creates the cache command with subcommands.
func NewCmdCache() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the repository metadata cache",
	}

	cmd.AddCommand(newCmdCacheClear())
	cmd.AddCommand(newCmdCacheStats())

	return cmd
}

// newCmdCacheClear creates the cache clear subcommand.
func newCmdCacheClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the repository metadata cache",
		RunE:  runCacheClear,
	}
}

// newCmdCacheStats creates the cache stats subcommand.
func newCmdCacheStats() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE:  runCacheStats,
	}
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := cache.NewStore()
	if err != nil {
		return fmt.Errorf("failed to access cache: %w", err)
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Println("Cache cleared.")
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := cache.NewStore()
	if err != nil {
		return fmt.Errorf("failed to access cache: %w", err)
	}

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to get cache stats: %w", err)
	}

	fmt.Printf("Cache statistics:\n")
	fmt.Printf("  Repository lists (TTL: 1h):\n")
	fmt.Printf("    Total: %d\n", stats.BasicTotal)
	fmt.Printf("    Valid: %d\n", stats.BasicValid)
	fmt.Printf("    Expired: %d\n", stats.BasicTotal-stats.BasicValid)
	fmt.Printf("  Repository details (TTL: 24h):\n")
	fmt.Printf("    Total: %d\n", stats.DetailTotal)
	fmt.Printf("    Valid: %d\n", stats.DetailValid)
	fmt.Printf("    Expired: %d\n", stats.DetailTotal-stats.DetailValid)
	return nil
}
