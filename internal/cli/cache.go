package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local batch store",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored batch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(context.Background(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.cache.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}

		fmt.Printf("✓ Cleared batch store (%s backend)\n", cfg.Cache.Backend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
