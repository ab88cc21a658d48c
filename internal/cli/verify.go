package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	verifyDate    string
	verifyTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the storage host publishes a batch for a day",
	Long: `Verify sends HEAD requests for the English batch TXT of a day to the
configured storage host and reports which path, if any, exists.

Example:
  celestial verify
  celestial verify --date 2025-01-15`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyDate, "date", "", "date YYYY-MM-DD (default: today)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 30*time.Second, "overall timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.fetcher == nil {
		return fmt.Errorf("storage is disabled (storage.enabled / storage.base_url)")
	}

	date := verifyDate
	if date == "" {
		date = a.service.Today()
	}

	for _, line := range a.fetcher.Verify(ctx, date) {
		fmt.Println(line)
	}
	return nil
}
