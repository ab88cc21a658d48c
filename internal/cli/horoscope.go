package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/celestial/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	lookupDate    string
	lookupLang    string
	lookupAI      bool
	lookupJSON    bool
	lookupTimeout time.Duration
)

// horoscopeCmd represents the horoscope command
var horoscopeCmd = &cobra.Command{
	Use:   "horoscope <sign>",
	Short: "Show one sign's horoscope for a day",
	Long: `Horoscope looks up a sign's reading for (date, language): first in the
local batch store, then in the published batch TXT, then in published
per-sign JSON files, and finally, with --ai, from the configured AI
provider.

The sign may be given in English, romanized Hindi or Devanagari.

Example:
  celestial horoscope aries
  celestial horoscope mesh --lang hi --date 2025-01-15
  celestial horoscope मेष --ai --json`,
	Args: cobra.ExactArgs(1),
	RunE: runHoroscope,
}

func init() {
	rootCmd.AddCommand(horoscopeCmd)

	horoscopeCmd.Flags().StringVar(&lookupDate, "date", "", "date YYYY-MM-DD (default: today)")
	horoscopeCmd.Flags().StringVar(&lookupLang, "lang", "", "language en|hi (default: config)")
	horoscopeCmd.Flags().BoolVar(&lookupAI, "ai", false, "generate with the AI provider when nothing is published")
	horoscopeCmd.Flags().BoolVar(&lookupJSON, "json", false, "print JSON instead of text")
	horoscopeCmd.Flags().DurationVar(&lookupTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runHoroscope(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
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

	if lookupAI && !a.generator.IsEnabled() {
		fmt.Fprintf(os.Stderr, "⚠ --ai given but no AI provider is configured (llm.provider)\n")
	}

	result, err := a.service.Lookup(ctx, pipeline.LookupRequest{
		Sign:    args[0],
		Date:    lookupDate,
		Lang:    lookupLang,
		AllowAI: lookupAI,
	})
	if err != nil {
		return err
	}

	record := pipeline.ExportRecord{
		Sign:      result.Sign,
		Horoscope: result.Horoscope,
		Origin:    pipeline.OriginFor(result.Source()),
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%s %s/%s (source: %s)\n\n", result.Sign, result.Date, result.Lang, result.Source())
	}

	if lookupJSON {
		data, err := pipeline.RenderJSON(record)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	return pipeline.RenderTXT(os.Stdout, []pipeline.ExportRecord{record})
}
