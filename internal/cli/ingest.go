package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ppiankov/celestial/internal/worker"
	"github.com/spf13/cobra"
)

var (
	ingestDate    string
	ingestLang    string
	ingestList    string
	ingestWorkers int
	ingestTimeout time.Duration
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Parse batch documents and store them by date and language",
	Long: `Ingest parses daily batch documents (TXT, RTF or HTML) into one record
per zodiac sign and stores them under (date, language).

Date and language are taken from the filename when present
("2025-01-15_hi.txt"); --date and --lang override them. A document that
yields no sign blocks is rejected.

Example:
  celestial ingest 2025-01-15_en.txt
  celestial ingest rashifal.rtf --date 2025-01-15 --lang hi
  celestial ingest --list uploads.lst`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "batch date YYYY-MM-DD (overrides filename)")
	ingestCmd.Flags().StringVar(&ingestLang, "lang", "", "batch language en|hi (overrides filename)")
	ingestCmd.Flags().StringVar(&ingestList, "list", "", "file listing documents to ingest, one per line")
	ingestCmd.Flags().IntVar(&ingestWorkers, "concurrency", 1, "number of documents parsed concurrently")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && ingestList == "" {
		return fmt.Errorf("no documents given (pass files or --list)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
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

	processor := worker.NewIngestProcessor(a.service, ingestWorkers)

	results := processor.ProcessPaths(ctx, args, ingestDate, ingestLang)
	if ingestList != "" {
		listed, err := processor.ProcessFile(ctx, ingestList, ingestDate, ingestLang)
		if err != nil {
			return err
		}
		results = append(results, listed...)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	failures := 0
	for _, res := range results {
		if res.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Path, res.Error)
			continue
		}

		r := res.Result
		fmt.Fprintf(os.Stderr, "✓ %s → %s/%s: %d signs\n", res.Path, r.Date, r.Lang, len(r.Signs))
		if verbose {
			fmt.Fprintf(os.Stderr, "    id: %s, blocks: %d, signs: %v\n", r.ID, r.Blocks, r.Signs)
		}
		for _, token := range r.Dropped {
			fmt.Fprintf(os.Stderr, "    ⚠ dropped block %q\n", token)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed", failures, len(results))
	}
	return nil
}
