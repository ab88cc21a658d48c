package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/celestial/internal/extract"
	"github.com/ppiankov/celestial/internal/model"
	"github.com/ppiankov/celestial/internal/pipeline"
	"github.com/ppiankov/celestial/internal/worker"
	"github.com/spf13/cobra"
)

var (
	exportDate    string
	exportLang    string
	exportFormat  string
	exportOut     string
	exportAI      bool
	exportSigns   []string
	exportWorkers int
	exportTimeout time.Duration
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a day's horoscopes for all signs",
	Long: `Export looks up every zodiac sign for (date, language) and writes the
results either as one batch TXT (<date>_<lang>.txt) that can be ingested
again, or as one JSON file per sign (<date>_<Sign>_<lang>.json).

Signs with no stored or published reading are generated with the AI
provider when --ai is given; each sign reports whether it was found
locally or generated.

Example:
  celestial export --date 2025-01-15
  celestial export --lang hi --format json --out ./exports
  celestial export --ai --signs aries,leo`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDate, "date", "", "date YYYY-MM-DD (default: today)")
	exportCmd.Flags().StringVar(&exportLang, "lang", "", "language en|hi (default: config)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format txt|json (default: config)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory (default: config)")
	exportCmd.Flags().BoolVar(&exportAI, "ai", false, "generate missing signs with the AI provider")
	exportCmd.Flags().StringSliceVar(&exportSigns, "signs", nil, "limit export to these signs (default: all twelve)")
	exportCmd.Flags().IntVar(&exportWorkers, "concurrency", 0, "number of concurrent lookups (default: config)")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 10*time.Minute, "overall timeout")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if exportFormat != "" {
		cfg.Output.Format = exportFormat
	}
	if exportOut != "" {
		cfg.Output.Dir = exportOut
	}
	if exportWorkers > 0 {
		cfg.Concurrency.Workers = exportWorkers
	}
	format := strings.ToLower(cfg.Output.Format)
	if format != "txt" && format != "json" {
		return fmt.Errorf("unknown format: %s (supported: txt, json)", cfg.Output.Format)
	}

	signs, err := parseSigns(exportSigns)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	date := exportDate
	if date == "" {
		date = a.service.Today()
	}
	lang := strings.ToLower(exportLang)
	if lang == "" {
		lang = cfg.Defaults.Language
	}

	if exportAI && !a.generator.IsEnabled() {
		fmt.Fprintf(os.Stderr, "⚠ --ai given but no AI provider is configured (llm.provider)\n")
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Celestial Export\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Date:         %s\n", date)
	fmt.Fprintf(os.Stderr, "  Language:     %s\n", lang)
	fmt.Fprintf(os.Stderr, "  Format:       %s\n", format)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	if a.generator.IsEnabled() && exportAI {
		fmt.Fprintf(os.Stderr, "  AI:           %s\n", a.generator.ProviderName())
	}
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewExportProcessor(a.service, cfg.Concurrency.Workers)
	report := processor.Process(ctx, date, lang, signs, exportAI)

	for _, rec := range report.Records {
		fmt.Fprintf(os.Stderr, "✓ %-12s %s\n", rec.Sign, rec.Origin)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "✗ Failed to generate/find data for %s: %v\n", f.Sign, f.Error)
	}

	if len(report.Records) == 0 {
		return fmt.Errorf("nothing to export for %s/%s", date, lang)
	}

	renderer := pipeline.NewRenderer(cfg.Output.Dir)
	var written []string
	if format == "json" {
		written, err = renderer.WriteJSON(date, lang, report.Records)
	} else {
		var path string
		path, err = renderer.WriteTXT(date, lang, report.Records)
		written = []string{path}
	}
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Exported:  %d signs\n", len(report.Records))
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", len(report.Failures))
	for _, path := range written {
		fmt.Fprintf(os.Stderr, "  Wrote:     %s\n", path)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// parseSigns resolves --signs tokens; empty means all twelve
func parseSigns(tokens []string) ([]model.Sign, error) {
	var signs []model.Sign
	for _, token := range tokens {
		sign, ok := extract.ResolveSign(token)
		if !ok || !sign.IsCanonical() {
			return nil, fmt.Errorf("unknown sign: %q", token)
		}
		signs = append(signs, sign)
	}
	return signs, nil
}
