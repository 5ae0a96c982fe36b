package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"marks/internal/usecase"
)

var enrichLimit int

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill in missing descriptions and tags",
	Long: `Fetch each unenriched bookmark's page and ask the language model for a
description and tags, filling only the fields that are empty. Requests
are rate limited. Ctrl-C stops between items and saves what finished.

Examples:
  marks enrich
  marks enrich --limit 10`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.Flags().IntVarP(&enrichLimit, "limit", "l", 0, "maximum bookmarks to enrich (0 = all)")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	pending := 0
	for _, b := range a.service.Bookmarks() {
		if !b.IsEnriched() {
			pending++
		}
	}
	if pending == 0 {
		fmt.Println("All bookmarks are already enriched.")
		return nil
	}
	total := pending
	if enrichLimit > 0 && enrichLimit < total {
		total = enrichLimit
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enricher := usecase.NewEnricher(a.service, a.fetcher, a.generator, a.cfg.Processing.RequestsPerSecond)

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Enriching"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	summary := enricher.EnrichAll(ctx, enrichLimit, func(done, total int) {
		bar.Set(done)
	})
	if summary.Interrupted {
		fmt.Println("\nInterrupted, saving partial results...")
	}

	if len(summary.Enriched) > 0 {
		a.backupCollection()
		if err := saveCollection(a); err != nil {
			return fmt.Errorf("failed to save enriched bookmarks: %w", err)
		}
	}

	fmt.Printf("\nEnriched: %d\n", len(summary.Enriched))
	if n := len(summary.AlreadyEnriched); n > 0 {
		fmt.Printf("Already enriched: %d\n", n)
	}
	if n := len(summary.SkippedNoURL); n > 0 {
		fmt.Printf("Skipped (no URL): %d\n", n)
	}
	if n := len(summary.FetchFailures); n > 0 {
		fmt.Printf("Page fetch failures: %d\n", n)
	}
	if len(summary.Failures) > 0 {
		fmt.Printf("Failures: %d\n", len(summary.Failures))
		for _, f := range summary.Failures {
			fmt.Printf("  - %s\n", f)
		}
	}
	return nil
}

// saveCollection writes the in-memory bookmarks back to disk, grouped
// by source file for directories or as a single file otherwise.
func saveCollection(a *app) error {
	info, err := os.Stat(a.path)
	if err == nil && info.IsDir() {
		return a.loader.SaveBySource(a.service.Bookmarks(), a.path)
	}
	return a.loader.SaveFile(a.service.Bookmarks(), a.path)
}
