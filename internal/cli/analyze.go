package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"marks/internal/usecase"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the bookmark collection",
	Long:  `Print collection statistics: enrichment coverage, top domains, top tags, and per-file distribution.`,
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	analysis := usecase.Analyze(a.service.Bookmarks())
	if analysis.Total == 0 {
		fmt.Println("No bookmarks to analyze.")
		return nil
	}

	fmt.Printf("Total bookmarks: %d\n", analysis.Total)
	fmt.Printf("Enriched: %d (%.1f%%)\n", analysis.Enriched, analysis.EnrichmentPercent)
	fmt.Printf("Unique domains: %d\n", analysis.UniqueDomains)
	fmt.Printf("Unique tags: %d\n", analysis.UniqueTags)
	fmt.Printf("Files: %d\n", analysis.Files)

	fmt.Println("\nTop domains:")
	for _, d := range analysis.TopDomains {
		fmt.Printf("  %s: %d\n", d.Name, d.Count)
	}

	fmt.Println("\nTop tags:")
	limit := len(analysis.TopTags)
	if limit > 10 {
		limit = 10
	}
	for _, t := range analysis.TopTags[:limit] {
		fmt.Printf("  %s: %d\n", t.Name, t.Count)
	}
	return nil
}
