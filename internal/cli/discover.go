package cli

import (
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"marks/internal/usecase"
)

var discoverKMeans int

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover new categories by clustering",
	Long: `Embed the whole collection, cluster the vectors, and ask the language
model to name each cluster. Density-based clustering runs first; if it
finds too little structure, bounded k-means takes over.

Examples:
  marks discover
  marks discover --kmeans 5   # Force k-means with exactly 5 clusters`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().IntVar(&discoverKMeans, "kmeans", 0, "force k-means with this many clusters (0 = auto)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	bookmarks := a.service.Bookmarks()
	if len(bookmarks) == 0 {
		fmt.Println("No bookmarks to cluster.")
		return nil
	}

	discoverer := usecase.NewDiscoverer(a.embedder, a.generator)
	discoverer.ForceK = discoverKMeans

	bar := progressbar.NewOptions(len(bookmarks),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Embedding"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	suggestions := discoverer.Discover(bookmarks, func(done, total int) {
		bar.Set(done)
	})

	if len(suggestions) == 0 {
		fmt.Println("No category suggestions found.")
		return nil
	}

	fmt.Printf("\n%d category suggestions:\n", len(suggestions))
	for i, s := range suggestions {
		fmt.Printf("\n%d. %s (%d bookmarks)\n", i+1, s.Name, s.Size)
		if s.Description != "" {
			fmt.Printf("   %s\n", s.Description)
		}
		if len(s.SourceFiles) > 0 {
			fmt.Printf("   From: %s\n", strings.Join(s.SourceFiles, ", "))
		}
		for _, b := range s.Examples {
			fmt.Printf("   - %s\n", b.Title)
		}
	}
	return nil
}
