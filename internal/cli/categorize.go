package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"marks/internal/domain"
)

var categorizeN int

var categorizeCmd = &cobra.Command{
	Use:   "categorize <url>",
	Short: "Suggest categories for a URL",
	Long: `Fetch the page at the URL and suggest which existing category files
it belongs to, ranked by embedding similarity to their contents.`,
	Args: cobra.ExactArgs(1),
	RunE: runCategorize,
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
	categorizeCmd.Flags().IntVarP(&categorizeN, "suggestions", "n", 3, "number of suggestions")
}

func runCategorize(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	url := args[0]
	candidate := domain.Bookmark{URL: url, Type: "link"}

	fmt.Printf("Extracting content from %s...\n", url)
	title, description := a.fetcher.FetchPageSummary(url)
	candidate.Title = title
	candidate.Description = description

	suggestions := a.categorizer.SuggestCategories(candidate, categorizeN)
	if len(suggestions) == 0 {
		fmt.Println("No suggestions available.")
		return nil
	}

	fmt.Println("\nSuggested categories:")
	for i, s := range suggestions {
		fmt.Printf("  %d. %s (confidence: %.3f)\n", i+1, s.Category, s.Confidence)
	}
	return nil
}
