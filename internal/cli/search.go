package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchTopN int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search bookmarks by semantic similarity",
	Long: `Search the collection using embedding similarity over each bookmark's
title, description, and tags.

Examples:
  marks search "home automation"
  marks search -C bookmarks/ -n 5 "rust async"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchTopN, "results", "n", 10, "number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	query := strings.Join(args, " ")
	result := a.service.Search(query, searchTopN)

	if len(result.Similar) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n", result.Total, result.Query)
	for i, similar := range result.Similar {
		b := similar.Bookmark
		fmt.Printf("\n%d. %s\n", i+1, b.Title)
		fmt.Printf("   URL: %s\n", b.URL)
		fmt.Printf("   Score: %.3f\n", similar.Score)
		if len(b.Tags) > 0 {
			fmt.Printf("   Tags: %s\n", strings.Join(b.Tags, ", "))
		}
		if b.SourceFile != "" {
			fmt.Printf("   File: %s\n", b.SourceFile)
		}
	}
	return nil
}
