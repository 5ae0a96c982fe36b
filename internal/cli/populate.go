package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marks/internal/domain"
	"marks/internal/usecase"
)

var (
	populateLimit     int
	populateThreshold float64
	populateYes       bool
)

var populateCmd = &cobra.Command{
	Use:   "populate <category>",
	Short: "Find and move bookmarks into a category",
	Long: `Search the collection for bookmarks that belong in the named category
and move the approved ones into its file. Candidates below the
similarity threshold are only shown when nothing clears it.

Examples:
  marks populate 3d-printing
  marks populate cooking --limit 10 --threshold 0.8 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runPopulate,
}

func init() {
	rootCmd.AddCommand(populateCmd)
	populateCmd.Flags().IntVarP(&populateLimit, "limit", "l", 5, "maximum candidates to show")
	populateCmd.Flags().Float64VarP(&populateThreshold, "threshold", "t", 0, "similarity threshold (default from config)")
	populateCmd.Flags().BoolVarP(&populateYes, "yes", "y", false, "move all candidates without prompting")
}

func runPopulate(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	category := args[0]
	threshold := populateThreshold
	if threshold <= 0 {
		threshold = a.cfg.Processing.SimilarityCutoff
	}

	candidates := a.categorizer.FindCategoryCandidates(category, populateLimit, threshold)
	if len(candidates) == 0 {
		fmt.Printf("No candidates found for '%s' category.\n", usecase.CategoryDisplayName(category))
		return nil
	}

	fmt.Printf("Found %d potential matches for '%s' category:\n\n", len(candidates), usecase.CategoryDisplayName(category))
	for i, c := range candidates {
		fmt.Printf("%d. [%.2f] %q\n", i+1, c.Score, c.Bookmark.Title)
		if c.Bookmark.SourceFile != "" {
			fmt.Printf("   From: %s\n", c.Bookmark.SourceFile)
		}
		fmt.Printf("   URL: %s\n", c.Bookmark.URL)
		if desc := c.Bookmark.ContentText(); desc != "" {
			if len(desc) > 100 {
				desc = desc[:100] + "..."
			}
			fmt.Printf("   Description: %s\n", desc)
		}
		fmt.Println()
	}

	selected := selectCandidates(candidates)
	if len(selected) == 0 {
		fmt.Println("No bookmarks moved.")
		return nil
	}

	a.backupCollection()
	if err := a.categorizer.MoveBookmarksToCategory(selected, category, a.baseDir()); err != nil {
		return fmt.Errorf("failed to move bookmarks: %w", err)
	}
	fmt.Printf("Moved %d bookmarks to %s\n", len(selected), usecase.CategoryFilename(category))
	return nil
}

func selectCandidates(candidates []domain.CandidateMatch) []domain.Bookmark {
	all := make([]domain.Bookmark, 0, len(candidates))
	for _, c := range candidates {
		all = append(all, c.Bookmark)
	}
	if populateYes {
		return all
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Move bookmarks to category? [y/N/s(elective)]: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "n":
			return nil
		case "y":
			return all
		case "s":
			fmt.Printf("Select bookmarks to move (1-%d, comma-separated): ", len(candidates))
			line, err := reader.ReadString('\n')
			if err != nil {
				return nil
			}
			var selected []domain.Bookmark
			for _, field := range strings.Split(strings.TrimSpace(line), ",") {
				i, err := strconv.Atoi(strings.TrimSpace(field))
				if err == nil && i >= 1 && i <= len(all) {
					selected = append(selected, all[i-1])
				}
			}
			if len(selected) == 0 {
				fmt.Println("No valid selections made.")
				continue
			}
			return selected
		default:
			fmt.Println("Please enter 'y', 'n', or 's'.")
		}
	}
}
