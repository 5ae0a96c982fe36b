package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marks/internal/domain"
)

var duplicatesDelete bool

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Find duplicate bookmarks",
	Long: `Group bookmarks that refer to the same resource, first by exact URL,
then by normalized title. With --delete, interactively pick a bookmark
to remove from each group and save the collection back to disk.`,
	RunE: runDuplicates,
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)
	duplicatesCmd.Flags().BoolVar(&duplicatesDelete, "delete", false, "interactively delete duplicates")
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	groups := a.detector.FindDuplicateGroups()
	if len(groups) == 0 {
		fmt.Println("No duplicates found.")
		return nil
	}

	fmt.Printf("Found %d duplicate groups:\n", len(groups))
	reader := bufio.NewReader(os.Stdin)
	removed := 0

	for i, group := range groups {
		fmt.Printf("\n%d. %s (score: %.3f)\n", i+1, reasonLabel(group.Reason), group.Score)
		for j, b := range group.Bookmarks {
			fmt.Printf("   %d. %s\n", j+1, b.Title)
			fmt.Printf("      URL: %s\n", b.URL)
			fmt.Printf("      File: %s\n", b.SourceFile)
		}

		if !duplicatesDelete {
			continue
		}

		idx := promptIndex(reader, len(group.Bookmarks))
		if idx == 0 {
			continue
		}
		toRemove := group.Bookmarks[idx-1]
		if a.service.RemoveOne(toRemove) {
			removed++
			fmt.Printf("Removed '%s'\n", toRemove.Title)
		}
	}

	if removed == 0 {
		return nil
	}

	fmt.Printf("\nRemoved %d bookmarks. Saving changes...\n", removed)
	a.backupCollection()

	info, err := os.Stat(a.path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		if err := a.loader.SaveBySource(a.service.Bookmarks(), a.path); err != nil {
			return fmt.Errorf("failed to save changes: %w", err)
		}
	} else {
		if err := a.loader.SaveFile(a.service.Bookmarks(), a.path); err != nil {
			return fmt.Errorf("failed to save changes: %w", err)
		}
	}
	fmt.Printf("Changes saved to %s\n", a.path)
	return nil
}

func promptIndex(reader *bufio.Reader, max int) int {
	for {
		fmt.Print("Select bookmark to delete (0 to skip): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && n >= 0 && n <= max {
			return n
		}
		fmt.Println("Please enter a valid number.")
	}
}

func reasonLabel(reason string) string {
	switch reason {
	case domain.ReasonExactURL:
		return "Exact URL"
	case domain.ReasonSimilarTitle:
		return "Similar Title"
	case domain.ReasonSimilarContent:
		return "Similar Content"
	}
	return reason
}
