package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"marks/internal/domain"
	"marks/internal/usecase"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive shell over the collection",
	Long: `Start an interactive session. The collection and its vector index are
loaded once and reused across commands, so repeated searches skip the
re-embedding cost.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("marks interactive shell. Type 'help' for commands, 'quit' to exit.")
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("marks> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		verb, rest := line, ""
		if i := strings.IndexByte(line, ' '); i >= 0 {
			verb, rest = line[:i], strings.TrimSpace(line[i+1:])
		}

		switch verb {
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			shellHelp()
		case "search":
			if rest == "" {
				fmt.Println("Usage: search <query>")
				continue
			}
			shellSearch(a, rest)
		case "duplicates":
			shellDuplicates(a)
		case "analyze":
			shellAnalyze(a)
		case "categorize":
			if rest == "" {
				fmt.Println("Usage: categorize <url>")
				continue
			}
			shellCategorize(a, rest)
		case "create":
			if rest == "" {
				fmt.Println("Usage: create <category>")
				continue
			}
			if err := a.categorizer.CreateCategory(rest, a.baseDir()); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Printf("Created category: %s\n", usecase.CategoryFilename(rest))
		default:
			fmt.Printf("Unknown command: %s (try 'help')\n", verb)
		}
	}
}

func shellHelp() {
	fmt.Println(`Commands:
  search <query>      Semantic search over the collection
  duplicates          List duplicate groups
  analyze             Collection statistics
  categorize <url>    Suggest categories for a URL
  create <category>   Create an empty category file
  help                Show this help
  quit                Exit the shell`)
}

func shellSearch(a *app, query string) {
	result := a.service.Search(query, 10)
	if len(result.Similar) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, s := range result.Similar {
		fmt.Printf("%d. %s (%.3f)\n   %s\n", i+1, s.Bookmark.Title, s.Score, s.Bookmark.URL)
	}
}

func shellDuplicates(a *app) {
	groups := a.detector.FindDuplicateGroups()
	if len(groups) == 0 {
		fmt.Println("No duplicates found.")
		return
	}
	for i, g := range groups {
		fmt.Printf("%d. %s (%.2f)\n", i+1, reasonLabel(g.Reason), g.Score)
		for _, b := range g.Bookmarks {
			fmt.Printf("   - %s  %s\n", b.Title, b.URL)
		}
	}
}

func shellAnalyze(a *app) {
	analysis := usecase.Analyze(a.service.Bookmarks())
	fmt.Printf("Total: %d, enriched: %d (%.1f%%), domains: %d, tags: %d, files: %d\n",
		analysis.Total, analysis.Enriched, analysis.EnrichmentPercent,
		analysis.UniqueDomains, analysis.UniqueTags, analysis.Files)
}

func shellCategorize(a *app, url string) {
	title, description := a.fetcher.FetchPageSummary(url)
	candidate := domain.Bookmark{URL: url, Title: title, Description: description, Type: "link"}
	suggestions := a.categorizer.SuggestCategories(candidate, 3)
	if len(suggestions) == 0 {
		fmt.Println("No suggestions available.")
		return
	}
	for i, s := range suggestions {
		fmt.Printf("%d. %s (%.3f)\n", i+1, s.Category, s.Confidence)
	}
}
